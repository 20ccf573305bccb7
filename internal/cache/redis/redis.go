package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appcache "github.com/streamforms/submission-exporter/internal/cache"
	"github.com/streamforms/submission-exporter/internal/model"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Ping Redis to check the connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot connect to Redis at %s: %w", addr, err)
	}

	return &RedisCache{client: rdb}, nil
}

// storedDocument is the wire shape of a cached export. Data rides along
// base64-encoded inside the JSON blob.
type storedDocument struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func (r *RedisCache) GetDocument(ctx context.Context, key string) (*model.ExportDocument, error) {
	raw, err := r.client.Get(ctx, documentKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appcache.ErrMiss
		}
		return nil, err
	}

	var stored storedDocument
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &model.ExportDocument{
		FileName:    stored.FileName,
		ContentType: stored.ContentType,
		Data:        stored.Data,
	}, nil
}

func (r *RedisCache) SetDocument(ctx context.Context, key string, doc *model.ExportDocument, ttl time.Duration) error {
	raw, err := json.Marshal(storedDocument{
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Data:        doc.Data,
	})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, documentKey(key), raw, ttl).Err()
}

func (r *RedisCache) Generation(ctx context.Context, formID int64) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(formID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return gen, nil
}

func (r *RedisCache) BumpGeneration(ctx context.Context, formID int64) error {
	return r.client.Incr(ctx, generationKey(formID)).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// helpers to standardize keys
func documentKey(key string) string {
	return fmt.Sprintf("streamforms:export:doc:%s", key)
}

func generationKey(formID int64) string {
	return fmt.Sprintf("streamforms:form:%d:gen", formID)
}

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/streamforms/submission-exporter/internal/model"
)

// ErrMiss reports an absent or expired cache entry.
var ErrMiss = errors.New("cache: miss")

// ExportCache keeps built export documents keyed by form generation and
// filter criteria, so repeated downloads of an unchanged submission set
// cost one build. Implementations must return ErrMiss for absent keys.
type ExportCache interface {
	GetDocument(ctx context.Context, key string) (*model.ExportDocument, error)
	SetDocument(ctx context.Context, key string, doc *model.ExportDocument, ttl time.Duration) error

	// Generation is the form's invalidation counter. BumpGeneration
	// advances it after deletes, which moves every cached document of the
	// form out of the live key space at once.
	Generation(ctx context.Context, formID int64) (int64, error)
	BumpGeneration(ctx context.Context, formID int64) error

	Close() error
}

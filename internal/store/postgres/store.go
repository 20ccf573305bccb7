package postgres

import (
	"context"
	_ "embed"
	"log/slog"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"

	conf "github.com/streamforms/submission-exporter/config"
	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/store"
)

// schema.sql is idempotent (IF NOT EXISTS throughout), so Open can apply
// it on every start.
//
//go:embed schema.sql
var schemaSQL string

// Store is the struct implementing the Store interface.
type Store struct {
	formStore       store.FormStore
	submissionStore store.SubmissionStore
	config          *conf.DatabaseConfig
	conn            *pgxpool.Pool
}

// New creates a new Store instance.
func New(config *conf.DatabaseConfig) *Store {
	return &Store{config: config}
}

func (s *Store) Form() store.FormStore {
	if s.formStore == nil {
		fs, err := NewFormStore(s)
		if err != nil {
			return nil
		}
		s.formStore = fs
	}
	return s.formStore
}

func (s *Store) Submission() store.SubmissionStore {
	if s.submissionStore == nil {
		ss, err := NewSubmissionStore(s)
		if err != nil {
			return nil
		}
		s.submissionStore = ss
	}
	return s.submissionStore
}

// Database returns the database connection or a custom error if it is not opened.
func (s *Store) Database() (*pgxpool.Pool, error) { // Return custom DB error
	if s.conn == nil {
		return nil, errors.New("database connection is not opened")
	}
	return s.conn, nil
}

// Open establishes a connection to the database, applies the embedded schema
// and returns a custom error if any step fails.
func (s *Store) Open() error {
	config, err := pgxpool.ParseConfig(s.config.Url)
	if err != nil {
		return err
	}

	// Attach the OpenTelemetry tracer for pgx
	config.ConnConfig.Tracer = otelpgx.NewTracer(otelpgx.WithTrimSQLInSpanName())

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(context.Background(), schemaSQL); err != nil {
		conn.Close()
		return errors.NewDBInternalError("apply_schema", err)
	}

	s.conn = conn
	slog.Debug("submission_exporter.store.connection_opened", slog.String("message", "postgres: connection opened"))
	return nil
}

// Close closes the database connection and returns a custom error if it fails.
func (s *Store) Close() error {
	if s.conn != nil {
		s.conn.Close()
		slog.Debug("submission_exporter.store.connection_closed", slog.String("message", "postgres: connection closed"))
		s.conn = nil
	}
	return nil
}

// Package store is the postgres-backed response cache. Every cache is
// best-effort: with no DATABASE_URL configured the store runs disabled
// and every read is a miss.
package store

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Store wraps the connection pool. A nil pool means caching is off.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Open connects using the DATABASE_URL environment variable. An unset
// variable is not an error; it yields a disabled store.
func Open(ctx context.Context, log zerolog.Logger) (*Store, error) {
	log = log.With().Str("component", "store").Logger()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Info().Msg("DATABASE_URL not set, response caching disabled")
		return &Store{log: log}, nil
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	s := &Store{pool: pool, log: log}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Enabled reports whether a database is connected.
func (s *Store) Enabled() bool {
	return s != nil && s.pool != nil
}

func (s *Store) Close() {
	if s.Enabled() {
		s.pool.Close()
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS stock_cache (
		id TEXT NOT NULL,
		ticker TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS twr_cache (
		id TEXT NOT NULL,
		uid TEXT PRIMARY KEY,
		input_hash TEXT NOT NULL,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS narrative_cache (
		id TEXT NOT NULL,
		uid TEXT PRIMARY KEY,
		analysis TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

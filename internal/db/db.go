// Package db persists finished screening results in PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Schema is the DDL for the screening_results table. It is not applied
// automatically; run it once against the target database.
const Schema = `
CREATE TABLE IF NOT EXISTS screening_results (
    id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
    job_id TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    candidate_name TEXT NOT NULL,
    candidate_email TEXT,
    final_score DOUBLE PRECISION NOT NULL,
    breakdown JSONB NOT NULL,
    explanation JSONB,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_screening_results_created_at ON screening_results (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_screening_results_candidate_name ON screening_results (candidate_name);
CREATE INDEX IF NOT EXISTS idx_screening_results_final_score ON screening_results (final_score DESC);
`

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect establishes a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, logger: logger}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping verifies the pool is still healthy.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

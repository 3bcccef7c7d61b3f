package submission

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS submissions (
	id           UUID PRIMARY KEY,
	submitted_at TIMESTAMPTZ NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	overall      DOUBLE PRECISION NOT NULL DEFAULT 0,
	enps         DOUBLE PRECISION NOT NULL DEFAULT 0,
	payload      JSONB NOT NULL
);
`

// PostgresSink stores submissions in PostgreSQL.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to databaseURL and ensures the table exists.
func NewPostgresSink(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("submission: connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("submission: ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("submission: create schema: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

// NewPostgresSinkFromPool wraps an existing pool. The table must exist.
func NewPostgresSinkFromPool(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// Submit implements Sink.
func (s *PostgresSink) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	rec, err := newRecord(sub)
	if err != nil {
		return Receipt{}, err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO submissions (id, submitted_at, title, overall, enps, payload)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)`,
		sub.ID, sub.SubmittedAt, rec.Title, rec.Overall, rec.ENPS, rec.Payload,
	)
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: insert %s: %w", sub.ID, err)
	}
	return NewReceipt("postgres", sub), nil
}

// Close releases the pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}

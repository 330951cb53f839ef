package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LogRepository appends to the audit trail. Write-only: nothing in the core
// reads these rows back.
type LogRepository struct {
	pool *pgxpool.Pool
}

// NewLogRepository creates a new LogRepository.
func NewLogRepository(pool *pgxpool.Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

// Insert appends a single audit message.
func (r *LogRepository) Insert(ctx context.Context, message string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO logs (message) VALUES ($1)`, message)
	return err
}

// InsertBatch appends a batch of audit messages in one round trip.
func (r *LogRepository) InsertBatch(ctx context.Context, messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range messages {
		batch.Queue(`INSERT INTO logs (message) VALUES ($1)`, m)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tildelab/tildes-backend/internal/model"
)

// ErrorCounterRepository handles per-word mistake tallies.
type ErrorCounterRepository struct {
	pool *pgxpool.Pool
}

// NewErrorCounterRepository creates a new ErrorCounterRepository.
func NewErrorCounterRepository(pool *pgxpool.Pool) *ErrorCounterRepository {
	return &ErrorCounterRepository{pool: pool}
}

// Increment upserts the counter for (word, classCode), adding one.
func (r *ErrorCounterRepository) Increment(ctx context.Context, classCode, word string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO error_counters (word, class_code, counter)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (word, class_code)
		 DO UPDATE SET counter = error_counters.counter + 1`,
		word, classCode,
	)
	return err
}

// TopByClass retrieves the most frequent mistakes of a class, descending.
func (r *ErrorCounterRepository) TopByClass(ctx context.Context, classCode string, limit int) ([]model.ErrorCounter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT word, counter FROM error_counters
		 WHERE class_code = $1
		 ORDER BY counter DESC, word
		 LIMIT $2`, classCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counters []model.ErrorCounter
	for rows.Next() {
		var ec model.ErrorCounter
		if err := rows.Scan(&ec.Word, &ec.Counter); err != nil {
			return nil, err
		}
		counters = append(counters, ec)
	}
	return counters, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tildelab/tildes-backend/internal/model"
)

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// GetByCode retrieves a class by its code.
func (r *ClassRepository) GetByCode(ctx context.Context, code string) (*model.Class, error) {
	c := &model.Class{}
	err := r.pool.QueryRow(ctx,
		`SELECT code, credential_hash, phase FROM classes WHERE code = $1`, code,
	).Scan(&c.Code, &c.CredentialHash, &c.Phase)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SetPhase writes a class's phase. Returns pgx.ErrNoRows when the code does
// not exist so callers can surface NotFound.
func (r *ClassRepository) SetPhase(ctx context.Context, code string, phase model.Phase) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE classes SET phase = $1 WHERE code = $2`, phase, code,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

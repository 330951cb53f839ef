package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tildelab/tildes-backend/internal/model"
)

// ErrDuplicateStudent is returned by Create when the (name, class_code) pair
// already has a row. The schema carries no unique index on the pair because
// restart re-points rows to archive codes, so uniqueness is enforced here.
var ErrDuplicateStudent = errors.New("student already enrolled in class")

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, class_code, score, progress, model_handle, created_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.ClassCode, &s.Score, &s.Progress, &s.ModelHandle, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByNameAndClass retrieves a student by its (name, class_code) pair.
func (r *StudentRepository) GetByNameAndClass(ctx context.Context, name, classCode string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, class_code, score, progress, model_handle, created_at
		 FROM students WHERE name = $1 AND class_code = $2`, name, classCode,
	).Scan(&s.ID, &s.Name, &s.ClassCode, &s.Score, &s.Progress, &s.ModelHandle, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByClass retrieves all students of a class ordered by name.
func (r *StudentRepository) ListByClass(ctx context.Context, classCode string) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, class_code, score, progress, model_handle, created_at
		 FROM students WHERE class_code = $1 ORDER BY name`, classCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.ClassCode, &s.Score, &s.Progress, &s.ModelHandle, &s.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a new student. The uniqueness re-check and the insert run in
// one transaction under an advisory lock on the (class_code, name) pair, so
// two concurrent enrollments that both passed an earlier existence check
// cannot both insert: the second one gets ErrDuplicateStudent.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || $2, 0))`,
		s.ClassCode, s.Name,
	); err != nil {
		return err
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM students WHERE name = $1 AND class_code = $2)`,
		s.Name, s.ClassCode,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicateStudent
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO students (name, class_code, score, progress, model_handle)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.Name, s.ClassCode, s.Score, s.Progress, s.ModelHandle,
	).Scan(&s.ID, &s.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateScore writes a student's score.
func (r *StudentRepository) UpdateScore(ctx context.Context, id, score int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET score = $1 WHERE id = $2`, score, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetProgress writes a student's progress.
func (r *StudentRepository) SetProgress(ctx context.Context, id, progress int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET progress = $1 WHERE id = $2`, progress, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

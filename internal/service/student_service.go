package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/tildelab/tildes-backend/internal/model"
	"github.com/tildelab/tildes-backend/internal/repository"
)

var ErrStudentNotFound = errors.New("student not found")

// StudentService handles student listing and score/progress writes.
type StudentService struct {
	studentRepo *repository.StudentRepository
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo}
}

// ListByClass retrieves a class's roster.
func (s *StudentService) ListByClass(ctx context.Context, classCode string) ([]model.Student, error) {
	students, err := s.studentRepo.ListByClass(ctx, classCode)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// UpdateScore writes a student's score.
func (s *StudentService) UpdateScore(ctx context.Context, id, score int) error {
	if err := s.studentRepo.UpdateScore(ctx, id, score); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStudentNotFound
		}
		return err
	}
	return nil
}

// SetProgress writes a student's progress.
func (s *StudentService) SetProgress(ctx context.Context, id, progress int) error {
	if err := s.studentRepo.SetProgress(ctx, id, progress); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStudentNotFound
		}
		return err
	}
	return nil
}

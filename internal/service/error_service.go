package service

import (
	"context"

	"github.com/tildelab/tildes-backend/internal/model"
	"github.com/tildelab/tildes-backend/internal/repository"
)

// commonErrorsLimit is the size of the common-errors board.
const commonErrorsLimit = 10

// ErrorTallyService maintains the per-word mistake counters of a class.
type ErrorTallyService struct {
	counterRepo *repository.ErrorCounterRepository
}

// NewErrorTallyService creates a new ErrorTallyService.
func NewErrorTallyService(counterRepo *repository.ErrorCounterRepository) *ErrorTallyService {
	return &ErrorTallyService{counterRepo: counterRepo}
}

// RecordMistakes upserts one counter increment per mistake row. Each row
// carries the misspelled word as its first element; blank rows are skipped.
func (s *ErrorTallyService) RecordMistakes(ctx context.Context, classCode string, mistakes [][]string) error {
	for _, row := range mistakes {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		if err := s.counterRepo.Increment(ctx, classCode, row[0]); err != nil {
			return err
		}
	}
	return nil
}

// CommonErrors retrieves the most frequent mistakes of a class, descending.
func (s *ErrorTallyService) CommonErrors(ctx context.Context, classCode string) ([]model.ErrorCounter, error) {
	counters, err := s.counterRepo.TopByClass(ctx, classCode, commonErrorsLimit)
	if err != nil {
		return nil, err
	}
	if counters == nil {
		counters = []model.ErrorCounter{}
	}
	return counters, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/tildelab/tildes-backend/internal/modelservice"
)

// ErrTrainingAborted is returned once half or more of the planned training
// iterations have failed.
var ErrTrainingAborted = errors.New("training aborted: failure budget exhausted")

// trainerClient is the slice of the model-service client the controller
// needs; narrowed so the loop unit-tests without a live service.
type trainerClient interface {
	Train(ctx context.Context, handle string, answers map[string]string) ([][]string, error)
	TestModels(ctx context.Context, modelNames []string) ([]modelservice.ModelMetrics, error)
	ConfusionMatrix(ctx context.Context, handle string) ([][]float64, error)
}

// TrainResult is the outcome of a training run. Iterations counts the calls
// that succeeded: zero means the run completed without ever producing a
// training signal and Pairs is still the initial empty value.
type TrainResult struct {
	Pairs      [][]string `json:"pairs"`
	Iterations int        `json:"iterations"`
}

// TrainingService drives bounded training rounds against the external
// trainer and wraps its evaluation endpoints.
type TrainingService struct {
	models     trainerClient
	iterations int
	recorder   auditor
	log        zerolog.Logger
}

// NewTrainingService creates a new TrainingService with the configured
// iteration cap.
func NewTrainingService(models trainerClient, iterations int, recorder auditor, log zerolog.Logger) *TrainingService {
	return &TrainingService{
		models:     models,
		iterations: iterations,
		recorder:   recorder,
		log:        log.With().Str("component", "training").Logger(),
	}
}

// Train issues up to the configured number of sequential training calls with
// the same answer payload. Each successful response overwrites the running
// result with fields 2 and 3 of every returned triple. Failed calls count
// against a budget of ceil(N/2); crossing it aborts the whole run. A failed
// iteration keeps the previous iteration's result as "last good".
func (s *TrainingService) Train(ctx context.Context, handle string, answers map[string]string) (*TrainResult, error) {
	payload := make(map[string]string, len(answers))
	for item, label := range answers {
		if item == "" || label == "" {
			continue
		}
		payload[item] = label
	}

	budget := (s.iterations + 1) / 2 // ceil(N/2)
	failures := 0
	result := &TrainResult{Pairs: [][]string{}}

	for i := 0; i < s.iterations; i++ {
		triples, err := s.models.Train(ctx, handle, payload)
		if err != nil {
			failures++
			s.log.Warn().Err(err).
				Str("handle", handle).
				Int("iteration", i+1).
				Int("failures", failures).
				Msg("training iteration failed")
			if failures >= budget {
				return nil, fmt.Errorf("%w: %d/%d iterations failed", ErrTrainingAborted, failures, s.iterations)
			}
			continue
		}

		pairs := make([][]string, 0, len(triples))
		for _, t := range triples {
			if len(t) >= 3 {
				pairs = append(pairs, []string{t[1], t[2]})
			}
		}
		result = &TrainResult{Pairs: pairs, Iterations: result.Iterations + 1}
	}

	s.recorder.Record(ctx, "training completed for %s: %d/%d iterations succeeded", handle, result.Iterations, s.iterations)
	return result, nil
}

// TestModels evaluates a set of models through the external service.
func (s *TrainingService) TestModels(ctx context.Context, modelNames []string) ([]modelservice.ModelMetrics, error) {
	return s.models.TestModels(ctx, modelNames)
}

// ConfusionMatrix fetches a model's confusion matrix and normalizes it to
// integer percentages.
func (s *TrainingService) ConfusionMatrix(ctx context.Context, handle string) ([][]int, error) {
	raw, err := s.models.ConfusionMatrix(ctx, handle)
	if err != nil {
		return nil, err
	}
	return NormalizeMatrix(raw), nil
}

// NormalizeMatrix converts a raw confusion matrix to rounded percentages and
// corrects the rounding drift on the largest cell so the total is exactly
// 100. An all-zero matrix normalizes to all zeros.
func NormalizeMatrix(raw [][]float64) [][]int {
	var total float64
	for _, row := range raw {
		for _, cell := range row {
			total += cell
		}
	}

	out := make([][]int, len(raw))
	for i := range raw {
		out[i] = make([]int, len(raw[i]))
	}
	if total == 0 {
		return out
	}

	sum := 0
	maxI, maxJ := 0, 0
	var maxVal float64 = -1
	for i, row := range raw {
		for j, cell := range row {
			out[i][j] = int(math.Round(cell / total * 100))
			sum += out[i][j]
			if cell > maxVal {
				maxVal, maxI, maxJ = cell, i, j
			}
		}
	}

	out[maxI][maxJ] += 100 - sum
	return out
}

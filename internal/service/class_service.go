package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/tildelab/tildes-backend/internal/model"
	"github.com/tildelab/tildes-backend/internal/modelservice"
	"github.com/tildelab/tildes-backend/internal/repository"
)

var (
	ErrClassNotFound = errors.New("class not found")
	ErrPhaseConflict = errors.New("phase transition not permitted")
)

// ClassService handles phase reads/writes and the restart transaction. It
// holds the pool directly because restart is a multi-table transaction that
// does not decompose into single-repository calls.
type ClassService struct {
	pool      *pgxpool.Pool
	classRepo *repository.ClassRepository
	models    *modelservice.Client
	recorder  auditor
	log       zerolog.Logger

	// now is injectable so archive codes are deterministic in tests.
	now func() time.Time
}

// NewClassService creates a new ClassService.
func NewClassService(
	pool *pgxpool.Pool,
	classRepo *repository.ClassRepository,
	models *modelservice.Client,
	recorder auditor,
	log zerolog.Logger,
) *ClassService {
	return &ClassService{
		pool:      pool,
		classRepo: classRepo,
		models:    models,
		recorder:  recorder,
		log:       log.With().Str("component", "class_service").Logger(),
		now:       time.Now,
	}
}

// GetPhase reads a class's current phase.
func (s *ClassService) GetPhase(ctx context.Context, code string) (model.Phase, error) {
	class, err := s.classRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrClassNotFound
		}
		return 0, err
	}
	return class.Phase, nil
}

// SetPhase writes a class's phase after validating the transition is a
// permitted forward step (Setup→Active or Active→Finished).
func (s *ClassService) SetPhase(ctx context.Context, code string, phase model.Phase) error {
	class, err := s.classRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrClassNotFound
		}
		return err
	}
	if !class.Phase.CanTransition(phase) {
		return ErrPhaseConflict
	}
	return s.classRepo.SetPhase(ctx, code, phase)
}

// ArchiveCode derives the archive class code for a restart at the given
// instant. The timestamp suffix keeps repeated restarts of the same code from
// merging into one archive.
func ArchiveCode(code string, at time.Time) string {
	return fmt.Sprintf("%s_deleted_%s", code, at.UTC().Format("20060102150405"))
}

// Restart closes out a class in one all-or-nothing transaction: the phase
// returns to Setup, students and aggregated error counters move to the
// archive code, and the original code's counters are removed. After commit
// the external model namespace is deleted best-effort; that failure is logged
// but never fails the restart.
func (s *ClassService) Restart(ctx context.Context, code string) error {
	archive := ArchiveCode(code, s.now())

	if err := s.restartTx(ctx, code, archive); err != nil {
		return err
	}

	if err := s.models.DeleteClassNamespace(ctx, code); err != nil {
		s.log.Warn().Err(err).Str("class", code).Msg("model namespace cleanup failed")
		s.recorder.Record(ctx, "restart %s: model namespace cleanup failed: %v", code, err)
	}

	s.recorder.Record(ctx, "class %s restarted, data archived under %s", code, archive)
	return nil
}

func (s *ClassService) restartTx(ctx context.Context, code, archive string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin restart: %w", err)
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback(ctx)

	// The archive code has no classes row, so FK enforcement is lifted for
	// the duration of the bulk rewrite and restored before commit.
	if _, err := tx.Exec(ctx, `SET LOCAL session_replication_role = replica`); err != nil {
		return fmt.Errorf("disable referential integrity: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE classes SET phase = $1 WHERE code = $2`, model.PhaseSetup, code)
	if err != nil {
		return fmt.Errorf("reset phase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClassNotFound
	}

	if _, err := tx.Exec(ctx,
		`UPDATE students SET class_code = $1 WHERE class_code = $2`, archive, code,
	); err != nil {
		return fmt.Errorf("relocate students: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO error_counters (word, class_code, counter)
		 SELECT word, $1, counter FROM error_counters WHERE class_code = $2
		 ON CONFLICT (word, class_code)
		 DO UPDATE SET counter = error_counters.counter + EXCLUDED.counter`,
		archive, code,
	); err != nil {
		return fmt.Errorf("aggregate error counters: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM error_counters WHERE class_code = $1`, code,
	); err != nil {
		return fmt.Errorf("clear error counters: %w", err)
	}

	if _, err := tx.Exec(ctx, `SET LOCAL session_replication_role = DEFAULT`); err != nil {
		return fmt.Errorf("restore referential integrity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit restart: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/tildelab/tildes-backend/internal/model"
	"github.com/tildelab/tildes-backend/internal/repository"
)

var (
	ErrDuplicateName  = errors.New("a student with this name already joined the class")
	ErrInvalidName    = errors.New("name is empty after sanitization")
	ErrModelProvision = errors.New("model provisioning failed")
)

// maxNameLen caps sanitized student names.
const maxNameLen = 15

// classStore and studentStore are the slices of the repositories enrollment
// needs; narrow interfaces keep the workflow testable without a database.
type classStore interface {
	GetByCode(ctx context.Context, code string) (*model.Class, error)
}

type studentStore interface {
	GetByNameAndClass(ctx context.Context, name, classCode string) (*model.Student, error)
	Create(ctx context.Context, s *model.Student) error
}

type provisioner interface {
	Provision(ctx context.Context, handle string) error
}

// EnrollmentService runs the join workflow: validate, provision the external
// model, persist the student. Each step is a hard precondition for the next.
type EnrollmentService struct {
	classes  classStore
	students studentStore
	models   provisioner
	recorder auditor
	log      zerolog.Logger

	// now feeds the model-handle timestamp; injectable for tests.
	now func() time.Time
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(
	classes classStore,
	students studentStore,
	models provisioner,
	recorder auditor,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		classes:  classes,
		students: students,
		models:   models,
		recorder: recorder,
		log:      log.With().Str("component", "enrollment").Logger(),
		now:      time.Now,
	}
}

// SanitizeName keeps letters (diacritics included) and digits, dropping
// everything else, and truncates to the name length cap.
func SanitizeName(raw string) string {
	var b strings.Builder
	count := 0
	for _, r := range raw {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count == maxNameLen {
			break
		}
	}
	return b.String()
}

// ModelHandle synthesizes the globally-unique external resource name for a
// student: name, class code and a second-precision timestamp with separators
// stripped.
func ModelHandle(name, classCode string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s", name, classCode, at.UTC().Format("20060102150405"))
}

// Enroll joins a student to a class. The early duplicate check is a fast
// path; the binding uniqueness guarantee is the store's transactional
// re-check at insert time, so concurrent joins with the same name cannot
// both land a row. No student row is ever written unless the external model
// was provisioned first; the reverse gap (model exists, insert failed)
// cannot be compensated through the trainer's surface, so it is recorded in
// the audit trail for operator cleanup.
func (s *EnrollmentService) Enroll(ctx context.Context, classCode, rawName string) (*model.Student, error) {
	class, err := s.classes.GetByCode(ctx, classCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("lookup class: %w", err)
	}

	name := SanitizeName(rawName)
	if name == "" {
		return nil, ErrInvalidName
	}

	if _, err := s.students.GetByNameAndClass(ctx, name, class.Code); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}

	handle := ModelHandle(name, class.Code, s.now())

	if err := s.models.Provision(ctx, handle); err != nil {
		s.log.Error().Err(err).Str("handle", handle).Msg("model provisioning failed")
		return nil, fmt.Errorf("%w: %v", ErrModelProvision, err)
	}

	student := &model.Student{
		Name:        name,
		ClassCode:   class.Code,
		Score:       0,
		Progress:    0,
		ModelHandle: handle,
	}
	if err := s.students.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateStudent) {
			// Lost the race to a concurrent join with the same name; the
			// store's transactional re-check kept the pair unique.
			s.recorder.Record(ctx, "orphaned model %s: concurrent enrollment of %s in %s", handle, name, class.Code)
			return nil, ErrDuplicateName
		}
		// The model already exists with no matching row; leave a trace.
		s.recorder.Record(ctx, "orphaned model %s: student insert failed: %v", handle, err)
		return nil, fmt.Errorf("insert student: %w", err)
	}

	enrolled, err := s.students.GetByNameAndClass(ctx, name, class.Code)
	if err != nil {
		return nil, fmt.Errorf("re-read student: %w", err)
	}

	s.recorder.Record(ctx, "student %s joined class %s with model %s", name, class.Code, handle)
	return enrolled, nil
}

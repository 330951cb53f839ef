package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildelab/tildes-backend/internal/model"
	"github.com/tildelab/tildes-backend/internal/repository"
)

type fakeClassStore struct {
	classes map[string]*model.Class
}

func (f *fakeClassStore) GetByCode(_ context.Context, code string) (*model.Class, error) {
	if c, ok := f.classes[code]; ok {
		return c, nil
	}
	return nil, pgx.ErrNoRows
}

// fakeStudentStore mirrors the repository contract: Create re-checks the
// (name, class) pair and rejects a second row the way the transactional
// insert does.
type fakeStudentStore struct {
	mu        sync.Mutex
	students  map[string]*model.Student // keyed by name
	createErr error
	created   []*model.Student
}

func (f *fakeStudentStore) GetByNameAndClass(_ context.Context, name, _ string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.students[name]; ok {
		return s, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStudentStore) Create(_ context.Context, s *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.students[s.Name]; ok {
		return repository.ErrDuplicateStudent
	}
	s.ID = len(f.created) + 1
	f.created = append(f.created, s)
	if f.students == nil {
		f.students = map[string]*model.Student{}
	}
	f.students[s.Name] = s
	return nil
}

type fakeProvisioner struct {
	mu          sync.Mutex
	err         error
	handles     []string
	onProvision func()
}

func (f *fakeProvisioner) Provision(_ context.Context, handle string) error {
	if f.onProvision != nil {
		f.onProvision()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.handles = append(f.handles, handle)
	return nil
}

func newEnrollmentFixture(t *testing.T) (*EnrollmentService, *fakeStudentStore, *fakeProvisioner, *recordingAuditor) {
	t.Helper()
	classes := &fakeClassStore{classes: map[string]*model.Class{
		"ABC123": {Code: "ABC123", Phase: model.PhaseSetup},
	}}
	students := &fakeStudentStore{}
	prov := &fakeProvisioner{}
	rec := &recordingAuditor{}

	svc := NewEnrollmentService(classes, students, prov, rec, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	}
	return svc, students, prov, rec
}

func TestEnrollSuccess(t *testing.T) {
	svc, students, prov, rec := newEnrollmentFixture(t)

	student, err := svc.Enroll(context.Background(), "ABC123", "Ana")
	require.NoError(t, err)

	assert.Equal(t, "Ana", student.Name)
	assert.Equal(t, "ABC123", student.ClassCode)
	assert.Equal(t, "Ana_ABC123_20260102150405", student.ModelHandle)
	assert.Zero(t, student.Score)
	assert.Zero(t, student.Progress)

	require.Len(t, prov.handles, 1)
	assert.Equal(t, "Ana_ABC123_20260102150405", prov.handles[0])
	require.Len(t, students.created, 1)
	assert.NotEmpty(t, rec.entries)
}

func TestEnrollClassNotFound(t *testing.T) {
	svc, students, prov, _ := newEnrollmentFixture(t)

	_, err := svc.Enroll(context.Background(), "NOPE", "Ana")
	require.ErrorIs(t, err, ErrClassNotFound)
	assert.Empty(t, prov.handles)
	assert.Empty(t, students.created)
}

func TestEnrollDuplicateName(t *testing.T) {
	svc, students, prov, _ := newEnrollmentFixture(t)
	students.students = map[string]*model.Student{
		"Ana": {ID: 1, Name: "Ana", ClassCode: "ABC123"},
	}

	_, err := svc.Enroll(context.Background(), "ABC123", "Ana")
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Empty(t, prov.handles)
}

func TestEnrollSanitizedCollisionIsDuplicate(t *testing.T) {
	svc, students, _, _ := newEnrollmentFixture(t)
	students.students = map[string]*model.Student{
		"Ana": {ID: 1, Name: "Ana", ClassCode: "ABC123"},
	}

	// "A-n.a!" sanitizes to "Ana" and collides with the existing row.
	_, err := svc.Enroll(context.Background(), "ABC123", "A-n.a!")
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestEnrollEmptyAfterSanitization(t *testing.T) {
	svc, _, prov, _ := newEnrollmentFixture(t)

	_, err := svc.Enroll(context.Background(), "ABC123", "!!! ...")
	require.ErrorIs(t, err, ErrInvalidName)
	assert.Empty(t, prov.handles)
}

func TestEnrollProvisionFailureBlocksInsert(t *testing.T) {
	svc, students, prov, _ := newEnrollmentFixture(t)
	prov.err = errors.New("trainer down")

	_, err := svc.Enroll(context.Background(), "ABC123", "Ana")
	require.ErrorIs(t, err, ErrModelProvision)
	assert.Empty(t, students.created, "no student row may exist without a model")
}

func TestEnrollConcurrentSameNameKeepsSingleRow(t *testing.T) {
	svc, students, prov, rec := newEnrollmentFixture(t)

	// Hold both joins in the provisioning step until each has passed the
	// early duplicate check, so only the insert-time re-check can stop the
	// second row.
	var gate sync.WaitGroup
	gate.Add(2)
	prov.onProvision = func() {
		gate.Done()
		gate.Wait()
	}

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Enroll(context.Background(), "ABC123", "Ana")
			results <- err
		}()
	}
	first, second := <-results, <-results

	var dupes, oks int
	for _, err := range []error{first, second} {
		switch {
		case err == nil:
			oks++
		case errors.Is(err, ErrDuplicateName):
			dupes++
		default:
			t.Fatalf("unexpected enroll error: %v", err)
		}
	}
	assert.Equal(t, 1, oks)
	assert.Equal(t, 1, dupes)
	assert.Len(t, students.created, 1, "unique (name, classCode) must hold")

	// The loser's provisioned model is orphaned and leaves a trace.
	rec.mu.Lock()
	defer rec.mu.Unlock()
	found := false
	for _, e := range rec.entries {
		if strings.Contains(e, "orphaned model") {
			found = true
		}
	}
	assert.True(t, found, "expected an orphaned-model audit entry")
}

func TestEnrollInsertFailureLeavesAuditTrace(t *testing.T) {
	svc, students, _, rec := newEnrollmentFixture(t)
	students.createErr = errors.New("connection reset")

	_, err := svc.Enroll(context.Background(), "ABC123", "Ana")
	require.Error(t, err)
	require.NotEmpty(t, rec.entries)
	assert.Contains(t, rec.entries[0], "orphaned model Ana_ABC123_20260102150405")
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Ana", "Ana"},
		{"Ana María", "AnaMaría"},
		{"  José!! ", "José"},
		{"a b c 1 2 3", "abc123"},
		{"...", ""},
		{"ñoño", "ñoño"},
		{"abcdefghijklmnopqrst", "abcdefghijklmno"}, // capped at 15
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.raw), "raw %q", tt.raw)
	}
}

func TestModelHandle(t *testing.T) {
	at := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "Luis_XYZ999_20260828103000", ModelHandle("Luis", "XYZ999", at))
}

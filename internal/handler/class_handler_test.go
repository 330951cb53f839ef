package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildelab/tildes-backend/internal/model"
	"github.com/tildelab/tildes-backend/internal/service"
	"github.com/tildelab/tildes-backend/internal/validator"
)

type stubClassStore struct {
	class *model.Class
}

func (s *stubClassStore) GetByCode(_ context.Context, code string) (*model.Class, error) {
	if s.class != nil && s.class.Code == code {
		return s.class, nil
	}
	return nil, pgx.ErrNoRows
}

type stubStudentStore struct {
	students map[string]*model.Student
}

func (s *stubStudentStore) GetByNameAndClass(_ context.Context, name, _ string) (*model.Student, error) {
	if st, ok := s.students[name]; ok {
		return st, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubStudentStore) Create(_ context.Context, st *model.Student) error {
	if s.students == nil {
		s.students = map[string]*model.Student{}
	}
	st.ID = len(s.students) + 1
	s.students[st.Name] = st
	return nil
}

type stubProvisioner struct{}

func (stubProvisioner) Provision(context.Context, string) error { return nil }

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, string, ...interface{}) {}

func newJoinRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	classes := &stubClassStore{class: &model.Class{Code: "ABC123", Phase: model.PhaseSetup}}
	enrollment := service.NewEnrollmentService(classes, &stubStudentStore{}, stubProvisioner{}, nopAuditor{}, zerolog.Nop())
	h := NewClassHandler(nil, enrollment)

	r := gin.New()
	r.POST("/class/:code/join", h.Join)
	return r
}

func doJoin(t *testing.T, r *gin.Engine, name string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"name": name})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/class/ABC123/join", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type joinResponse struct {
	Data struct {
		Student model.Student `json:"student"`
	} `json:"data"`
}

// A raw name longer than the stored limit must survive binding: sanitization
// owns the 15-rune cap, not the request payload.
func TestJoinAcceptsLongRawName(t *testing.T) {
	r := newJoinRouter(t)

	w := doJoin(t, r, "Ana-María López!!")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp joinResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AnaMaríaLópez", resp.Data.Student.Name)
}

func TestJoinTruncatesOversizedName(t *testing.T) {
	r := newJoinRouter(t)

	w := doJoin(t, r, strings.Repeat("a", 40))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp joinResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, strings.Repeat("a", 15), resp.Data.Student.Name)
}

func TestJoinRejectsMissingName(t *testing.T) {
	r := newJoinRouter(t)

	w := doJoin(t, r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

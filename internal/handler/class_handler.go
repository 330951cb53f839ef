package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tildelab/tildes-backend/internal/model"
	"github.com/tildelab/tildes-backend/internal/response"
	"github.com/tildelab/tildes-backend/internal/service"
	"github.com/tildelab/tildes-backend/internal/validator"
)

// ClassHandler handles the class lifecycle: phase reads/writes, enrollment
// and restart.
type ClassHandler struct {
	classService      *service.ClassService
	enrollmentService *service.EnrollmentService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService, enrollmentService *service.EnrollmentService) *ClassHandler {
	return &ClassHandler{
		classService:      classService,
		enrollmentService: enrollmentService,
	}
}

// GetPhase godoc
// GET /class/:code/phase
// Reading the phase is unrestricted.
func (h *ClassHandler) GetPhase(c *gin.Context) {
	phase, err := h.classService.GetPhase(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"phase": phase})
}

// SetPhase godoc
// PUT /class/:code/setPhase
// Teacher-only; forward transitions only.
func (h *ClassHandler) SetPhase(c *gin.Context) {
	var req model.SetPhaseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.classService.SetPhase(c.Request.Context(), c.Param("code"), *req.Phase)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrPhaseConflict):
			response.Fail(c, http.StatusConflict, response.ErrPhaseConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"phase": *req.Phase})
}

// Join godoc
// POST /class/:code/join
// Enrolls a student: provisions the external model, then persists the row.
func (h *ClassHandler) Join(c *gin.Context) {
	var req model.JoinClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.enrollmentService.Enroll(c.Request.Context(), c.Param("code"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrDuplicateName):
			response.Fail(c, http.StatusBadRequest, response.ErrDuplicateName)
		case errors.Is(err, service.ErrInvalidName):
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		case errors.Is(err, service.ErrModelProvision):
			response.Fail(c, http.StatusInternalServerError, response.ErrModelService)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// Restart godoc
// PUT /class/:code/restart
// Teacher-only. Archives the class's data atomically and resets the phase;
// external model cleanup is best-effort after commit.
func (h *ClassHandler) Restart(c *gin.Context) {
	err := h.classService.Restart(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.FailWithDetails(c, http.StatusInternalServerError, response.ErrRestartFailed, err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "class restarted"})
}

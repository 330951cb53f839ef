package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tildelab/tildes-backend/internal/model"
	"github.com/tildelab/tildes-backend/internal/response"
	"github.com/tildelab/tildes-backend/internal/service"
	"github.com/tildelab/tildes-backend/internal/validator"
)

// ErrorsHandler handles the per-class mistake tallies.
type ErrorsHandler struct {
	errorService *service.ErrorTallyService
}

// NewErrorsHandler creates a new ErrorsHandler.
func NewErrorsHandler(errorService *service.ErrorTallyService) *ErrorsHandler {
	return &ErrorsHandler{errorService: errorService}
}

// UpdateErrors godoc
// POST /update-errors
// Upserts one counter increment per submitted mistake.
func (h *ErrorsHandler) UpdateErrors(c *gin.Context) {
	var req model.UpdateErrorsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.errorService.RecordMistakes(c.Request.Context(), req.ClassCode, req.Mistakes); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "errors recorded"})
}

// CommonErrors godoc
// GET /common-errors?classCode=X
// Returns the class's ten most frequent mistakes, descending.
func (h *ErrorsHandler) CommonErrors(c *gin.Context) {
	classCode := c.Query("classCode")
	if classCode == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	counters, err := h.errorService.CommonErrors(c.Request.Context(), classCode)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"errors": counters})
}

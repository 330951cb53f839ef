package handler

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tildelab/tildes-backend/internal/response"
	"github.com/tildelab/tildes-backend/internal/selection"
	"github.com/tildelab/tildes-backend/internal/service"
	"github.com/tildelab/tildes-backend/internal/validator"
)

// TrainingHandler handles training runs, model evaluation and practice-batch
// selection.
type TrainingHandler struct {
	trainingService *service.TrainingService
}

// NewTrainingHandler creates a new TrainingHandler.
func NewTrainingHandler(trainingService *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

// Train godoc
// POST /models/:name/train
// Body is the answers object (item → assigned label); blank entries are
// dropped. Responds with the last successful iteration's result.
func (h *TrainingHandler) Train(c *gin.Context) {
	var answers map[string]string
	if err := c.ShouldBindJSON(&answers); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	result, err := h.trainingService.Train(c.Request.Context(), c.Param("name"), answers)
	if err != nil {
		if errors.Is(err, service.ErrTrainingAborted) {
			response.Fail(c, http.StatusInternalServerError, response.ErrTrainingAborted)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrModelService)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// TestModelsRequest is the payload for a batched model evaluation.
type TestModelsRequest struct {
	ModelNames []string `json:"model_names" binding:"required,min=1"`
}

// TestModels godoc
// POST /models/test
func (h *TrainingHandler) TestModels(c *gin.Context) {
	var req TestModelsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	metrics, err := h.trainingService.TestModels(c.Request.Context(), req.ModelNames)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrModelService)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": metrics})
}

// ConfusionMatrix godoc
// POST /models/:name/matrix
// Responds with the matrix normalized to integer percentages summing to 100.
func (h *TrainingHandler) ConfusionMatrix(c *gin.Context) {
	matrix, err := h.trainingService.ConfusionMatrix(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrModelService)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"matrix": matrix})
}

// NextBatchRequest carries the previous batch's answers; empty for the first
// batch of a session.
type NextBatchRequest struct {
	Answers []selection.Answer `json:"answers"`
}

// NextBatch godoc
// POST /batches/next
// Picks the next 10 practice items, weighted toward the categories the
// student got wrong.
func (h *TrainingHandler) NextBatch(c *gin.Context) {
	var req NextBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	items := selection.NextBatch(req.Answers, rng)

	response.Success(c, http.StatusOK, gin.H{"items": items})
}

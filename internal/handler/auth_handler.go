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

// AuthHandler handles teacher authentication.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Authenticate godoc
// POST /teacher/authenticate
// Validates class code + password; on success the class advances to Active
// and a teacher token is returned.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req model.TeacherAuthRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, class, err := h.authService.Authenticate(c.Request.Context(), req.Code, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.TeacherAuthResponse{Token: token, Class: *class})
}

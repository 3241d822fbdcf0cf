package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/middleware"
	"github.com/lankaspa/lsa-admin-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// actorFrom builds the acting identity for audit entries from the request
// and, when authenticated, the user context
func actorFrom(c *gin.Context) services.Actor {
	actor := services.Actor{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if userCtx, ok := middleware.GetUserContext(c); ok {
		id := userCtx.UserID
		actor.ID = &id
		actor.Role = userCtx.Role
	}
	return actor
}

// respondServiceError maps service and repository errors onto HTTP responses
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Error(),
		})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		})
	case errors.Is(err, database.ErrNotEligible):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "not_eligible",
			Message: "The resource is not in a state that allows this action",
		})
	case errors.Is(err, database.ErrRequestResolved):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_resolved",
			Message: "This request has already been resolved",
		})
	case errors.Is(err, database.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "duplicate_username",
			Message: "An account with this username already exists",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
		})
	}
}

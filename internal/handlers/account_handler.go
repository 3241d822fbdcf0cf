package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lankaspa/lsa-admin-backend/internal/middleware"
	"github.com/lankaspa/lsa-admin-backend/internal/services"
)

// AccountHandler handles administration of login accounts
type AccountHandler struct {
	authService *services.AuthService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *services.AuthService) *AccountHandler {
	return &AccountHandler{authService: authService}
}

// CreateOfficerRequest represents the officer creation request body
type CreateOfficerRequest struct {
	Username  string    `json:"username" binding:"required"`
	Password  string    `json:"password" binding:"required,min=8"`
	FullName  string    `json:"full_name" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

// CreateOfficer handles POST /api/v1/admin/accounts/officers
func (h *AccountHandler) CreateOfficer(c *gin.Context) {
	var req CreateOfficerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body. Username, password (min 8), full name, email and expiry are required.",
		})
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	account, err := h.authService.CreateOfficer(req.Username, req.Password, req.FullName, req.Email, req.ExpiresAt, userCtx.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Officer account created", "account": account})
}

// List handles GET /api/v1/admin/accounts
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.authService.ListAccounts()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "count": len(accounts)})
}

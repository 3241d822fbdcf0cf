package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/services"
)

// AdminHandler handles association-admin spa management endpoints
type AdminHandler struct {
	spaRepo             *database.SpaRepository
	activityLogRepo     *database.ActivityLogRepository
	verificationService *services.VerificationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	spaRepo *database.SpaRepository,
	activityLogRepo *database.ActivityLogRepository,
	verificationService *services.VerificationService,
) *AdminHandler {
	return &AdminHandler{
		spaRepo:             spaRepo,
		activityLogRepo:     activityLogRepo,
		verificationService: verificationService,
	}
}

// RejectSpaRequest represents the rejection request body
type RejectSpaRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListSpas handles GET /api/v1/admin/spas
func (h *AdminHandler) ListSpas(c *gin.Context) {
	filter := database.SpaFilter{
		Status:   c.Query("status"),
		Province: c.Query("province"),
		Overdue:  c.Query("overdue") == "true",
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}

	spas, err := h.spaRepo.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"spas": spas, "count": len(spas)})
}

// GetSpa handles GET /api/v1/admin/spas/:id
func (h *AdminHandler) GetSpa(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid spa ID",
		})
		return
	}

	spa, err := h.spaRepo.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"spa": spa})
}

// VerifySpa handles POST /api/v1/admin/spas/:id/verify
func (h *AdminHandler) VerifySpa(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid spa ID",
		})
		return
	}

	spa, err := h.verificationService.Verify(id, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Spa verified", "spa": spa})
}

// RejectSpa handles POST /api/v1/admin/spas/:id/reject
func (h *AdminHandler) RejectSpa(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid spa ID",
		})
		return
	}

	var req RejectSpaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "A rejection reason is required",
		})
		return
	}

	spa, err := h.verificationService.Reject(id, req.Reason, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Spa rejected", "spa": spa})
}

// ListActivityLogs handles GET /api/v1/admin/activity-logs
func (h *AdminHandler) ListActivityLogs(c *gin.Context) {
	filter := database.ActivityLogFilter{
		EntityType: c.Query("entity_type"),
		Action:     c.Query("action"),
	}
	if raw := c.Query("entity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Invalid entity ID",
			})
			return
		}
		filter.EntityID = &id
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}

	logs, err := h.activityLogRepo.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity_logs": logs, "count": len(logs)})
}

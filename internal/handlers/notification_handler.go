package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/middleware"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
)

// NotificationHandler handles the role-scoped notification inbox
type NotificationHandler struct {
	notificationRepo *database.NotificationRepository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationRepo *database.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// List handles GET /api/v1/notifications. The recipient is resolved from
// the caller's claims: association admins read the association inbox, spa
// admins read only their own spa's.
func (h *NotificationHandler) List(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	unreadOnly := c.Query("unread") == "true"

	var notifications []*models.Notification
	var err error
	switch userCtx.Role {
	case models.RoleAdminLSA:
		notifications, err = h.notificationRepo.ListForAssociation(unreadOnly)
	case models.RoleAdminSpa:
		if userCtx.SpaID == nil {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Your account is not linked to a spa",
			})
			return
		}
		notifications, err = h.notificationRepo.ListForSpa(*userCtx.SpaID, unreadOnly)
	default:
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Your role has no notification inbox",
		})
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// MarkRead handles POST /api/v1/notifications/:id/read. Spa admins can
// only acknowledge notifications addressed to their own spa.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid notification ID",
		})
		return
	}

	switch userCtx.Role {
	case models.RoleAdminLSA:
		err = h.notificationRepo.MarkReadForAssociation(id)
	case models.RoleAdminSpa:
		if userCtx.SpaID == nil {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Your account is not linked to a spa",
			})
			return
		}
		err = h.notificationRepo.MarkReadForSpa(id, *userCtx.SpaID)
	default:
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Your role has no notification inbox",
		})
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/middleware"
)

// DashboardHandler handles the admin and spa summary endpoints
type DashboardHandler struct {
	spaRepo          *database.SpaRepository
	therapistRepo    *database.TherapistRepository
	paymentRepo      *database.PaymentRepository
	notificationRepo *database.NotificationRepository
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	spaRepo *database.SpaRepository,
	therapistRepo *database.TherapistRepository,
	paymentRepo *database.PaymentRepository,
	notificationRepo *database.NotificationRepository,
) *DashboardHandler {
	return &DashboardHandler{
		spaRepo:          spaRepo,
		therapistRepo:    therapistRepo,
		paymentRepo:      paymentRepo,
		notificationRepo: notificationRepo,
	}
}

// AdminDashboard handles GET /api/v1/admin/dashboard
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	spasByStatus, err := h.spaRepo.CountByStatus()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	therapistsByStatus, err := h.therapistRepo.CountByStatus()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pendingRequests, err := h.therapistRepo.CountPendingRequests()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pendingPayments, err := h.paymentRepo.CountPending()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spas_by_status":             spasByStatus,
		"therapists_by_status":       therapistsByStatus,
		"pending_therapist_requests": pendingRequests,
		"pending_payments":           pendingPayments,
	})
}

// SpaDashboard handles GET /api/v1/spas/:spa_id/dashboard
func (h *DashboardHandler) SpaDashboard(c *gin.Context) {
	spaID, ok := middleware.RequireSpaScope(c)
	if !ok {
		return
	}

	spa, err := h.spaRepo.GetByID(spaID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	therapists, err := h.therapistRepo.List(database.TherapistFilter{SpaID: &spaID})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	unread, err := h.notificationRepo.CountUnreadForSpa(spaID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spa":                  spa,
		"therapist_count":      len(therapists),
		"unread_notifications": unread,
		"payment_overdue":      spa.IsOverdue(time.Now()),
		"next_payment_date":    spa.NextPaymentDate,
	})
}

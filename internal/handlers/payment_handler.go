package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/middleware"
	"github.com/lankaspa/lsa-admin-backend/internal/services"
)

// PaymentHandler handles association fee payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Record handles POST /api/v1/spas/:spa_id/payments (multipart form)
func (h *PaymentHandler) Record(c *gin.Context) {
	spaID, ok := middleware.RequireSpaScope(c)
	if !ok {
		return
	}

	input := &services.PaymentInput{
		Type:   c.PostForm("type"),
		Method: c.PostForm("method"),
	}
	if form, err := c.MultipartForm(); err == nil {
		if files := form.File["slip"]; len(files) > 0 {
			input.Slip = files[0]
		}
	}

	payment, err := h.paymentService.Record(spaID, input, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": paymentMessage(payment.Status),
		"payment": payment,
	})
}

func paymentMessage(status string) string {
	if status == "completed" {
		return "Payment recorded and settled"
	}
	return "Payment recorded and pending approval"
}

// Approve handles POST /api/v1/admin/payments/:id/approve
func (h *PaymentHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid payment ID",
		})
		return
	}

	payment, err := h.paymentService.Approve(id, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment approved", "payment": payment})
}

// ListForSpa handles GET /api/v1/spas/:spa_id/payments
func (h *PaymentHandler) ListForSpa(c *gin.Context) {
	spaID, ok := middleware.RequireSpaScope(c)
	if !ok {
		return
	}

	filter := database.PaymentFilter{
		SpaID:  &spaID,
		Status: c.Query("status"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}

	payments, err := h.paymentService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// ListAll handles GET /api/v1/admin/payments
func (h *PaymentHandler) ListAll(c *gin.Context) {
	filter := database.PaymentFilter{
		Status: c.Query("status"),
		Method: c.Query("method"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}

	payments, err := h.paymentService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

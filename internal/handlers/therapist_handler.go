package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/middleware"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/internal/services"
)

// TherapistHandler handles therapist lifecycle endpoints
type TherapistHandler struct {
	therapistService *services.TherapistService
	therapistRepo    *database.TherapistRepository
}

// NewTherapistHandler creates a new therapist handler
func NewTherapistHandler(
	therapistService *services.TherapistService,
	therapistRepo *database.TherapistRepository,
) *TherapistHandler {
	return &TherapistHandler{
		therapistService: therapistService,
		therapistRepo:    therapistRepo,
	}
}

// RejectTherapistRequest represents the rejection request body
type RejectTherapistRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Submit handles POST /api/v1/spas/:spa_id/therapists (multipart form)
func (h *TherapistHandler) Submit(c *gin.Context) {
	spaID, ok := middleware.RequireSpaScope(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Expected a multipart form",
		})
		return
	}

	singleFile := func(field string) *multipart.FileHeader {
		files := form.File[field]
		if len(files) == 0 {
			return nil
		}
		return files[0]
	}

	input := &services.TherapistInput{
		FullName:     c.PostForm("full_name"),
		NICNumber:    c.PostForm("nic_number"),
		Phone:        c.PostForm("phone"),
		Email:        c.PostForm("email"),
		NICFront:     singleFile("nic_front"),
		NICBack:      singleFile("nic_back"),
		MedicalCert:  singleFile("medical_certificate"),
		ProfilePhoto: singleFile("profile_photo"),
	}

	therapist, request, err := h.therapistService.Submit(spaID, input, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Therapist submitted for approval",
		"therapist": therapist,
		"request":   request,
	})
}

// Approve handles POST /api/v1/admin/therapist-requests/:id/approve
func (h *TherapistHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request ID",
		})
		return
	}

	request, err := h.therapistService.Approve(id, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Therapist approved", "request": request})
}

// Reject handles POST /api/v1/admin/therapist-requests/:id/reject
func (h *TherapistHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request ID",
		})
		return
	}

	var req RejectTherapistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "A rejection reason is required",
		})
		return
	}

	request, err := h.therapistService.Reject(id, req.Reason, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Therapist rejected", "request": request})
}

// ListPendingRequests handles GET /api/v1/admin/therapist-requests
func (h *TherapistHandler) ListPendingRequests(c *gin.Context) {
	requests, err := h.therapistRepo.ListPendingRequests()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// Resign handles POST /api/v1/spas/:spa_id/therapists/:id/resign
func (h *TherapistHandler) Resign(c *gin.Context) {
	h.endEmployment(c, h.therapistService.Resign, "Therapist marked as resigned")
}

// Terminate handles POST /api/v1/spas/:spa_id/therapists/:id/terminate
func (h *TherapistHandler) Terminate(c *gin.Context) {
	h.endEmployment(c, h.therapistService.Terminate, "Therapist marked as terminated")
}

func (h *TherapistHandler) endEmployment(
	c *gin.Context,
	end func(therapistID, spaID uuid.UUID, actor services.Actor) (*models.Therapist, error),
	message string,
) {
	spaID, ok := middleware.RequireSpaScope(c)
	if !ok {
		return
	}

	therapistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid therapist ID",
		})
		return
	}

	therapist, err := end(therapistID, spaID, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "therapist": therapist})
}

// ListForSpa handles GET /api/v1/spas/:spa_id/therapists
func (h *TherapistHandler) ListForSpa(c *gin.Context) {
	spaID, ok := middleware.RequireSpaScope(c)
	if !ok {
		return
	}

	filter := database.TherapistFilter{
		SpaID:  &spaID,
		Status: c.Query("status"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}

	therapists, err := h.therapistRepo.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"therapists": therapists, "count": len(therapists)})
}

// ListAll handles GET /api/v1/admin/therapists
func (h *TherapistHandler) ListAll(c *gin.Context) {
	filter := database.TherapistFilter{
		Status: c.Query("status"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}

	therapists, err := h.therapistRepo.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"therapists": therapists, "count": len(therapists)})
}

// SearchHistory handles GET /api/v1/officer/therapists/search
func (h *TherapistHandler) SearchHistory(c *gin.Context) {
	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = parsed
	}

	results, err := h.therapistService.SearchHistory(c.Query("nic"), c.Query("name"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lankaspa/lsa-admin-backend/internal/services"
)

// RegistrationHandler handles the public spa registration endpoint
type RegistrationHandler struct {
	registrationService *services.RegistrationService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationService *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Register handles POST /api/v1/spas/register (multipart form)
func (h *RegistrationHandler) Register(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Expected a multipart form",
		})
		return
	}

	input := &services.RegistrationInput{
		OwnerName:     c.PostForm("owner_name"),
		OwnerNIC:      c.PostForm("owner_nic"),
		Email:         c.PostForm("email"),
		Phone:         c.PostForm("phone"),
		SpaName:       c.PostForm("spa_name"),
		AddressLine1:  c.PostForm("address_line1"),
		AddressLine2:  c.PostForm("address_line2"),
		Province:      c.PostForm("province"),
		PostalCode:    c.PostForm("postal_code"),
		PaymentMethod: c.PostForm("payment_method"),
	}

	singleFile := func(field string) *multipart.FileHeader {
		files := form.File[field]
		if len(files) == 0 {
			return nil
		}
		return files[0]
	}
	input.NICFront = singleFile("nic_front")
	input.NICBack = singleFile("nic_back")
	input.BRDocument = singleFile("br_document")
	input.Form1Cert = singleFile("form1_certificate")
	input.BannerPhoto = singleFile("spa_banner")
	input.FacilityPhotos = form.File["facility_photos"]

	result, err := h.registrationService.Register(input, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":            "Registration submitted. Your spa is pending verification.",
		"reference_number":   result.Spa.ReferenceNumber,
		"spa":                result.Spa,
		"payment":            result.Payment,
		"username":           result.Username,
		"temporary_password": result.TempPassword,
	})
}

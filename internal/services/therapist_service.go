package services

import (
	"database/sql"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/pkg/upload"
	"github.com/lankaspa/lsa-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// TherapistInput carries a spa's therapist onboarding submission
type TherapistInput struct {
	FullName  string
	NICNumber string
	Phone     string
	Email     string

	NICFront     *multipart.FileHeader
	NICBack      *multipart.FileHeader
	MedicalCert  *multipart.FileHeader
	ProfilePhoto *multipart.FileHeader // optional
}

// TherapistService runs the therapist lifecycle workflows
type TherapistService struct {
	therapistRepo *database.TherapistRepository
	spaRepo       *database.SpaRepository
	identity      *validator.IdentityValidator
	saver         *upload.Saver
	logger        *logrus.Logger
}

// NewTherapistService creates a new therapist service
func NewTherapistService(
	therapistRepo *database.TherapistRepository,
	spaRepo *database.SpaRepository,
	identity *validator.IdentityValidator,
	saver *upload.Saver,
	logger *logrus.Logger,
) *TherapistService {
	return &TherapistService{
		therapistRepo: therapistRepo,
		spaRepo:       spaRepo,
		identity:      identity,
		saver:         saver,
		logger:        logger,
	}
}

// Submit validates and creates a pending therapist plus its paired request
func (s *TherapistService) Submit(spaID uuid.UUID, input *TherapistInput, actor Actor) (*models.Therapist, *models.TherapistRequest, error) {
	if input.FullName == "" {
		return nil, nil, &ValidationError{Field: "full_name", Message: "is required"}
	}
	sanitizedNIC, err := s.identity.ValidateNIC(input.NICNumber)
	if err != nil {
		return nil, nil, &ValidationError{Field: "nic_number", Message: err.Error()}
	}
	if input.NICFront == nil || input.NICBack == nil {
		return nil, nil, &ValidationError{Field: "nic_images", Message: "both NIC images are required"}
	}
	if input.MedicalCert == nil {
		return nil, nil, &ValidationError{Field: "medical_certificate", Message: "file is required"}
	}

	spa, err := s.spaRepo.GetByID(spaID)
	if err != nil {
		return nil, nil, err
	}
	if spa.Status != models.SpaStatusVerified {
		return nil, nil, &ValidationError{Field: "spa", Message: "spa must be verified before onboarding therapists"}
	}

	saved := []string{}
	savedPath := func(fh *multipart.FileHeader, category string) (string, error) {
		path, err := s.saver.Save(fh, category)
		if err != nil {
			return "", err
		}
		saved = append(saved, path)
		return path, nil
	}
	cleanup := func() {
		if err := s.saver.Cleanup(saved); err != nil {
			s.logger.Warnf("therapist upload cleanup left files behind: %v", err)
		}
	}

	therapist := &models.Therapist{
		SpaID:     spaID,
		FullName:  input.FullName,
		NICNumber: sanitizedNIC,
	}
	if input.Phone != "" {
		sanitizedPhone, err := s.identity.ValidatePhone(input.Phone)
		if err != nil {
			return nil, nil, &ValidationError{Field: "phone", Message: err.Error()}
		}
		therapist.Phone = sql.NullString{String: sanitizedPhone, Valid: true}
	}
	if input.Email != "" {
		therapist.Email = sql.NullString{String: input.Email, Valid: true}
	}

	if therapist.NICFrontPath, err = savedPath(input.NICFront, upload.CategoryNIC); err != nil {
		cleanup()
		return nil, nil, &ValidationError{Field: "nic_front", Message: err.Error()}
	}
	if therapist.NICBackPath, err = savedPath(input.NICBack, upload.CategoryNIC); err != nil {
		cleanup()
		return nil, nil, &ValidationError{Field: "nic_back", Message: err.Error()}
	}
	if therapist.MedicalCertPath, err = savedPath(input.MedicalCert, upload.CategoryMedical); err != nil {
		cleanup()
		return nil, nil, &ValidationError{Field: "medical_certificate", Message: err.Error()}
	}
	if input.ProfilePhoto != nil {
		path, err := savedPath(input.ProfilePhoto, upload.CategoryProfile)
		if err != nil {
			cleanup()
			return nil, nil, &ValidationError{Field: "profile_photo", Message: err.Error()}
		}
		therapist.ProfilePhotoPath = sql.NullString{String: path, Valid: true}
	}

	entry := newActivityLog(actor, models.EntityTherapist, models.ActionTherapistSubmitted, map[string]interface{}{
		"spa_id":    spaID,
		"full_name": input.FullName,
	})
	notification := &models.Notification{
		RecipientType: models.RecipientAssociation,
		Title:         "Therapist approval requested",
		Message:       fmt.Sprintf("%s submitted therapist %s for approval.", spa.SpaName, input.FullName),
		Severity:      models.SeverityInfo,
	}

	request, err := s.therapistRepo.CreateWithRequest(therapist, entry, notification)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return therapist, request, nil
}

// Approve resolves a pending request in the therapist's favour. Calling it
// again for the same request reports it as already resolved.
func (s *TherapistService) Approve(requestID uuid.UUID, actor Actor) (*models.TherapistRequest, error) {
	entry := newActivityLog(actor, models.EntityTherapist, models.ActionTherapistApproved, nil)
	notification := &models.Notification{
		Title:    "Therapist approved",
		Message:  "Your therapist onboarding request has been approved.",
		Severity: models.SeverityInfo,
	}
	return s.therapistRepo.ResolveRequest(requestID, *actor.ID, true, "", entry, notification)
}

// Reject resolves a pending request against the therapist, with a reason
func (s *TherapistService) Reject(requestID uuid.UUID, reason string, actor Actor) (*models.TherapistRequest, error) {
	entry := newActivityLog(actor, models.EntityTherapist, models.ActionTherapistRejected, map[string]interface{}{
		"reason": reason,
	})
	notification := &models.Notification{
		Title:    "Therapist rejected",
		Message:  fmt.Sprintf("Your therapist onboarding request was rejected: %s", reason),
		Severity: models.SeverityWarning,
	}
	return s.therapistRepo.ResolveRequest(requestID, *actor.ID, false, reason, entry, notification)
}

// Resign ends an approved therapist's employment at the caller's spa
func (s *TherapistService) Resign(therapistID, spaID uuid.UUID, actor Actor) (*models.Therapist, error) {
	return s.endEmployment(therapistID, spaID, models.TherapistStatusResigned, models.ActionTherapistResigned, actor)
}

// Terminate ends an approved therapist's employment at the caller's spa
func (s *TherapistService) Terminate(therapistID, spaID uuid.UUID, actor Actor) (*models.Therapist, error) {
	return s.endEmployment(therapistID, spaID, models.TherapistStatusTerminated, models.ActionTherapistTerminated, actor)
}

func (s *TherapistService) endEmployment(therapistID, spaID uuid.UUID, newStatus, action string, actor Actor) (*models.Therapist, error) {
	entry := newActivityLog(actor, models.EntityTherapist, action, map[string]interface{}{
		"spa_id": spaID,
	})
	notification := &models.Notification{
		RecipientType: models.RecipientAssociation,
		Title:         "Therapist employment ended",
		Message:       fmt.Sprintf("A therapist was marked %s by their spa.", newStatus),
		Severity:      models.SeverityInfo,
	}
	return s.therapistRepo.EndEmployment(therapistID, spaID, newStatus, entry, notification)
}

// SearchHistory is the government-officer cross-spa working-history search
func (s *TherapistService) SearchHistory(nic, name string, limit int) ([]*models.TherapistWithHistory, error) {
	if nic == "" && name == "" {
		return nil, &ValidationError{Field: "query", Message: "nic or name is required"}
	}
	if nic != "" {
		sanitized, err := s.identity.ValidateNIC(nic)
		if err != nil {
			return nil, &ValidationError{Field: "nic", Message: err.Error()}
		}
		nic = sanitized
	}
	return s.therapistRepo.SearchWithHistory(database.HistorySearchFilter{NIC: nic, Name: name, Limit: limit})
}

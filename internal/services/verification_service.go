package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/pkg/mailer"
	"github.com/sirupsen/logrus"
)

// VerificationService handles admin verification of pending spas
type VerificationService struct {
	spaRepo *database.SpaRepository
	mailer  mailer.Mailer
	logger  *logrus.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(spaRepo *database.SpaRepository, m mailer.Mailer, logger *logrus.Logger) *VerificationService {
	return &VerificationService{spaRepo: spaRepo, mailer: m, logger: logger}
}

// Verify marks a pending spa verified. The status change, audit entry, and
// spa notification commit in one transaction.
func (s *VerificationService) Verify(spaID uuid.UUID, actor Actor) (*models.Spa, error) {
	entry := newActivityLog(actor, models.EntitySpa, models.ActionSpaVerified, nil)
	notification := &models.Notification{
		Title:    "Registration verified",
		Message:  "Your spa registration has been verified by the association.",
		Severity: models.SeverityInfo,
	}

	spa, err := s.spaRepo.Verify(spaID, *actor.ID, entry, notification)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Dear %s,\n\nYour registration %s has been verified. Welcome to the association.\n",
		spa.OwnerName, spa.ReferenceNumber)
	if err := s.mailer.Send([]string{spa.Email}, "Registration verified", body); err != nil {
		s.logger.WithField("spa_id", spa.ID).Warnf("failed to email verification result: %v", err)
	}

	return spa, nil
}

// Reject marks a pending spa rejected with a reason, same transactional
// shape as Verify.
func (s *VerificationService) Reject(spaID uuid.UUID, reason string, actor Actor) (*models.Spa, error) {
	entry := newActivityLog(actor, models.EntitySpa, models.ActionSpaRejected, map[string]interface{}{
		"reason": reason,
	})
	notification := &models.Notification{
		Title:    "Registration rejected",
		Message:  fmt.Sprintf("Your spa registration was rejected: %s", reason),
		Severity: models.SeverityWarning,
	}

	spa, err := s.spaRepo.Reject(spaID, *actor.ID, reason, entry, notification)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Dear %s,\n\nYour registration %s was rejected.\nReason: %s\n",
		spa.OwnerName, spa.ReferenceNumber, reason)
	if err := s.mailer.Send([]string{spa.Email}, "Registration rejected", body); err != nil {
		s.logger.WithField("spa_id", spa.ID).Warnf("failed to email rejection: %v", err)
	}

	return spa, nil
}

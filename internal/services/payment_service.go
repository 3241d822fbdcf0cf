package services

import (
	"database/sql"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/config"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/pkg/upload"
	"github.com/sirupsen/logrus"
)

// PaymentInput carries a spa's fee payment submission
type PaymentInput struct {
	Type   string // monthly, quarterly, annual
	Method string // card, bank_transfer
	Slip   *multipart.FileHeader
}

// PaymentService records fee payments and applies approvals
type PaymentService struct {
	paymentRepo *database.PaymentRepository
	spaRepo     *database.SpaRepository
	saver       *upload.Saver
	fees        config.PaymentConfig
	logger      *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo *database.PaymentRepository,
	spaRepo *database.SpaRepository,
	saver *upload.Saver,
	fees config.PaymentConfig,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		spaRepo:     spaRepo,
		saver:       saver,
		fees:        fees,
		logger:      logger,
	}
}

// feeFor resolves the configured amount for a renewal payment type
func (s *PaymentService) feeFor(paymentType string) (float64, bool) {
	switch paymentType {
	case models.PaymentTypeMonthly:
		return s.fees.MonthlyFee, true
	case models.PaymentTypeQuarterly:
		return s.fees.QuarterlyFee, true
	case models.PaymentTypeAnnual:
		return s.fees.AnnualFee, true
	}
	return 0, false
}

// Record accepts a renewal payment from a spa. Card payments settle
// immediately and extend the spa's next payment date; bank transfers are
// held pending with their slip until an association admin approves.
func (s *PaymentService) Record(spaID uuid.UUID, input *PaymentInput, actor Actor) (*models.Payment, error) {
	amount, ok := s.feeFor(input.Type)
	if !ok {
		return nil, &ValidationError{Field: "type", Message: "must be monthly, quarterly or annual"}
	}
	if input.Method != models.PaymentMethodCard && input.Method != models.PaymentMethodBankTransfer {
		return nil, &ValidationError{Field: "method", Message: "must be card or bank_transfer"}
	}

	spa, err := s.spaRepo.GetByID(spaID)
	if err != nil {
		return nil, err
	}

	reference, err := s.paymentRepo.GenerateReference()
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		SpaID:           spaID,
		ReferenceNumber: reference,
		Type:            input.Type,
		Method:          input.Method,
		Amount:          amount,
	}

	entry := newActivityLog(actor, models.EntityPayment, models.ActionPaymentRecorded, map[string]interface{}{
		"spa_id":    spaID,
		"type":      input.Type,
		"method":    input.Method,
		"amount":    amount,
		"reference": reference,
	})

	if input.Method == models.PaymentMethodCard {
		duration, _ := models.PlanDuration(input.Type)
		notification := &models.Notification{
			RecipientType: models.RecipientSpa,
			RecipientID:   &spaID,
			Title:         "Payment received",
			Message:       fmt.Sprintf("Your %s payment %s of Rs. %.2f has been received.", input.Type, reference, amount),
			Severity:      models.SeverityInfo,
		}
		if err := s.paymentRepo.RecordCardPayment(payment, time.Now().Add(duration), entry, notification); err != nil {
			return nil, err
		}
		return payment, nil
	}

	if input.Slip == nil {
		return nil, &ValidationError{Field: "slip", Message: "bank transfer slip is required"}
	}
	slipPath, err := s.saver.Save(input.Slip, upload.CategorySlip)
	if err != nil {
		return nil, &ValidationError{Field: "slip", Message: err.Error()}
	}
	payment.SlipPath = sql.NullString{String: slipPath, Valid: true}

	notification := &models.Notification{
		RecipientType: models.RecipientAssociation,
		Title:         "Bank transfer pending approval",
		Message:       fmt.Sprintf("%s submitted a %s bank transfer %s of Rs. %.2f.", spa.SpaName, input.Type, reference, amount),
		Severity:      models.SeverityInfo,
	}
	if err := s.paymentRepo.RecordBankTransfer(payment, entry, notification); err != nil {
		if cleanupErr := s.saver.Cleanup([]string{slipPath}); cleanupErr != nil {
			s.logger.Warnf("payment slip cleanup left file behind: %v", cleanupErr)
		}
		return nil, err
	}
	return payment, nil
}

// Approve completes a pending bank transfer and extends the paying spa's
// next payment date by the plan the transfer covers
func (s *PaymentService) Approve(paymentID uuid.UUID, actor Actor) (*models.Payment, error) {
	entry := newActivityLog(actor, models.EntityPayment, models.ActionPaymentApproved, nil)
	notification := &models.Notification{
		Title:    "Payment approved",
		Message:  "Your bank transfer has been approved and your membership is up to date.",
		Severity: models.SeverityInfo,
	}
	return s.paymentRepo.ApproveBankTransfer(paymentID, *actor.ID, entry, notification)
}

// List returns payments matching the filter
func (s *PaymentService) List(filter database.PaymentFilter) ([]*models.Payment, error) {
	return s.paymentRepo.List(filter)
}

package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"mime/multipart"
	"time"

	"github.com/lankaspa/lsa-admin-backend/internal/config"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/pkg/mailer"
	"github.com/lankaspa/lsa-admin-backend/pkg/upload"
	"github.com/lankaspa/lsa-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ValidationError is a caller-facing rejection raised before any row or
// file is persisted
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RegistrationInput carries everything a spa registration submits
type RegistrationInput struct {
	OwnerName     string
	OwnerNIC      string
	Email         string
	Phone         string
	SpaName       string
	AddressLine1  string
	AddressLine2  string
	Province      string
	PostalCode    string
	PaymentMethod string

	NICFront       *multipart.FileHeader
	NICBack        *multipart.FileHeader
	BRDocument     *multipart.FileHeader
	Form1Cert      *multipart.FileHeader
	BannerPhoto    *multipart.FileHeader
	FacilityPhotos []*multipart.FileHeader
}

// RegistrationResult is returned to the applicant once the registration
// commits. The temporary password is shown exactly once.
type RegistrationResult struct {
	Spa          *models.Spa     `json:"spa"`
	Payment      *models.Payment `json:"payment"`
	Username     string          `json:"username"`
	TempPassword string          `json:"temporary_password"`
}

// RegistrationService runs the multi-step spa registration workflow
type RegistrationService struct {
	spaRepo     *database.SpaRepository
	paymentRepo *database.PaymentRepository
	identity    *validator.IdentityValidator
	saver       *upload.Saver
	mailer      mailer.Mailer
	uploadCfg   config.UploadConfig
	paymentCfg  config.PaymentConfig
	adminInbox  string
	bcryptCost  int
	logger      *logrus.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	spaRepo *database.SpaRepository,
	paymentRepo *database.PaymentRepository,
	identity *validator.IdentityValidator,
	saver *upload.Saver,
	m mailer.Mailer,
	cfg *config.Config,
	logger *logrus.Logger,
) *RegistrationService {
	return &RegistrationService{
		spaRepo:     spaRepo,
		paymentRepo: paymentRepo,
		identity:    identity,
		saver:       saver,
		mailer:      m,
		uploadCfg:   cfg.Upload,
		paymentCfg:  cfg.Payment,
		adminInbox:  cfg.Email.AdminInbox,
		bcryptCost:  cfg.Security.BcryptCost,
		logger:      logger,
	}
}

// Register validates and persists a new spa registration. Every database
// write happens in one transaction; files already written to storage are
// removed best-effort if the transaction fails.
func (s *RegistrationService) Register(input *RegistrationInput, actor Actor) (*RegistrationResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	sanitizedPhone, err := s.identity.ValidatePhone(input.Phone)
	if err != nil {
		return nil, &ValidationError{Field: "phone", Message: err.Error()}
	}
	sanitizedNIC, err := s.identity.ValidateNIC(input.OwnerNIC)
	if err != nil {
		return nil, &ValidationError{Field: "owner_nic", Message: err.Error()}
	}

	// Files are written before the transaction opens; a crash between here
	// and commit can orphan them. Documented, not fixed.
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
			s.logger.Warnf("registration cleanup left files behind: %v", err)
		}
	}

	spa := &models.Spa{
		OwnerName:       input.OwnerName,
		OwnerNIC:        sanitizedNIC,
		Email:           input.Email,
		Phone:           sanitizedPhone,
		SpaName:         input.SpaName,
		AddressLine1:    input.AddressLine1,
		Province:        input.Province,
		PostalCode:      input.PostalCode,
		Status:          models.SpaStatusPending,
		PaymentStatus:   models.SpaPaymentPending,
		NextPaymentDate: time.Now().AddDate(1, 0, 0),
	}
	if input.AddressLine2 != "" {
		spa.AddressLine2.String = input.AddressLine2
		spa.AddressLine2.Valid = true
	}

	if spa.NICFrontPath, err = savedPath(input.NICFront, upload.CategoryNIC); err != nil {
		cleanup()
		return nil, &ValidationError{Field: "nic_front", Message: err.Error()}
	}
	if spa.NICBackPath, err = savedPath(input.NICBack, upload.CategoryNIC); err != nil {
		cleanup()
		return nil, &ValidationError{Field: "nic_back", Message: err.Error()}
	}
	if spa.BRDocumentPath, err = savedPath(input.BRDocument, upload.CategoryBR); err != nil {
		cleanup()
		return nil, &ValidationError{Field: "br_document", Message: err.Error()}
	}
	if spa.Form1CertPath, err = savedPath(input.Form1Cert, upload.CategoryForm1); err != nil {
		cleanup()
		return nil, &ValidationError{Field: "form1_certificate", Message: err.Error()}
	}
	if spa.BannerPhotoPath, err = savedPath(input.BannerPhoto, upload.CategoryBanner); err != nil {
		cleanup()
		return nil, &ValidationError{Field: "spa_banner", Message: err.Error()}
	}
	for _, fh := range input.FacilityPhotos {
		path, err := savedPath(fh, upload.CategoryFacility)
		if err != nil {
			cleanup()
			return nil, &ValidationError{Field: "facility_photos", Message: err.Error()}
		}
		spa.FacilityPhotos = append(spa.FacilityPhotos, path)
	}

	paymentRef, err := s.paymentRepo.GenerateReference()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to allocate payment reference: %w", err)
	}

	payment := &models.Payment{
		ReferenceNumber: paymentRef,
		Type:            models.PaymentTypeRegistration,
		Method:          input.PaymentMethod,
		Amount:          s.paymentCfg.RegistrationFee,
		Status:          models.PaymentStatusPending,
	}
	if input.PaymentMethod == models.PaymentMethodCard {
		payment.Status = models.PaymentStatusCompleted
		payment.PaidAt.Time = time.Now()
		payment.PaidAt.Valid = true
	}

	tempPassword, err := generateTempPassword(12)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to generate temporary password: %w", err)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), s.bcryptCost)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to hash temporary password: %w", err)
	}

	account := &models.AdminUser{
		Username:     input.Email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleAdminSpa,
		FullName:     input.OwnerName,
		Email:        input.Email,
		IsActive:     true,
	}

	entry := newActivityLog(actor, models.EntitySpa, models.ActionSpaRegistered, map[string]interface{}{
		"spa_name":       input.SpaName,
		"payment_method": input.PaymentMethod,
	})

	notification := &models.Notification{
		RecipientType: models.RecipientAssociation,
		Title:         "New spa registration",
		Message:       fmt.Sprintf("%s has registered and is awaiting verification.", input.SpaName),
		Severity:      models.SeverityInfo,
	}

	if err := s.spaRepo.Register(spa, payment, account, entry, notification); err != nil {
		cleanup()
		if err == database.ErrDuplicateUsername {
			return nil, &ValidationError{Field: "email", Message: "an account with this email already exists"}
		}
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	// Email is outside the transaction on purpose: delivery failure must
	// never fail a committed registration.
	s.sendRegistrationEmails(spa, tempPassword)

	return &RegistrationResult{
		Spa:          spa,
		Payment:      payment,
		Username:     account.Username,
		TempPassword: tempPassword,
	}, nil
}

func (s *RegistrationService) validate(input *RegistrationInput) error {
	required := []struct {
		field string
		value string
	}{
		{"owner_name", input.OwnerName},
		{"owner_nic", input.OwnerNIC},
		{"email", input.Email},
		{"phone", input.Phone},
		{"spa_name", input.SpaName},
		{"address_line1", input.AddressLine1},
		{"province", input.Province},
		{"postal_code", input.PostalCode},
	}
	for _, f := range required {
		if f.value == "" {
			return &ValidationError{Field: f.field, Message: "is required"}
		}
	}

	if input.PaymentMethod != models.PaymentMethodCard && input.PaymentMethod != models.PaymentMethodBankTransfer {
		return &ValidationError{Field: "payment_method", Message: "must be card or bank_transfer"}
	}

	files := []struct {
		field string
		file  *multipart.FileHeader
	}{
		{"nic_front", input.NICFront},
		{"nic_back", input.NICBack},
		{"br_document", input.BRDocument},
		{"form1_certificate", input.Form1Cert},
		{"spa_banner", input.BannerPhoto},
	}
	for _, f := range files {
		if f.file == nil {
			return &ValidationError{Field: f.field, Message: "file is required"}
		}
	}

	if len(input.FacilityPhotos) < s.uploadCfg.MinFacilityPhoto {
		return &ValidationError{
			Field:   "facility_photos",
			Message: fmt.Sprintf("at least %d facility photos are required", s.uploadCfg.MinFacilityPhoto),
		}
	}
	if len(input.FacilityPhotos) > s.uploadCfg.MaxFacilityPhoto {
		return &ValidationError{
			Field:   "facility_photos",
			Message: fmt.Sprintf("at most %d facility photos are accepted", s.uploadCfg.MaxFacilityPhoto),
		}
	}

	return nil
}

func (s *RegistrationService) sendRegistrationEmails(spa *models.Spa, tempPassword string) {
	applicantBody := fmt.Sprintf(
		"Dear %s,\n\nYour registration for %s has been received.\nReference number: %s\n\n"+
			"You can sign in with your email address and the temporary password below.\n"+
			"Temporary password: %s\n\nPlease change it after your first login.\n\nLanka Spa Association",
		spa.OwnerName, spa.SpaName, spa.ReferenceNumber, tempPassword)
	if err := s.mailer.Send([]string{spa.Email}, "Registration received - "+spa.ReferenceNumber, applicantBody); err != nil {
		s.logger.WithField("spa_id", spa.ID).Warnf("failed to email applicant: %v", err)
	}

	adminBody := fmt.Sprintf(
		"A new spa registration is awaiting verification.\n\nSpa: %s\nReference: %s\nOwner: %s\nProvince: %s\n",
		spa.SpaName, spa.ReferenceNumber, spa.OwnerName, spa.Province)
	if err := s.mailer.Send([]string{s.adminInbox}, "New spa registration - "+spa.ReferenceNumber, adminBody); err != nil {
		s.logger.WithField("spa_id", spa.ID).Warnf("failed to email association inbox: %v", err)
	}
}

const tempPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// generateTempPassword returns a random password from an alphabet without
// lookalike characters. Each registration gets its own.
func generateTempPassword(length int) (string, error) {
	password := make([]byte, length)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range password {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		password[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(password), nil
}

package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every authentication failure so the
// caller cannot distinguish a wrong username from a wrong password or an
// expired account.
var ErrInvalidCredentials = fmt.Errorf("invalid username or password")

// AuthService handles account authentication business logic
type AuthService struct {
	userRepo            *database.AdminUserRepository
	jwtService          *jwt.Service
	accessTokenDuration time.Duration
	bcryptCost          int
	logger              *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *database.AdminUserRepository,
	jwtService *jwt.Service,
	accessTokenDuration time.Duration,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		userRepo:            userRepo,
		jwtService:          jwtService,
		accessTokenDuration: accessTokenDuration,
		bcryptCost:          bcryptCost,
		logger:              logger,
	}
}

// Login authenticates an account and returns an access token. Passwords are
// compared against the bcrypt hash only; there is no plaintext fallback.
func (s *AuthService) Login(username, password string) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// Time-bounded accounts stop working at expiry
	if user.IsExpired(time.Now()) {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Username, user.Role, user.SpaID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		// Not worth failing the login over
		s.logger.WithField("user_id", user.ID).Warnf("failed to update last login: %v", err)
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.accessTokenDuration.Seconds()),
		User:        user,
	}, nil
}

// ChangePassword changes an account's password after verifying the old one
func (s *AuthService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("account not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("incorrect old password")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(userID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// CreateOfficer creates a time-bounded government officer account
func (s *AuthService) CreateOfficer(username, password, fullName, email string, expiresAt time.Time, createdBy uuid.UUID) (*models.AdminUser, error) {
	if !expiresAt.After(time.Now()) {
		return nil, &ValidationError{Field: "expires_at", Message: "must be in the future"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.AdminUser{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleGovernmentOfficer,
		FullName:     fullName,
		Email:        email,
		IsActive:     true,
		CreatedBy:    &createdBy,
	}
	user.ExpiresAt.Time = expiresAt
	user.ExpiresAt.Valid = true

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// ListAccounts retrieves all accounts
func (s *AuthService) ListAccounts() ([]*models.AdminUser, error) {
	return s.userRepo.List()
}

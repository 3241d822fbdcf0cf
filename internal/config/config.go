package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// File upload configuration
	Upload UploadConfig

	// Email configuration
	Email EmailConfig

	// Payment configuration
	Payment PaymentConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// UploadConfig holds file upload configuration
type UploadConfig struct {
	BaseDir          string // filesystem directory uploads are written to
	MaxImageSizeMB   int64  // per-file cap for image uploads
	MaxDocSizeMB     int64  // per-file cap for PDF documents
	MinFacilityPhoto int    // minimum facility photos per registration
	MaxFacilityPhoto int    // maximum facility photos per registration
}

// EmailConfig holds SMTP configuration for transactional email
type EmailConfig struct {
	Mode        string // "dev" logs instead of sending, "production" sends via SMTP
	SMTPHost    string
	SMTPPort    string
	Username    string
	Password    string
	FromAddress string
	AdminInbox  string // association mailbox copied on registrations
}

// PaymentConfig holds association fee configuration
type PaymentConfig struct {
	RegistrationFee float64
	MonthlyFee      float64
	QuarterlyFee    float64
	AnnualFee       float64
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost       int
	EnableRequestLog bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 28800)) * time.Second,
		},
		Upload: UploadConfig{
			BaseDir:          getEnv("UPLOAD_DIR", "./uploads"),
			MaxImageSizeMB:   int64(getEnvAsInt("UPLOAD_MAX_IMAGE_MB", 5)),
			MaxDocSizeMB:     int64(getEnvAsInt("UPLOAD_MAX_DOC_MB", 10)),
			MinFacilityPhoto: getEnvAsInt("UPLOAD_MIN_FACILITY_PHOTOS", 5),
			MaxFacilityPhoto: getEnvAsInt("UPLOAD_MAX_FACILITY_PHOTOS", 10),
		},
		Email: EmailConfig{
			Mode:        getEnv("EMAIL_MODE", "dev"),
			SMTPHost:    getEnv("SMTP_HOST", ""),
			SMTPPort:    getEnv("SMTP_PORT", "587"),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			FromAddress: getEnv("EMAIL_FROM", "noreply@lankaspa.lk"),
			AdminInbox:  getEnv("EMAIL_ADMIN_INBOX", "admin@lankaspa.lk"),
		},
		Payment: PaymentConfig{
			RegistrationFee: getEnvAsFloat("FEE_REGISTRATION", 5000),
			MonthlyFee:      getEnvAsFloat("FEE_MONTHLY", 1000),
			QuarterlyFee:    getEnvAsFloat("FEE_QUARTERLY", 2700),
			AnnualFee:       getEnvAsFloat("FEE_ANNUAL", 10000),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Upload.MinFacilityPhoto < 1 {
		return fmt.Errorf("UPLOAD_MIN_FACILITY_PHOTOS must be at least 1")
	}

	if c.Upload.MaxFacilityPhoto < c.Upload.MinFacilityPhoto {
		return fmt.Errorf("UPLOAD_MAX_FACILITY_PHOTOS must be >= UPLOAD_MIN_FACILITY_PHOTOS")
	}

	// SMTP credentials only matter when mail is actually sent
	if c.Email.Mode == "production" {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required in production email mode")
		}

		if c.Email.Username == "" {
			return fmt.Errorf("SMTP_USERNAME is required in production email mode")
		}

		if c.Email.Password == "" {
			return fmt.Errorf("SMTP_PASSWORD is required in production email mode")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s, using default: %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Spa represents a registered spa business under association oversight
type Spa struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ReferenceNumber string    `db:"reference_number" json:"reference_number"` // LSA####

	// Owner identity
	OwnerName string `db:"owner_name" json:"owner_name"`
	OwnerNIC  string `db:"owner_nic" json:"owner_nic"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`

	// Spa identity and address
	SpaName      string         `db:"spa_name" json:"spa_name"`
	AddressLine1 string         `db:"address_line1" json:"address_line1"`
	AddressLine2 sql.NullString `db:"address_line2" json:"address_line2,omitempty"`
	Province     string         `db:"province" json:"province"`
	PostalCode   string         `db:"postal_code" json:"postal_code"`

	// Document paths (web-relative, served statically)
	NICFrontPath    string      `db:"nic_front_path" json:"nic_front_path"`
	NICBackPath     string      `db:"nic_back_path" json:"nic_back_path"`
	BRDocumentPath  string      `db:"br_document_path" json:"br_document_path"`
	Form1CertPath   string      `db:"form1_cert_path" json:"form1_cert_path"`
	BannerPhotoPath string      `db:"banner_photo_path" json:"banner_photo_path"`
	FacilityPhotos  StringArray `db:"facility_photos" json:"facility_photos"`

	// Verification state
	Status          string         `db:"status" json:"status"` // pending, verified, rejected
	RejectionReason sql.NullString `db:"rejection_reason" json:"rejection_reason,omitempty"`
	VerifiedAt      sql.NullTime   `db:"verified_at" json:"verified_at,omitempty"`
	VerifiedBy      *uuid.UUID     `db:"verified_by" json:"verified_by,omitempty"`

	// Payment state
	PaymentStatus   string    `db:"payment_status" json:"payment_status"` // pending, paid
	NextPaymentDate time.Time `db:"next_payment_date" json:"next_payment_date"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Spa status constants
const (
	SpaStatusPending  = "pending"
	SpaStatusVerified = "verified"
	SpaStatusRejected = "rejected"
)

// Spa payment status constants
const (
	SpaPaymentPending = "pending"
	SpaPaymentPaid    = "paid"
)

// IsOverdue reports whether the spa is restricted to the payment section only.
// A spa is overdue when its next payment date has passed and the last cycle
// was never settled.
func (s *Spa) IsOverdue(now time.Time) bool {
	return s.NextPaymentDate.Before(now) && s.PaymentStatus != SpaPaymentPaid
}

package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Payment represents one association fee payment by a spa
type Payment struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	SpaID           uuid.UUID      `db:"spa_id" json:"spa_id"`
	ReferenceNumber string         `db:"reference_number" json:"reference_number"` // PAY-YYYYMMDD-XXXXXX
	Type            string         `db:"type" json:"type"`                         // registration, monthly, quarterly, annual
	Method          string         `db:"method" json:"method"`                     // card, bank_transfer
	Amount          float64        `db:"amount" json:"amount"`
	Status          string         `db:"status" json:"status"` // pending, completed
	SlipPath        sql.NullString `db:"slip_path" json:"slip_path,omitempty"`
	ApprovedBy      *uuid.UUID     `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt      sql.NullTime   `db:"approved_at" json:"approved_at,omitempty"`
	PaidAt          sql.NullTime   `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// Payment type constants
const (
	PaymentTypeRegistration = "registration"
	PaymentTypeMonthly      = "monthly"
	PaymentTypeQuarterly    = "quarterly"
	PaymentTypeAnnual       = "annual"
)

// Payment method constants
const (
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
)

// Payment status constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// PlanDuration returns how far a completed payment of the given type pushes
// the spa's next payment date. Registration grants a full year up front.
func PlanDuration(paymentType string) (time.Duration, bool) {
	switch paymentType {
	case PaymentTypeMonthly:
		return 30 * 24 * time.Hour, true
	case PaymentTypeQuarterly:
		return 90 * 24 * time.Hour, true
	case PaymentTypeAnnual, PaymentTypeRegistration:
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

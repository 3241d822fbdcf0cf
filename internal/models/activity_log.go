package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ActivityLog is the append-only audit trail. Rows are never mutated.
type ActivityLog struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	EntityType string         `db:"entity_type" json:"entity_type"` // spa, therapist, payment, account
	EntityID   uuid.UUID      `db:"entity_id" json:"entity_id"`
	Action     string         `db:"action" json:"action"`
	ActorID    *uuid.UUID     `db:"actor_id" json:"actor_id,omitempty"` // nil for unauthenticated actions
	ActorRole  sql.NullString `db:"actor_role" json:"actor_role,omitempty"`
	Details    []byte         `db:"details" json:"details,omitempty"` // JSONB
	IPAddress  sql.NullString `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent  sql.NullString `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// Entity type constants for activity logging
const (
	EntitySpa       = "spa"
	EntityTherapist = "therapist"
	EntityPayment   = "payment"
	EntityAccount   = "account"
)

// Action constants for activity logging
const (
	ActionSpaRegistered       = "spa_registered"
	ActionSpaVerified         = "spa_verified"
	ActionSpaRejected         = "spa_rejected"
	ActionTherapistSubmitted  = "therapist_submitted"
	ActionTherapistApproved   = "therapist_approved"
	ActionTherapistRejected   = "therapist_rejected"
	ActionTherapistResigned   = "therapist_resigned"
	ActionTherapistTerminated = "therapist_terminated"
	ActionPaymentRecorded     = "payment_recorded"
	ActionPaymentApproved     = "payment_approved"
	ActionAccountCreated      = "account_created"
)

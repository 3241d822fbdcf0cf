package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Therapist represents an individual practitioner affiliated with one spa
type Therapist struct {
	ID    uuid.UUID `db:"id" json:"id"`
	SpaID uuid.UUID `db:"spa_id" json:"spa_id"` // current owning spa

	// Identity
	FullName  string         `db:"full_name" json:"full_name"`
	NICNumber string         `db:"nic_number" json:"nic_number"`
	Phone     sql.NullString `db:"phone" json:"phone,omitempty"`
	Email     sql.NullString `db:"email" json:"email,omitempty"`

	// Document paths
	NICFrontPath     string         `db:"nic_front_path" json:"nic_front_path"`
	NICBackPath      string         `db:"nic_back_path" json:"nic_back_path"`
	MedicalCertPath  string         `db:"medical_cert_path" json:"medical_cert_path"`
	ProfilePhotoPath sql.NullString `db:"profile_photo_path" json:"profile_photo_path,omitempty"`

	Status string `db:"status" json:"status"` // pending, approved, rejected, resigned, terminated

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Therapist status constants
const (
	TherapistStatusPending    = "pending"
	TherapistStatusApproved   = "approved"
	TherapistStatusRejected   = "rejected"
	TherapistStatusResigned   = "resigned"
	TherapistStatusTerminated = "terminated"
)

// TherapistRequest pairs an onboarding ask with the resulting therapist so
// the association can audit the original request separately from the
// therapist's current status.
type TherapistRequest struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	TherapistID uuid.UUID      `db:"therapist_id" json:"therapist_id"`
	SpaID       uuid.UUID      `db:"spa_id" json:"spa_id"`
	Status      string         `db:"status" json:"status"` // pending, approved, rejected
	Reason      sql.NullString `db:"reason" json:"reason,omitempty"`
	ResolvedBy  *uuid.UUID     `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt  sql.NullTime   `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Therapist request status constants
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// WorkingHistoryEntry is one employment span in a therapist's ordered
// working history. The open span (ended_at NULL) is the current employer.
type WorkingHistoryEntry struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	TherapistID uuid.UUID      `db:"therapist_id" json:"therapist_id"`
	SpaID       uuid.UUID      `db:"spa_id" json:"spa_id"`
	SpaName     string         `db:"spa_name" json:"spa_name"`
	StartedAt   time.Time      `db:"started_at" json:"started_at"`
	EndedAt     sql.NullTime   `db:"ended_at" json:"ended_at,omitempty"`
	EndReason   sql.NullString `db:"end_reason" json:"end_reason,omitempty"` // resigned, terminated
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// TherapistWithHistory is the officer search result shape
type TherapistWithHistory struct {
	Therapist      Therapist             `json:"therapist"`
	CurrentSpaName string                `json:"current_spa_name"`
	WorkingHistory []WorkingHistoryEntry `json:"working_history"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one entry in a recipient's inbox. Workflows create them;
// the only permitted mutation afterwards is the read acknowledgement.
type Notification struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	RecipientType string     `db:"recipient_type" json:"recipient_type"` // association, spa
	RecipientID   *uuid.UUID `db:"recipient_id" json:"recipient_id,omitempty"`
	Title         string     `db:"title" json:"title"`
	Message       string     `db:"message" json:"message"`
	Severity      string     `db:"severity" json:"severity"` // info, warning, critical
	IsRead        bool       `db:"is_read" json:"is_read"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Recipient type constants. Association notifications have no recipient_id
// and are visible to every admin_lsa account.
const (
	RecipientAssociation = "association"
	RecipientSpa         = "spa"
)

// Severity constants
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

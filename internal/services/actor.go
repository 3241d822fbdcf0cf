package services

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/internal/utils"
)

// Actor identifies who performed a workflow action, for the audit trail.
// ID is nil for unauthenticated actions such as public registration.
type Actor struct {
	ID        *uuid.UUID
	Role      string
	IPAddress string
	UserAgent string
}

// newActivityLog builds an audit entry for the given actor and action.
// EntityID is filled in by the repository once the entity row exists.
func newActivityLog(actor Actor, entityType, action string, details map[string]interface{}) *models.ActivityLog {
	if details == nil {
		details = map[string]interface{}{}
	}
	if actor.UserAgent != "" {
		details["device_info"] = utils.ParseUserAgent(actor.UserAgent)
	}

	// Details are informational. A serialization failure degrades the entry,
	// it does not block the workflow.
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte(`{}`)
	}

	entry := &models.ActivityLog{
		EntityType: entityType,
		Action:     action,
		ActorID:    actor.ID,
		Details:    detailsJSON,
	}
	if actor.Role != "" {
		entry.ActorRole = sql.NullString{String: actor.Role, Valid: true}
	}
	if actor.IPAddress != "" {
		entry.IPAddress = sql.NullString{String: actor.IPAddress, Valid: true}
	}
	if actor.UserAgent != "" {
		entry.UserAgent = sql.NullString{String: actor.UserAgent, Valid: true}
	}

	return entry
}

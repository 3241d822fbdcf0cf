package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
)

// ActivityLogRepository handles the append-only audit trail
type ActivityLogRepository struct {
	db *sqlx.DB
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *sqlx.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

const insertActivityLogQuery = `
	INSERT INTO activity_logs (
		entity_type, entity_id, action, actor_id, actor_role,
		details, ip_address, user_agent
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at`

// Insert appends one audit entry outside any workflow transaction
func (r *ActivityLogRepository) Insert(entry *models.ActivityLog) error {
	err := r.db.QueryRowx(insertActivityLogQuery,
		entry.EntityType, entry.EntityID, entry.Action, entry.ActorID, entry.ActorRole,
		entry.Details, entry.IPAddress, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

// insertActivityLogTx appends one audit entry inside a workflow transaction
func insertActivityLogTx(tx *sqlx.Tx, entry *models.ActivityLog) error {
	err := tx.QueryRowx(insertActivityLogQuery,
		entry.EntityType, entry.EntityID, entry.Action, entry.ActorID, entry.ActorRole,
		entry.Details, entry.IPAddress, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

// ActivityLogFilter enumerates the recognized filter fields for listing
type ActivityLogFilter struct {
	EntityType string
	EntityID   *uuid.UUID
	Action     string
	Limit      int
}

// List returns audit entries newest first, filtered by the given fields
func (r *ActivityLogRepository) List(filter ActivityLogFilter) ([]*models.ActivityLog, error) {
	query := `
		SELECT id, entity_type, entity_id, action, actor_id, actor_role,
		       details, ip_address, user_agent, created_at
		FROM activity_logs
		WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", argIdx)
		args = append(args, filter.EntityType)
		argIdx++
	}
	if filter.EntityID != nil {
		query += fmt.Sprintf(" AND entity_id = $%d", argIdx)
		args = append(args, *filter.EntityID)
		argIdx++
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, filter.Action)
		argIdx++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := r.db.Queryx(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	entries := []*models.ActivityLog{}
	for rows.Next() {
		entry := &models.ActivityLog{}
		if err := rows.StructScan(entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
)

// NotificationRepository handles per-recipient inbox rows
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const insertNotificationQuery = `
	INSERT INTO notifications (
		recipient_type, recipient_id, title, message, severity
	) VALUES ($1, $2, $3, $4, $5)
	RETURNING id, is_read, created_at`

// insertNotificationTx creates a notification inside a workflow transaction
func insertNotificationTx(tx *sqlx.Tx, n *models.Notification) error {
	err := tx.QueryRowx(insertNotificationQuery,
		n.RecipientType, n.RecipientID, n.Title, n.Message, n.Severity,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListForAssociation returns the association-wide inbox, newest first
func (r *NotificationRepository) ListForAssociation(unreadOnly bool) ([]*models.Notification, error) {
	return r.list(`recipient_type = 'association'`, nil, unreadOnly)
}

// ListForSpa returns one spa's inbox, newest first
func (r *NotificationRepository) ListForSpa(spaID uuid.UUID, unreadOnly bool) ([]*models.Notification, error) {
	return r.list(`recipient_type = 'spa' AND recipient_id = $1`, []interface{}{spaID}, unreadOnly)
}

func (r *NotificationRepository) list(where string, args []interface{}, unreadOnly bool) ([]*models.Notification, error) {
	query := `
		SELECT id, recipient_type, recipient_id, title, message, severity, is_read, created_at
		FROM notifications
		WHERE ` + where
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := r.db.Queryx(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.StructScan(n); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// MarkReadForAssociation acknowledges an association notification
func (r *NotificationRepository) MarkReadForAssociation(id uuid.UUID) error {
	return r.markRead(`UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND recipient_type = 'association'`, id)
}

// MarkReadForSpa acknowledges a spa notification, scoped to the owning spa
// so one spa can never acknowledge another's inbox
func (r *NotificationRepository) MarkReadForSpa(id, spaID uuid.UUID) error {
	return r.markRead(`UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND recipient_type = 'spa' AND recipient_id = $2`, id, spaID)
}

func (r *NotificationRepository) markRead(query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnreadForSpa returns the unread badge count for a spa dashboard
func (r *NotificationRepository) CountUnreadForSpa(spaID uuid.UUID) (int, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_type = 'spa' AND recipient_id = $1 AND is_read = FALSE`, spaID)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

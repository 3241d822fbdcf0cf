package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
)

// TherapistRepository handles database operations for therapists, their
// paired onboarding requests, and working history spans
type TherapistRepository struct {
	db *sqlx.DB
}

// NewTherapistRepository creates a new TherapistRepository
func NewTherapistRepository(db *sqlx.DB) *TherapistRepository {
	return &TherapistRepository{db: db}
}

const therapistColumns = `
	id, spa_id, full_name, nic_number, phone, email,
	nic_front_path, nic_back_path, medical_cert_path, profile_photo_path,
	status, created_at, updated_at`

// CreateWithRequest inserts a pending therapist together with its paired
// request row, audit entry, and association notification in one transaction
func (r *TherapistRepository) CreateWithRequest(
	therapist *models.Therapist,
	entry *models.ActivityLog,
	notification *models.Notification,
) (*models.TherapistRequest, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowx(`
		INSERT INTO therapists (
			spa_id, full_name, nic_number, phone, email,
			nic_front_path, nic_back_path, medical_cert_path, profile_photo_path, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending')
		RETURNING id, created_at, updated_at`,
		therapist.SpaID, therapist.FullName, therapist.NICNumber, therapist.Phone, therapist.Email,
		therapist.NICFrontPath, therapist.NICBackPath, therapist.MedicalCertPath, therapist.ProfilePhotoPath,
	).Scan(&therapist.ID, &therapist.CreatedAt, &therapist.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create therapist: %w", err)
	}
	therapist.Status = models.TherapistStatusPending

	request := &models.TherapistRequest{
		TherapistID: therapist.ID,
		SpaID:       therapist.SpaID,
		Status:      models.RequestStatusPending,
	}
	err = tx.QueryRowx(`
		INSERT INTO therapist_requests (therapist_id, spa_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, created_at`,
		request.TherapistID, request.SpaID,
	).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create therapist request: %w", err)
	}

	entry.EntityID = therapist.ID
	if err := insertActivityLogTx(tx, entry); err != nil {
		return nil, err
	}

	if err := insertNotificationTx(tx, notification); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit therapist creation: %w", err)
	}

	return request, nil
}

// ResolveRequest approves or rejects a pending therapist request. The
// request update is conditioned on status='pending', so a second call for
// an already-resolved request matches zero rows and reports
// ErrRequestResolved without writing a duplicate audit/notification pair.
// Approval opens a working-history span for the owning spa.
func (r *TherapistRepository) ResolveRequest(
	requestID, adminID uuid.UUID,
	approve bool,
	reason string,
	entry *models.ActivityLog,
	notification *models.Notification,
) (*models.TherapistRequest, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	newRequestStatus := models.RequestStatusRejected
	newTherapistStatus := models.TherapistStatusRejected
	if approve {
		newRequestStatus = models.RequestStatusApproved
		newTherapistStatus = models.TherapistStatusApproved
	}

	request := &models.TherapistRequest{}
	err = tx.QueryRowx(`
		UPDATE therapist_requests
		SET status = $2, reason = NULLIF($3, ''), resolved_by = $4, resolved_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, therapist_id, spa_id, status, reason, resolved_by, resolved_at, created_at`,
		requestID, newRequestStatus, reason, adminID,
	).StructScan(request)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists bool
			if checkErr := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM therapist_requests WHERE id = $1)`, requestID); checkErr == nil && exists {
				return nil, ErrRequestResolved
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve therapist request: %w", err)
	}

	result, err := tx.Exec(`
		UPDATE therapists SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		request.TherapistID, newTherapistStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to update therapist status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrNotEligible
	}

	if approve {
		_, err = tx.Exec(`
			INSERT INTO working_history (therapist_id, spa_id, started_at)
			VALUES ($1, $2, NOW())`,
			request.TherapistID, request.SpaID)
		if err != nil {
			return nil, fmt.Errorf("failed to open working history span: %w", err)
		}
	}

	entry.EntityID = request.TherapistID
	if err := insertActivityLogTx(tx, entry); err != nil {
		return nil, err
	}

	notification.RecipientType = models.RecipientSpa
	notification.RecipientID = &request.SpaID
	if err := insertNotificationTx(tx, notification); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit request resolution: %w", err)
	}

	return request, nil
}

// EndEmployment resigns or terminates an approved therapist. Both the
// caller's spa and the approved status are enforced in the UPDATE itself;
// zero rows affected means the therapist is not eligible for the
// transition and nothing is written. The open working-history span is
// closed with the end reason.
func (r *TherapistRepository) EndEmployment(
	therapistID, spaID uuid.UUID,
	newStatus string,
	entry *models.ActivityLog,
	notification *models.Notification,
) (*models.Therapist, error) {
	if newStatus != models.TherapistStatusResigned && newStatus != models.TherapistStatusTerminated {
		return nil, fmt.Errorf("invalid end status: %s", newStatus)
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	therapist := &models.Therapist{}
	err = tx.QueryRowx(`
		UPDATE therapists
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND spa_id = $2 AND status = 'approved'
		RETURNING `+therapistColumns,
		therapistID, spaID, newStatus,
	).StructScan(therapist)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists bool
			if checkErr := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM therapists WHERE id = $1)`, therapistID); checkErr == nil && exists {
				return nil, ErrNotEligible
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update therapist status: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE working_history
		SET ended_at = NOW(), end_reason = $3
		WHERE therapist_id = $1 AND spa_id = $2 AND ended_at IS NULL`,
		therapistID, spaID, newStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to close working history span: %w", err)
	}

	entry.EntityID = therapist.ID
	if err := insertActivityLogTx(tx, entry); err != nil {
		return nil, err
	}

	if err := insertNotificationTx(tx, notification); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit employment end: %w", err)
	}

	return therapist, nil
}

// GetByID retrieves a therapist by ID
func (r *TherapistRepository) GetByID(id uuid.UUID) (*models.Therapist, error) {
	therapist := &models.Therapist{}
	err := r.db.Get(therapist, `SELECT `+therapistColumns+` FROM therapists WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get therapist: %w", err)
	}
	return therapist, nil
}

// TherapistFilter enumerates the recognized filter fields for listing
type TherapistFilter struct {
	SpaID  *uuid.UUID
	Status string
	Limit  int
}

// List returns therapists newest first, filtered by the given fields
func (r *TherapistRepository) List(filter TherapistFilter) ([]*models.Therapist, error) {
	query := `SELECT ` + therapistColumns + ` FROM therapists WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filter.SpaID != nil {
		query += fmt.Sprintf(" AND spa_id = $%d", argIdx)
		args = append(args, *filter.SpaID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
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
		return nil, fmt.Errorf("failed to list therapists: %w", err)
	}
	defer rows.Close()

	therapists := []*models.Therapist{}
	for rows.Next() {
		t := &models.Therapist{}
		if err := rows.StructScan(t); err != nil {
			return nil, err
		}
		therapists = append(therapists, t)
	}

	return therapists, nil
}

// GetRequestByID retrieves a therapist request
func (r *TherapistRepository) GetRequestByID(id uuid.UUID) (*models.TherapistRequest, error) {
	request := &models.TherapistRequest{}
	err := r.db.Get(request, `
		SELECT id, therapist_id, spa_id, status, reason, resolved_by, resolved_at, created_at
		FROM therapist_requests WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get therapist request: %w", err)
	}
	return request, nil
}

// ListPendingRequests returns unresolved onboarding requests, oldest first
func (r *TherapistRepository) ListPendingRequests() ([]*models.TherapistRequest, error) {
	rows, err := r.db.Queryx(`
		SELECT id, therapist_id, spa_id, status, reason, resolved_by, resolved_at, created_at
		FROM therapist_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list therapist requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.TherapistRequest{}
	for rows.Next() {
		req := &models.TherapistRequest{}
		if err := rows.StructScan(req); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// GetWorkingHistory returns a therapist's employment spans as an ordered
// sequence, oldest span first
func (r *TherapistRepository) GetWorkingHistory(therapistID uuid.UUID) ([]models.WorkingHistoryEntry, error) {
	rows, err := r.db.Queryx(`
		SELECT wh.id, wh.therapist_id, wh.spa_id, s.spa_name,
		       wh.started_at, wh.ended_at, wh.end_reason, wh.created_at
		FROM working_history wh
		JOIN spas s ON s.id = wh.spa_id
		WHERE wh.therapist_id = $1
		ORDER BY wh.started_at ASC, wh.id ASC`, therapistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get working history: %w", err)
	}
	defer rows.Close()

	history := []models.WorkingHistoryEntry{}
	for rows.Next() {
		entry := models.WorkingHistoryEntry{}
		if err := rows.StructScan(&entry); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}

	return history, nil
}

// HistorySearchFilter enumerates the recognized officer search fields
type HistorySearchFilter struct {
	NIC   string
	Name  string
	Limit int
}

// SearchWithHistory is the government-officer cross-spa search: therapists
// matched by NIC or name, each with their full ordered working history
func (r *TherapistRepository) SearchWithHistory(filter HistorySearchFilter) ([]*models.TherapistWithHistory, error) {
	query := `
		SELECT ` + therapistColumns + `
		FROM therapists
		WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filter.NIC != "" {
		query += fmt.Sprintf(" AND nic_number = $%d", argIdx)
		args = append(args, filter.NIC)
		argIdx++
	}
	if filter.Name != "" {
		query += fmt.Sprintf(" AND full_name ILIKE $%d", argIdx)
		args = append(args, "%"+filter.Name+"%")
		argIdx++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY full_name ASC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := r.db.Queryx(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search therapists: %w", err)
	}
	defer rows.Close()

	results := []*models.TherapistWithHistory{}
	for rows.Next() {
		t := models.Therapist{}
		if err := rows.StructScan(&t); err != nil {
			return nil, err
		}
		results = append(results, &models.TherapistWithHistory{Therapist: t})
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for _, result := range results {
		history, err := r.GetWorkingHistory(result.Therapist.ID)
		if err != nil {
			return nil, err
		}
		result.WorkingHistory = history

		var spaName string
		if err := r.db.Get(&spaName, `SELECT spa_name FROM spas WHERE id = $1`, result.Therapist.SpaID); err == nil {
			result.CurrentSpaName = spaName
		}
	}

	return results, nil
}

// CountByStatus returns therapist counts per status for the admin dashboard
func (r *TherapistRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Queryx(`SELECT status, COUNT(*) AS count FROM therapists GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count therapists: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, nil
}

// CountPendingRequests returns the number of unresolved onboarding requests
func (r *TherapistRepository) CountPendingRequests() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM therapist_requests WHERE status = 'pending'`); err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count, nil
}

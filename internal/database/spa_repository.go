package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
)

// ReferencePrefix is the fixed prefix for spa reference numbers
const ReferencePrefix = "LSA"

// SpaRepository handles database operations for spas table
type SpaRepository struct {
	db *sqlx.DB
}

// NewSpaRepository creates a new SpaRepository
func NewSpaRepository(db *sqlx.DB) *SpaRepository {
	return &SpaRepository{db: db}
}

const spaColumns = `
	id, reference_number, owner_name, owner_nic, email, phone,
	spa_name, address_line1, address_line2, province, postal_code,
	nic_front_path, nic_back_path, br_document_path, form1_cert_path,
	banner_photo_path, facility_photos, status, rejection_reason,
	verified_at, verified_by, payment_status, next_payment_date,
	created_at, updated_at`

// allocateReferenceTx allocates the next sequential reference number by
// scanning the numeric suffixes of existing references and incrementing.
// Two registrations racing through this read before either commits can
// produce a duplicate; accepted at expected load. On scan failure a
// timestamp-derived reference is used as a best-effort fallback.
func allocateReferenceTx(tx *sqlx.Tx, now time.Time) string {
	var maxSuffix int
	err := tx.Get(&maxSuffix, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(reference_number FROM 4) AS INTEGER)), 0)
		FROM spas
		WHERE reference_number ~ '^LSA[0-9]+$'`)
	if err != nil {
		return fmt.Sprintf("%s%d", ReferencePrefix, now.Unix())
	}
	return fmt.Sprintf("%s%04d", ReferencePrefix, maxSuffix+1)
}

// Register creates everything a new registration needs in one transaction:
// the spa row, the registration payment, the spa's login account, the audit
// entry, and the notification to the association. Nothing is visible to
// readers unless all five writes succeed.
func (r *SpaRepository) Register(
	spa *models.Spa,
	payment *models.Payment,
	account *models.AdminUser,
	entry *models.ActivityLog,
	notification *models.Notification,
) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	spa.ReferenceNumber = allocateReferenceTx(tx, now)

	err = tx.QueryRowx(`
		INSERT INTO spas (
			reference_number, owner_name, owner_nic, email, phone,
			spa_name, address_line1, address_line2, province, postal_code,
			nic_front_path, nic_back_path, br_document_path, form1_cert_path,
			banner_photo_path, facility_photos, status, payment_status, next_payment_date
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		) RETURNING id, created_at, updated_at`,
		spa.ReferenceNumber, spa.OwnerName, spa.OwnerNIC, spa.Email, spa.Phone,
		spa.SpaName, spa.AddressLine1, spa.AddressLine2, spa.Province, spa.PostalCode,
		spa.NICFrontPath, spa.NICBackPath, spa.BRDocumentPath, spa.Form1CertPath,
		spa.BannerPhotoPath, spa.FacilityPhotos, spa.Status, spa.PaymentStatus, spa.NextPaymentDate,
	).Scan(&spa.ID, &spa.CreatedAt, &spa.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create spa: %w", err)
	}

	payment.SpaID = spa.ID
	if err := insertPaymentTx(tx, payment); err != nil {
		return err
	}

	account.SpaID = &spa.ID
	if err := insertAdminUserTx(tx, account); err != nil {
		return err
	}

	entry.EntityID = spa.ID
	if err := insertActivityLogTx(tx, entry); err != nil {
		return err
	}

	if err := insertNotificationTx(tx, notification); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}

	return nil
}

// GetByID retrieves a spa by ID
func (r *SpaRepository) GetByID(id uuid.UUID) (*models.Spa, error) {
	spa := &models.Spa{}
	err := r.db.Get(spa, `SELECT `+spaColumns+` FROM spas WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get spa: %w", err)
	}
	return spa, nil
}

// GetByReference retrieves a spa by its reference number
func (r *SpaRepository) GetByReference(reference string) (*models.Spa, error) {
	spa := &models.Spa{}
	err := r.db.Get(spa, `SELECT `+spaColumns+` FROM spas WHERE reference_number = $1`, reference)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get spa: %w", err)
	}
	return spa, nil
}

// SpaFilter enumerates the recognized filter fields for listing spas
type SpaFilter struct {
	Status   string
	Province string
	Overdue  bool
	Limit    int
}

// List returns spas newest first, filtered by the given fields
func (r *SpaRepository) List(filter SpaFilter) ([]*models.Spa, error) {
	query := `SELECT ` + spaColumns + ` FROM spas WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Province != "" {
		query += fmt.Sprintf(" AND province = $%d", argIdx)
		args = append(args, filter.Province)
		argIdx++
	}
	if filter.Overdue {
		query += " AND next_payment_date < NOW() AND payment_status != 'paid'"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := r.db.Queryx(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list spas: %w", err)
	}
	defer rows.Close()

	spas := []*models.Spa{}
	for rows.Next() {
		spa := &models.Spa{}
		if err := rows.StructScan(spa); err != nil {
			return nil, err
		}
		spas = append(spas, spa)
	}

	return spas, nil
}

// Verify transitions a pending spa to verified, recording the verifier,
// and writes the audit entry plus the spa-facing notification in the same
// transaction. A spa that is not pending yields ErrNotEligible.
func (r *SpaRepository) Verify(spaID, adminID uuid.UUID, entry *models.ActivityLog, notification *models.Notification) (*models.Spa, error) {
	return r.resolveVerification(spaID, `
		UPDATE spas
		SET status = 'verified', verified_at = NOW(), verified_by = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+spaColumns,
		[]interface{}{spaID, adminID}, entry, notification)
}

// Reject transitions a pending spa to rejected with a recorded reason,
// with the same transactional shape as Verify.
func (r *SpaRepository) Reject(spaID, adminID uuid.UUID, reason string, entry *models.ActivityLog, notification *models.Notification) (*models.Spa, error) {
	return r.resolveVerification(spaID, `
		UPDATE spas
		SET status = 'rejected', rejection_reason = $3, verified_by = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+spaColumns,
		[]interface{}{spaID, adminID, reason}, entry, notification)
}

func (r *SpaRepository) resolveVerification(
	spaID uuid.UUID,
	query string,
	args []interface{},
	entry *models.ActivityLog,
	notification *models.Notification,
) (*models.Spa, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	spa := &models.Spa{}
	err = tx.QueryRowx(query, args...).StructScan(spa)
	if err != nil {
		if err == sql.ErrNoRows {
			// Distinguish a missing spa from one already resolved
			var exists bool
			if checkErr := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM spas WHERE id = $1)`, spaID); checkErr == nil && exists {
				return nil, ErrNotEligible
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update spa status: %w", err)
	}

	entry.EntityID = spa.ID
	if err := insertActivityLogTx(tx, entry); err != nil {
		return nil, err
	}

	notification.RecipientType = models.RecipientSpa
	notification.RecipientID = &spa.ID
	if err := insertNotificationTx(tx, notification); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit verification: %w", err)
	}

	return spa, nil
}

// CountByStatus returns spa counts per status for the admin dashboard
func (r *SpaRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Queryx(`SELECT status, COUNT(*) AS count FROM spas GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count spas: %w", err)
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

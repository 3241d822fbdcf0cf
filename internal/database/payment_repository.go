package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
)

// PaymentRepository handles database operations for payments table
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, spa_id, reference_number, type, method, amount, status,
	slip_path, approved_by, approved_at, paid_at, created_at`

const insertPaymentQuery = `
	INSERT INTO payments (
		spa_id, reference_number, type, method, amount, status, slip_path, paid_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at`

// GenerateReference generates a unique payment reference
// Format: PAY-YYYYMMDD-XXXXXX (6 char hex)
// Example: PAY-20260901-A1B2C3
func (r *PaymentRepository) GenerateReference() (string, error) {
	todayStr := time.Now().Format("20060102")

	for attempts := 0; attempts < 10; attempts++ {
		randomBytes := make([]byte, 3)
		if _, err := rand.Read(randomBytes); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		randomStr := strings.ToUpper(hex.EncodeToString(randomBytes))

		newRef := fmt.Sprintf("PAY-%s-%s", todayStr, randomStr)

		var count int
		err := r.db.Get(&count, `SELECT COUNT(*) FROM payments WHERE reference_number = $1`, newRef)
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}

		if count == 0 {
			return newRef, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique payment reference after 10 attempts")
}

// insertPaymentTx inserts a payment inside a workflow transaction
func insertPaymentTx(tx *sqlx.Tx, p *models.Payment) error {
	err := tx.QueryRowx(insertPaymentQuery,
		p.SpaID, p.ReferenceNumber, p.Type, p.Method, p.Amount, p.Status, p.SlipPath, p.PaidAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// RecordCardPayment settles a card payment synchronously: the completed
// payment row, the spa's cleared payment state with the extended next
// payment date, the audit entry, and the spa notification commit together.
func (r *PaymentRepository) RecordCardPayment(
	payment *models.Payment,
	nextPaymentDate time.Time,
	entry *models.ActivityLog,
	notification *models.Notification,
) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	payment.Status = models.PaymentStatusCompleted
	payment.PaidAt = sql.NullTime{Time: time.Now(), Valid: true}
	if err := insertPaymentTx(tx, payment); err != nil {
		return err
	}

	if err := updateSpaPaymentStateTx(tx, payment.SpaID, nextPaymentDate); err != nil {
		return err
	}

	entry.EntityID = payment.ID
	if err := insertActivityLogTx(tx, entry); err != nil {
		return err
	}

	if err := insertNotificationTx(tx, notification); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit card payment: %w", err)
	}

	return nil
}

// RecordBankTransfer creates a pending bank-transfer payment with its slip
// pointer. The spa's payment state is untouched until an admin approves.
func (r *PaymentRepository) RecordBankTransfer(
	payment *models.Payment,
	entry *models.ActivityLog,
	notification *models.Notification,
) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	payment.Status = models.PaymentStatusPending
	if err := insertPaymentTx(tx, payment); err != nil {
		return err
	}

	entry.EntityID = payment.ID
	if err := insertActivityLogTx(tx, entry); err != nil {
		return err
	}

	if err := insertNotificationTx(tx, notification); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bank transfer: %w", err)
	}

	return nil
}

// ApproveBankTransfer completes a pending bank-transfer payment and applies
// the spa payment-state update it was holding back. The update is
// conditioned on the payment still being pending; zero rows yields
// ErrNotEligible so a double approval never extends the payment date twice.
func (r *PaymentRepository) ApproveBankTransfer(
	paymentID, adminID uuid.UUID,
	entry *models.ActivityLog,
	notification *models.Notification,
) (*models.Payment, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	payment := &models.Payment{}
	err = tx.QueryRowx(`
		UPDATE payments
		SET status = 'completed', approved_by = $2, approved_at = NOW(), paid_at = NOW()
		WHERE id = $1 AND status = 'pending' AND method = 'bank_transfer'
		RETURNING `+paymentColumns,
		paymentID, adminID,
	).StructScan(payment)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists bool
			if checkErr := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM payments WHERE id = $1)`, paymentID); checkErr == nil && exists {
				return nil, ErrNotEligible
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to approve payment: %w", err)
	}

	duration, ok := models.PlanDuration(payment.Type)
	if !ok {
		return nil, fmt.Errorf("unknown payment type: %s", payment.Type)
	}
	if err := updateSpaPaymentStateTx(tx, payment.SpaID, time.Now().Add(duration)); err != nil {
		return nil, err
	}

	entry.EntityID = payment.ID
	if err := insertActivityLogTx(tx, entry); err != nil {
		return nil, err
	}

	notification.RecipientType = models.RecipientSpa
	notification.RecipientID = &payment.SpaID
	if err := insertNotificationTx(tx, notification); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment approval: %w", err)
	}

	return payment, nil
}

// updateSpaPaymentStateTx marks the spa paid and extends its payment date
func updateSpaPaymentStateTx(tx *sqlx.Tx, spaID uuid.UUID, nextPaymentDate time.Time) error {
	result, err := tx.Exec(`
		UPDATE spas
		SET payment_status = 'paid', next_payment_date = $2, updated_at = NOW()
		WHERE id = $1`,
		spaID, nextPaymentDate)
	if err != nil {
		return fmt.Errorf("failed to update spa payment state: %w", err)
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

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(id uuid.UUID) (*models.Payment, error) {
	payment := &models.Payment{}
	err := r.db.Get(payment, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// PaymentFilter enumerates the recognized filter fields for listing
type PaymentFilter struct {
	SpaID  *uuid.UUID
	Status string
	Method string
	Limit  int
}

// List returns payments newest first, filtered by the given fields
func (r *PaymentRepository) List(filter PaymentFilter) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`

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
	if filter.Method != "" {
		query += fmt.Sprintf(" AND method = $%d", argIdx)
		args = append(args, filter.Method)
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
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.StructScan(p); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, nil
}

// CountPending returns the number of bank transfers awaiting approval
func (r *PaymentRepository) CountPending() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM payments WHERE status = 'pending'`); err != nil {
		return 0, fmt.Errorf("failed to count pending payments: %w", err)
	}
	return count, nil
}

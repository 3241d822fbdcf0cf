package database

import (
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentRowColumns = []string{
	"id", "spa_id", "reference_number", "type", "method", "amount", "status",
	"slip_path", "approved_by", "approved_at", "paid_at", "created_at",
}

func paymentEntry(action string) *models.ActivityLog {
	return &models.ActivityLog{
		EntityType: models.EntityPayment,
		Action:     action,
		Details:    []byte(`{}`),
	}
}

func TestGenerateReference(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ref, err := repo.GenerateReference()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "PAY-"))
	assert.Len(t, ref, len("PAY-20060102-")+6)
}

func TestGenerateReferenceRetriesOnCollision(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ref, err := repo.GenerateReference()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "PAY-"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCardPayment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	spaID := uuid.New()
	now := time.Now()
	nextPaymentDate := now.Add(30 * 24 * time.Hour)

	payment := &models.Payment{
		SpaID:           spaID,
		ReferenceNumber: "PAY-20260901-A1B2C3",
		Type:            models.PaymentTypeMonthly,
		Method:          models.PaymentMethodCard,
		Amount:          1000,
	}
	notification := &models.Notification{
		RecipientType: models.RecipientSpa,
		RecipientID:   &spaID,
		Title:         "Payment received",
		Message:       "msg",
		Severity:      models.SeverityInfo,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
	mock.ExpectExec(`UPDATE spas`).
		WithArgs(spaID, nextPaymentDate).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO activity_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "created_at"}).AddRow(uuid.New(), false, now))
	mock.ExpectCommit()

	err := repo.RecordCardPayment(payment, nextPaymentDate, paymentEntry(models.ActionPaymentRecorded), notification)
	require.NoError(t, err)

	// Card payments settle synchronously
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.True(t, payment.PaidAt.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordBankTransfer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	spaID := uuid.New()
	now := time.Now()

	payment := &models.Payment{
		SpaID:           spaID,
		ReferenceNumber: "PAY-20260901-D4E5F6",
		Type:            models.PaymentTypeQuarterly,
		Method:          models.PaymentMethodBankTransfer,
		Amount:          2700,
	}
	notification := &models.Notification{
		RecipientType: models.RecipientAssociation,
		Title:         "Bank transfer pending approval",
		Message:       "msg",
		Severity:      models.SeverityInfo,
	}

	// No spa update: the payment state is held back until approval
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
	mock.ExpectQuery(`INSERT INTO activity_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "created_at"}).AddRow(uuid.New(), false, now))
	mock.ExpectCommit()

	err := repo.RecordBankTransfer(payment, paymentEntry(models.ActionPaymentRecorded), notification)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.False(t, payment.PaidAt.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveBankTransfer(t *testing.T) {
	paymentID := uuid.New()
	spaID := uuid.New()
	adminID := uuid.New()
	now := time.Now()

	t.Run("Success Extends Payment Date", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE payments`).
			WithArgs(paymentID, adminID).
			WillReturnRows(sqlmock.NewRows(paymentRowColumns).AddRow(
				paymentID, spaID, "PAY-20260901-D4E5F6", models.PaymentTypeQuarterly,
				models.PaymentMethodBankTransfer, 2700.0, models.PaymentStatusCompleted,
				"/uploads/slips/s.pdf", adminID, now, now, now,
			))
		mock.ExpectExec(`UPDATE spas`).
			WithArgs(spaID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO activity_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
		mock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "created_at"}).AddRow(uuid.New(), false, now))
		mock.ExpectCommit()

		notification := &models.Notification{Title: "Payment approved", Message: "msg", Severity: models.SeverityInfo}
		payment, err := repo.ApproveBankTransfer(paymentID, adminID, paymentEntry(models.ActionPaymentApproved), notification)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
		assert.Equal(t, models.RecipientSpa, notification.RecipientType)
		require.NotNil(t, notification.RecipientID)
		assert.Equal(t, spaID, *notification.RecipientID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second Approval Is Not Eligible", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE payments`).
			WithArgs(paymentID, adminID).
			WillReturnRows(sqlmock.NewRows(paymentRowColumns))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(paymentID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := repo.ApproveBankTransfer(paymentID, adminID, paymentEntry(models.ActionPaymentApproved), &models.Notification{})
		assert.ErrorIs(t, err, ErrNotEligible)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Payment Is Not Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE payments`).
			WithArgs(paymentID, adminID).
			WillReturnRows(sqlmock.NewRows(paymentRowColumns))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(paymentID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		_, err := repo.ApproveBankTransfer(paymentID, adminID, paymentEntry(models.ActionPaymentApproved), &models.Notification{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

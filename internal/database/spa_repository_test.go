package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var spaRowColumns = []string{
	"id", "reference_number", "owner_name", "owner_nic", "email", "phone",
	"spa_name", "address_line1", "address_line2", "province", "postal_code",
	"nic_front_path", "nic_back_path", "br_document_path", "form1_cert_path",
	"banner_photo_path", "facility_photos", "status", "rejection_reason",
	"verified_at", "verified_by", "payment_status", "next_payment_date",
	"created_at", "updated_at",
}

func spaRow(id uuid.UUID, reference, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(spaRowColumns).AddRow(
		id, reference, "Nimal Perera", "853421234V", "owner@serenity.lk", "0771234567",
		"Serenity Spa", "12 Galle Road", "", "Western", "00300",
		"/uploads/nic/a.jpg", "/uploads/nic/b.jpg", "/uploads/br/c.pdf", "/uploads/form1/d.jpg",
		"/uploads/banner/e.jpg", []byte("{}"), status, nil,
		nil, nil, "pending", now.AddDate(1, 0, 0),
		now, now,
	)
}

func testRegistrationBundle() (*models.Spa, *models.Payment, *models.AdminUser, *models.ActivityLog, *models.Notification) {
	spa := &models.Spa{
		OwnerName:       "Nimal Perera",
		OwnerNIC:        "853421234V",
		Email:           "owner@serenity.lk",
		Phone:           "0771234567",
		SpaName:         "Serenity Spa",
		AddressLine1:    "12 Galle Road",
		Province:        "Western",
		PostalCode:      "00300",
		NICFrontPath:    "/uploads/nic/a.jpg",
		NICBackPath:     "/uploads/nic/b.jpg",
		BRDocumentPath:  "/uploads/br/c.pdf",
		Form1CertPath:   "/uploads/form1/d.jpg",
		BannerPhotoPath: "/uploads/banner/e.jpg",
		FacilityPhotos:  models.StringArray{"/uploads/facility/f1.jpg"},
		Status:          models.SpaStatusPending,
		PaymentStatus:   models.SpaPaymentPending,
		NextPaymentDate: time.Now().AddDate(1, 0, 0),
	}
	payment := &models.Payment{
		ReferenceNumber: "PAY-20260901-A1B2C3",
		Type:            models.PaymentTypeRegistration,
		Method:          models.PaymentMethodCard,
		Amount:          5000,
		Status:          models.PaymentStatusCompleted,
	}
	account := &models.AdminUser{
		Username:     "owner@serenity.lk",
		PasswordHash: "$2a$10$hash",
		Role:         models.RoleAdminSpa,
		FullName:     "Nimal Perera",
		Email:        "owner@serenity.lk",
		IsActive:     true,
	}
	entry := &models.ActivityLog{
		EntityType: models.EntitySpa,
		Action:     models.ActionSpaRegistered,
		Details:    []byte(`{}`),
	}
	notification := &models.Notification{
		RecipientType: models.RecipientAssociation,
		Title:         "New spa registration",
		Message:       "Serenity Spa registered",
		Severity:      models.SeverityInfo,
	}
	return spa, payment, account, entry, notification
}

func TestRegister(t *testing.T) {
	t.Run("Success Allocates Next Reference", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSpaRepository(db)
		spa, payment, account, entry, notification := testRegistrationBundle()

		spaID := uuid.New()
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))
		mock.ExpectQuery(`INSERT INTO spas`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(spaID, now, now))
		mock.ExpectQuery(`INSERT INTO payments`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
		mock.ExpectQuery(`INSERT INTO admin_users`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.New(), now, now))
		mock.ExpectQuery(`INSERT INTO activity_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
		mock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "created_at"}).AddRow(uuid.New(), false, now))
		mock.ExpectCommit()

		err := repo.Register(spa, payment, account, entry, notification)
		require.NoError(t, err)

		assert.Equal(t, "LSA0042", spa.ReferenceNumber)
		assert.Equal(t, spaID, spa.ID)
		assert.Equal(t, spaID, payment.SpaID)
		require.NotNil(t, account.SpaID)
		assert.Equal(t, spaID, *account.SpaID)
		assert.Equal(t, spaID, entry.EntityID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("First Registration Starts At One", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSpaRepository(db)
		spa, payment, account, entry, notification := testRegistrationBundle()

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO spas`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.New(), now, now))
		mock.ExpectQuery(`INSERT INTO payments`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
		mock.ExpectQuery(`INSERT INTO admin_users`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.New(), now, now))
		mock.ExpectQuery(`INSERT INTO activity_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
		mock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "created_at"}).AddRow(uuid.New(), false, now))
		mock.ExpectCommit()

		err := repo.Register(spa, payment, account, entry, notification)
		require.NoError(t, err)
		assert.Equal(t, "LSA0001", spa.ReferenceNumber)
	})

	t.Run("Rolls Back When Account Insert Fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSpaRepository(db)
		spa, payment, account, entry, notification := testRegistrationBundle()

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO spas`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.New(), now, now))
		mock.ExpectQuery(`INSERT INTO payments`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
		mock.ExpectQuery(`INSERT INTO admin_users`).
			WillReturnError(fmt.Errorf(`pq: duplicate key value violates unique constraint "admin_users_username_key"`))
		mock.ExpectRollback()

		err := repo.Register(spa, payment, account, entry, notification)
		assert.ErrorIs(t, err, ErrDuplicateUsername)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVerify(t *testing.T) {
	spaID := uuid.New()
	adminID := uuid.New()

	newEntry := func() *models.ActivityLog {
		return &models.ActivityLog{
			EntityType: models.EntitySpa,
			Action:     models.ActionSpaVerified,
			Details:    []byte(`{}`),
		}
	}
	newNotification := func() *models.Notification {
		return &models.Notification{Title: "Registration verified", Message: "ok", Severity: models.SeverityInfo}
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSpaRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE spas`).
			WithArgs(spaID, adminID).
			WillReturnRows(spaRow(spaID, "LSA0001", models.SpaStatusVerified))
		mock.ExpectQuery(`INSERT INTO activity_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
		mock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "created_at"}).AddRow(uuid.New(), false, now))
		mock.ExpectCommit()

		notification := newNotification()
		spa, err := repo.Verify(spaID, adminID, newEntry(), notification)
		require.NoError(t, err)
		assert.Equal(t, models.SpaStatusVerified, spa.Status)

		// Notification is addressed to the spa inside the transaction
		assert.Equal(t, models.RecipientSpa, notification.RecipientType)
		require.NotNil(t, notification.RecipientID)
		assert.Equal(t, spaID, *notification.RecipientID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Resolved", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSpaRepository(db)

		// Conditioned update matches zero rows, the spa exists
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE spas`).
			WithArgs(spaID, adminID).
			WillReturnRows(sqlmock.NewRows(spaRowColumns))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(spaID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := repo.Verify(spaID, adminID, newEntry(), newNotification())
		assert.ErrorIs(t, err, ErrNotEligible)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSpaRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE spas`).
			WithArgs(spaID, adminID).
			WillReturnRows(sqlmock.NewRows(spaRowColumns))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(spaID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		_, err := repo.Verify(spaID, adminID, newEntry(), newNotification())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReject(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSpaRepository(db)

	spaID := uuid.New()
	adminID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE spas`).
		WithArgs(spaID, adminID, "incomplete documents").
		WillReturnRows(spaRow(spaID, "LSA0001", models.SpaStatusRejected))
	mock.ExpectQuery(`INSERT INTO activity_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), now))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "created_at"}).AddRow(uuid.New(), false, now))
	mock.ExpectCommit()

	entry := &models.ActivityLog{EntityType: models.EntitySpa, Action: models.ActionSpaRejected, Details: []byte(`{}`)}
	notification := &models.Notification{Title: "Registration rejected", Message: "no", Severity: models.SeverityWarning}

	spa, err := repo.Reject(spaID, adminID, "incomplete documents", entry, notification)
	require.NoError(t, err)
	assert.Equal(t, models.SpaStatusRejected, spa.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lankaspa/lsa-admin-backend/internal/config"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/pkg/upload"
	"github.com/lankaspa/lsa-admin-backend/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubMailer struct{}

func (stubMailer) Send(to []string, subject, body string) error { return nil }

// formFileHeader builds a real multipart.FileHeader by round-tripping a
// form through the http multipart parser.
func formFileHeader(t *testing.T, filename string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("file-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func newRegistrationService(t *testing.T) (*RegistrationService, sqlmock.Sqlmock, string) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	baseDir := t.TempDir()
	cfg := &config.Config{
		Upload: config.UploadConfig{
			BaseDir:          baseDir,
			MaxImageSizeMB:   5,
			MaxDocSizeMB:     10,
			MinFacilityPhoto: 5,
			MaxFacilityPhoto: 10,
		},
		Email:    config.EmailConfig{AdminInbox: "admin@lankaspa.lk"},
		Payment:  config.PaymentConfig{RegistrationFee: 25000},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	service := NewRegistrationService(
		database.NewSpaRepository(sqlxDB),
		database.NewPaymentRepository(sqlxDB),
		validator.NewIdentityValidator(),
		upload.NewSaver(baseDir, cfg.Upload.MaxImageSizeMB, cfg.Upload.MaxDocSizeMB),
		stubMailer{},
		cfg,
		quietLogger(),
	)
	return service, mock, baseDir
}

func validRegistrationInput(t *testing.T) *RegistrationInput {
	t.Helper()

	photos := make([]*multipart.FileHeader, 0, 5)
	for i := 0; i < 5; i++ {
		photos = append(photos, formFileHeader(t, fmt.Sprintf("facility%d.jpg", i)))
	}
	return &RegistrationInput{
		OwnerName:      "Nimal Perera",
		OwnerNIC:       "853421234V",
		Email:          "owner@serenity.lk",
		Phone:          "0771234567",
		SpaName:        "Serenity Spa",
		AddressLine1:   "12 Galle Road",
		Province:       "Western",
		PostalCode:     "00300",
		PaymentMethod:  models.PaymentMethodCard,
		NICFront:       formFileHeader(t, "front.jpg"),
		NICBack:        formFileHeader(t, "back.jpg"),
		BRDocument:     formFileHeader(t, "br.pdf"),
		Form1Cert:      formFileHeader(t, "form1.jpg"),
		BannerPhoto:    formFileHeader(t, "banner.jpg"),
		FacilityPhotos: photos,
	}
}

// countStoredFiles walks the saver's base dir so tests can assert nothing
// was left behind.
func countStoredFiles(t *testing.T, baseDir string) int {
	t.Helper()

	count := 0
	err := filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestRegisterRejectsBeforeAnyWrite(t *testing.T) {
	actor := Actor{Role: "public", IPAddress: "203.0.113.7", UserAgent: "test"}

	t.Run("Missing Required Document", func(t *testing.T) {
		service, mock, baseDir := newRegistrationService(t)

		input := validRegistrationInput(t)
		input.NICBack = nil

		result, err := service.Register(input, actor)
		assert.Nil(t, result)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "nic_back", vErr.Field)

		assert.Zero(t, countStoredFiles(t, baseDir))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Banner", func(t *testing.T) {
		service, _, baseDir := newRegistrationService(t)

		input := validRegistrationInput(t)
		input.BannerPhoto = nil

		result, err := service.Register(input, actor)
		assert.Nil(t, result)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "spa_banner", vErr.Field)

		assert.Zero(t, countStoredFiles(t, baseDir))
	})

	t.Run("Too Few Facility Photos", func(t *testing.T) {
		service, mock, baseDir := newRegistrationService(t)

		input := validRegistrationInput(t)
		input.FacilityPhotos = input.FacilityPhotos[:4]

		result, err := service.Register(input, actor)
		assert.Nil(t, result)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "facility_photos", vErr.Field)

		assert.Zero(t, countStoredFiles(t, baseDir))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid Payment Method", func(t *testing.T) {
		service, _, baseDir := newRegistrationService(t)

		input := validRegistrationInput(t)
		input.PaymentMethod = "cheque"

		result, err := service.Register(input, actor)
		assert.Nil(t, result)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "payment_method", vErr.Field)

		assert.Zero(t, countStoredFiles(t, baseDir))
	})
}

func TestRegisterCleansUpFilesOnFailure(t *testing.T) {
	service, mock, baseDir := newRegistrationService(t)
	actor := Actor{Role: "public", IPAddress: "203.0.113.7", UserAgent: "test"}

	// The last facility photo is rejected by the saver after the documents
	// and earlier photos were already written.
	input := validRegistrationInput(t)
	input.FacilityPhotos[4] = formFileHeader(t, "floorplan.exe")

	result, err := service.Register(input, actor)
	assert.Nil(t, result)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "facility_photos", vErr.Field)

	assert.Zero(t, countStoredFiles(t, baseDir), "saved files must be removed when the registration fails")
	assert.NoError(t, mock.ExpectationsWereMet())
}

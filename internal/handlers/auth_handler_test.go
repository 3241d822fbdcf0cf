package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lankaspa/lsa-admin-backend/internal/database"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
	"github.com/lankaspa/lsa-admin-backend/internal/services"
	"github.com/lankaspa/lsa-admin-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthTest(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	userRepo := database.NewAdminUserRepository(sqlx.NewDb(db, "sqlmock"))
	jwtService := jwt.NewService("test-secret-key-123456789", time.Hour)
	authService := services.NewAuthService(userRepo, jwtService, time.Hour, bcrypt.MinCost, logger)
	handler := NewAuthHandler(authService)

	router := gin.New()
	router.POST("/api/v1/auth/login", handler.Login)
	return router, mock
}

func TestLoginEndpoint(t *testing.T) {
	accountColumns := []string{
		"id", "username", "password_hash", "role", "full_name", "email", "spa_id",
		"is_active", "expires_at", "last_login_at", "created_by", "created_at", "updated_at",
	}

	t.Run("Success", func(t *testing.T) {
		router, mock := setupAuthTest(t)

		userID := uuid.New()
		hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
		require.NoError(t, err)
		now := time.Now()

		mock.ExpectQuery(`SELECT`).
			WithArgs("admin").
			WillReturnRows(sqlmock.NewRows(accountColumns).AddRow(
				userID, "admin", string(hash), models.RoleAdminLSA, "LSA Admin", "admin@lsa.lk", nil,
				true, nil, nil, nil, now, now,
			))
		mock.ExpectExec(`UPDATE admin_users`).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		body, _ := json.Marshal(LoginRequest{Username: "admin", Password: "correct-password"})
		req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.AccessToken)
		assert.Equal(t, "admin", response.User.Username)

		// The password hash must never appear in the response
		assert.NotContains(t, w.Body.String(), "password_hash")
		assert.NotContains(t, w.Body.String(), string(hash))
	})

	t.Run("Invalid Credentials", func(t *testing.T) {
		router, mock := setupAuthTest(t)

		mock.ExpectQuery(`SELECT`).
			WithArgs("admin").
			WillReturnRows(sqlmock.NewRows(accountColumns))

		body, _ := json.Marshal(LoginRequest{Username: "admin", Password: "wrong"})
		req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_credentials")
	})

	t.Run("Missing Fields", func(t *testing.T) {
		router, _ := setupAuthTest(t)

		req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader([]byte(`{"username":"admin"}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "validation_error")
	})
}

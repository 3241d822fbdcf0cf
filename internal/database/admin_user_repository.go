package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lankaspa/lsa-admin-backend/internal/models"
)

// AdminUserRepository handles database operations for admin_users table
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository creates a new AdminUserRepository
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

const adminUserColumns = `
	id, username, password_hash, role, full_name, email, spa_id,
	is_active, expires_at, last_login_at, created_by, created_at, updated_at`

const insertAdminUserQuery = `
	INSERT INTO admin_users (
		username, password_hash, role, full_name, email, spa_id,
		is_active, expires_at, created_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, created_at, updated_at`

// Create inserts a new account
func (r *AdminUserRepository) Create(user *models.AdminUser) error {
	err := r.db.QueryRowx(insertAdminUserQuery,
		user.Username, user.PasswordHash, user.Role, user.FullName, user.Email,
		user.SpaID, user.IsActive, user.ExpiresAt, user.CreatedBy,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// insertAdminUserTx inserts an account inside a workflow transaction
func insertAdminUserTx(tx *sqlx.Tx, user *models.AdminUser) error {
	err := tx.QueryRowx(insertAdminUserQuery,
		user.Username, user.PasswordHash, user.Role, user.FullName, user.Email,
		user.SpaID, user.IsActive, user.ExpiresAt, user.CreatedBy,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByUsername retrieves an account by username
func (r *AdminUserRepository) GetByUsername(username string) (*models.AdminUser, error) {
	user := &models.AdminUser{}
	err := r.db.Get(user, `SELECT `+adminUserColumns+` FROM admin_users WHERE username = $1`, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return user, nil
}

// GetByID retrieves an account by ID
func (r *AdminUserRepository) GetByID(id uuid.UUID) (*models.AdminUser, error) {
	user := &models.AdminUser{}
	err := r.db.Get(user, `SELECT `+adminUserColumns+` FROM admin_users WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash
func (r *AdminUserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	result, err := r.db.Exec(`
		UPDATE admin_users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
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

// UpdateLastLogin records a successful login time
func (r *AdminUserRepository) UpdateLastLogin(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE admin_users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// List retrieves all accounts, newest first
func (r *AdminUserRepository) List() ([]*models.AdminUser, error) {
	rows, err := r.db.Queryx(`SELECT ` + adminUserColumns + ` FROM admin_users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	users := []*models.AdminUser{}
	for rows.Next() {
		user := &models.AdminUser{}
		if err := rows.StructScan(user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

// IsOfficerActive reports whether a government officer account is usable at
// the given instant. Expiry is checked against the row, not the token, so a
// structurally valid token stops working the moment the account lapses.
func (r *AdminUserRepository) IsOfficerActive(id uuid.UUID, now time.Time) (bool, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return false, err
	}

	if user.Role != models.RoleGovernmentOfficer {
		return false, nil
	}
	if !user.IsActive {
		return false, nil
	}
	return !user.IsExpired(now), nil
}

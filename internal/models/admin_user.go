package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// AdminUser represents a login account. Spa owner accounts carry their
// spa_id; government officer accounts are time-bounded via expires_at.
type AdminUser struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	Username     string       `db:"username" json:"username"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Role         string       `db:"role" json:"role"` // admin_lsa, admin_spa, government_officer
	FullName     string       `db:"full_name" json:"full_name"`
	Email        string       `db:"email" json:"email"`
	SpaID        *uuid.UUID   `db:"spa_id" json:"spa_id,omitempty"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	ExpiresAt    sql.NullTime `db:"expires_at" json:"expires_at,omitempty"`
	LastLoginAt  sql.NullTime `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedBy    *uuid.UUID   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Role constants
const (
	RoleAdminLSA          = "admin_lsa"
	RoleAdminSpa          = "admin_spa"
	RoleGovernmentOfficer = "government_officer"
)

// IsExpired reports whether a time-bounded account has passed its expiry.
// Accounts without an expiry never expire.
func (u *AdminUser) IsExpired(now time.Time) bool {
	return u.ExpiresAt.Valid && u.ExpiresAt.Time.Before(now)
}

// LoginResponse is returned by the login endpoint
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresIn   int64      `json:"expires_in"`
	User        *AdminUser `json:"user"`
}

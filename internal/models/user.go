package models

import (
	"strings"
	"time"
)

// NormalizeEmail folds an email to its canonical lowercase form. Every read
// and write of the users table goes through this so registration and login
// agree on identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserRole represents the closed set of roles a campus account can hold.
type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleStaff     UserRole = "staff"
	RoleAuthority UserRole = "authority"
)

// Valid reports whether the role belongs to the closed set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAuthority:
		return true
	}
	return false
}

// UserStatus represents the account lifecycle state.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusDisabled UserStatus = "disabled"
)

// User represents an account stored in the users table. Email is the identity
// key and is persisted lowercase; ID is an opaque identifier generated at
// first persistence and never reassigned.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

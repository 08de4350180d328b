package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account role carried in session tokens.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"
)

// Account is the login identity. Everything except SuspendedUntil is owned
// by the account collaborator.
type Account struct {
	ID             uuid.UUID
	Email          string
	Role           Role
	EmailVerified  bool
	SuspendedUntil *time.Time
	// AuthenticatorSecret is a base32 TOTP secret, set when the account has
	// enrolled an authenticator app.
	AuthenticatorSecret *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsSuspended reports whether the account is suspended at now. A suspension
// whose deadline has passed is treated as if it were never set.
func (a *Account) IsSuspended(now time.Time) (bool, *time.Time) {
	if a.SuspendedUntil == nil {
		return false, nil
	}
	if !now.Before(*a.SuspendedUntil) {
		return false, nil
	}
	until := *a.SuspendedUntil
	return true, &until
}

// HasAuthenticator returns true if an authenticator app is enrolled.
func (a *Account) HasAuthenticator() bool {
	return a.AuthenticatorSecret != nil && *a.AuthenticatorSecret != ""
}

// AccountPassword stores password credentials separately from the account.
type AccountPassword struct {
	AccountID         uuid.UUID
	PasswordHash      string
	PasswordUpdatedAt time.Time
}

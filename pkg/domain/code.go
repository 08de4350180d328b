package domain

import (
	"time"

	"github.com/google/uuid"
)

// CodePurpose separates the one-time code namespaces.
type CodePurpose string

const (
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposeLoginOTP          CodePurpose = "login_otp"
)

// Valid reports whether p is a known purpose.
func (p CodePurpose) Valid() bool {
	return p == PurposeEmailVerification || p == PurposeLoginOTP
}

// OneTimeCode is a short numeric code bound to an account and a purpose.
type OneTimeCode struct {
	UserID    uuid.UUID
	Purpose   CodePurpose
	Code      string
	IssuedAt  time.Time
	ExpiresAt *time.Time
}

// IsExpired reports whether the code has expired at now. Codes without an
// expiry never expire.
func (c *OneTimeCode) IsExpired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(*c.ExpiresAt)
}

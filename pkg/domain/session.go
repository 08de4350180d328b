package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken is the signed session token handed out after a successful login.
type AccessToken struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int       `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OTPAssertion is the short-lived proof that an account completed login OTP
// verification. It is redeemed once by the login endpoint.
type OTPAssertion struct {
	Token     string
	ID        string
	AccountID uuid.UUID
	Email     string
	ExpiresAt time.Time
}

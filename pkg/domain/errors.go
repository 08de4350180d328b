package domain

import "errors"

// Authentication errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrInvalidToken       = errors.New("invalid token")
)

// Second factor errors
var (
	ErrOTPRequired          = errors.New("one-time code verification required")
	ErrInvalidCode          = errors.New("invalid or expired code")
	ErrCodeNotFound         = errors.New("code not found")
	ErrCodeCollision        = errors.New("code already issued to another account")
	ErrCodeRequestThrottled = errors.New("code requested too recently")
	ErrAssertionInvalid     = errors.New("invalid otp assertion")
	ErrAssertionUsed        = errors.New("otp assertion already used")
)

// Validation errors
var (
	ErrMissingContext  = errors.New("missing login context")
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidEmail    = errors.New("invalid email address")
)

// Storage errors
var (
	ErrStorage         = errors.New("storage failure")
	ErrVersionConflict = errors.New("concurrent context update")
)

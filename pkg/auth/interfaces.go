package auth

//go:generate mockgen -source=interfaces.go -destination=../../internal/mock/auth_mock.go -package=mock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/contextauth/pkg/domain"
)

// AccountStore is the account collaborator. SetSuspendedUntil is the only
// write this subsystem performs on accounts besides MarkEmailVerified.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	SetSuspendedUntil(ctx context.Context, id uuid.UUID, until *time.Time) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

// CredentialVerifier checks a password for an account.
type CredentialVerifier interface {
	Check(ctx context.Context, accountID uuid.UUID, password string) (bool, error)
}

// ContextStore persists user contexts. RecordSuccessfulLogin must be atomic
// per user.
type ContextStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*domain.UserContext, error)
	Save(ctx context.Context, uc *domain.UserContext) error
	RecordSuccessfulLogin(ctx context.Context, userID uuid.UUID, attempt domain.LoginAttempt, at time.Time) (*domain.LearnedLogin, error)
	RecordFailedLogin(ctx context.Context, userID uuid.UUID, attempt domain.LoginAttempt, at time.Time) error
	ListLoginHistory(ctx context.Context, userID uuid.UUID, cursor domain.HistoryCursor, limit int) ([]domain.LoginEvent, error)
}

// CodeStore keeps one-time codes keyed by (user, purpose).
type CodeStore interface {
	// Put stores code, replacing any unconsumed code for the same key. It
	// returns domain.ErrCodeCollision if another user holds the same code
	// for the purpose.
	Put(ctx context.Context, code *domain.OneTimeCode) error
	// Consume deletes the stored code and returns true iff it equals code and
	// has not expired at now. Otherwise nothing is changed.
	Consume(ctx context.Context, userID uuid.UUID, purpose domain.CodePurpose, code string, now time.Time) (bool, error)
	// LookupByCode returns the owner of an unconsumed code.
	LookupByCode(ctx context.Context, purpose domain.CodePurpose, code string) (uuid.UUID, error)
	// Throttle returns false if key was marked within window, and marks it
	// otherwise.
	Throttle(ctx context.Context, key string, window time.Duration) (bool, error)
}

// AssertionStore remembers spent second factor proofs until they expire:
// redeemed OTP assertion ids and accepted authenticator time steps.
type AssertionStore interface {
	// MarkUsed returns false if id was already marked.
	MarkUsed(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// MarkTOTPStepUsed returns false if step was already accepted for userID.
	MarkTOTPStepUsed(ctx context.Context, userID uuid.UUID, step int64, ttl time.Duration) (bool, error)
}

// NotificationSender delivers messages to an address.
type NotificationSender interface {
	Send(ctx context.Context, address string, kind NotificationKind, payload map[string]string) error
}

// NotificationKind names the message template.
type NotificationKind string

const (
	NotifyLoginOTP          NotificationKind = "login-otp"
	NotifyEmailVerification NotificationKind = "email-verification"
	NotifyLoginAlert        NotificationKind = "login-alert"
	NotifySuspensionAlert   NotificationKind = "suspension-alert"
)

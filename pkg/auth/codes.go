package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/contextauth/pkg/domain"
)

const (
	codeMin = 100000
	codeMax = 999999

	// DefaultLoginOTPTTL is how long a login code stays valid.
	DefaultLoginOTPTTL = 10 * time.Minute

	maxIssueAttempts = 5
)

// CodeConfig holds one-time code configuration.
type CodeConfig struct {
	LoginOTPTTL time.Duration
	// RequestInterval is the minimum time between two login code requests
	// for the same account. Zero disables throttling.
	RequestInterval time.Duration
}

// CodeService issues and verifies one-time codes. Delivery is left to the caller.
type CodeService struct {
	config   CodeConfig
	store    CodeStore
	now      func() time.Time
	generate func() (string, error)
}

// NewCodeService creates a new code service.
func NewCodeService(config CodeConfig, store CodeStore) *CodeService {
	if config.LoginOTPTTL == 0 {
		config.LoginOTPTTL = DefaultLoginOTPTTL
	}
	return &CodeService{
		config:   config,
		store:    store,
		now:      time.Now,
		generate: GenerateNumericCode,
	}
}

// LoginOTPTTL returns the login code lifetime.
func (s *CodeService) LoginOTPTTL() time.Duration {
	return s.config.LoginOTPTTL
}

// Issue generates a new code for (userID, purpose), replacing any code that
// has not been used yet. Login codes expire after LoginOTPTTL; email
// verification codes do not expire.
func (s *CodeService) Issue(ctx context.Context, userID uuid.UUID, purpose domain.CodePurpose) (string, error) {
	if !purpose.Valid() {
		return "", fmt.Errorf("unknown code purpose %q", purpose)
	}

	now := s.now()
	var expiresAt *time.Time
	if purpose == domain.PurposeLoginOTP {
		t := now.Add(s.config.LoginOTPTTL)
		expiresAt = &t
	}

	// A value already held by another account is drawn again so a code
	// always resolves to a single owner.
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}

		err = s.store.Put(ctx, &domain.OneTimeCode{
			UserID:    userID,
			Purpose:   purpose,
			Code:      code,
			IssuedAt:  now,
			ExpiresAt: expiresAt,
		})
		if errors.Is(err, domain.ErrCodeCollision) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: failed to store code: %w", domain.ErrStorage, err)
		}
		return code, nil
	}
	return "", fmt.Errorf("%w: no free code after %d attempts", domain.ErrStorage, maxIssueAttempts)
}

// IssueLoginOTP issues a login code, refusing requests that arrive faster
// than RequestInterval.
func (s *CodeService) IssueLoginOTP(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.config.RequestInterval > 0 {
		ok, err := s.store.Throttle(ctx, "login_otp:"+userID.String(), s.config.RequestInterval)
		if err != nil {
			return "", fmt.Errorf("%w: failed to check request throttle: %w", domain.ErrStorage, err)
		}
		if !ok {
			return "", domain.ErrCodeRequestThrottled
		}
	}
	return s.Issue(ctx, userID, domain.PurposeLoginOTP)
}

// Verify returns true and consumes the stored code iff it matches and has not
// expired. Wrong or expired codes leave the stored code untouched.
func (s *CodeService) Verify(ctx context.Context, userID uuid.UUID, code string, purpose domain.CodePurpose) (bool, error) {
	if !isNumericCode(code) {
		return false, nil
	}

	ok, err := s.store.Consume(ctx, userID, purpose, code, s.now())
	if err != nil {
		return false, fmt.Errorf("%w: failed to consume code: %w", domain.ErrStorage, err)
	}
	return ok, nil
}

// VerifyByCode consumes a code found by value alone and returns its owner.
func (s *CodeService) VerifyByCode(ctx context.Context, code string, purpose domain.CodePurpose) (uuid.UUID, error) {
	if !isNumericCode(code) {
		return uuid.Nil, domain.ErrInvalidCode
	}

	userID, err := s.store.LookupByCode(ctx, purpose, code)
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) {
			return uuid.Nil, domain.ErrInvalidCode
		}
		return uuid.Nil, fmt.Errorf("%w: failed to look up code: %w", domain.ErrStorage, err)
	}

	ok, err := s.Verify(ctx, userID, code, purpose)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, domain.ErrInvalidCode
	}
	return userID, nil
}

// GenerateNumericCode returns a uniformly random code in 100000-999999.
func GenerateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

func isNumericCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tendant/contextauth/pkg/domain"
)

// LoginOTPService runs the second factor step that precedes a login.
type LoginOTPService struct {
	logger        *slog.Logger
	callTimeout   time.Duration
	accounts      AccountStore
	codes         *CodeService
	assertions    *AssertionService
	authenticator *AuthenticatorVerifier
	notifier      NotificationSender
}

// NewLoginOTPService creates a new login OTP service. callTimeout bounds each
// store lookup and defaults to DefaultCallTimeout. authenticator may be nil.
func NewLoginOTPService(
	logger *slog.Logger,
	callTimeout time.Duration,
	accounts AccountStore,
	codes *CodeService,
	assertions *AssertionService,
	authenticator *AuthenticatorVerifier,
	notifier NotificationSender,
) *LoginOTPService {
	if callTimeout == 0 {
		callTimeout = DefaultCallTimeout
	}
	return &LoginOTPService{
		logger:        logger,
		callTimeout:   callTimeout,
		accounts:      accounts,
		codes:         codes,
		assertions:    assertions,
		authenticator: authenticator,
		notifier:      notifier,
	}
}

// Request issues a login code and sends it to the account's email.
func (s *LoginOTPService) Request(ctx context.Context, email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	account, err := s.findAccount(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("%w: failed to find account: %w", domain.ErrStorage, err)
	}
	if !account.EmailVerified {
		return domain.ErrEmailNotVerified
	}

	code, err := s.codes.IssueLoginOTP(ctx, account.ID)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"code":       code,
		"ttlMinutes": strconv.Itoa(int(s.codes.LoginOTPTTL().Minutes())),
	}
	if err := s.notifier.Send(ctx, account.Email, NotifyLoginOTP, payload); err != nil {
		return fmt.Errorf("failed to send login code: %w", err)
	}

	s.logger.Info("login code sent", "user_id", account.ID)
	return nil
}

// Verify consumes a login code, or accepts a current authenticator code for
// accounts with one enrolled, and returns a single-use assertion for login.
func (s *LoginOTPService) Verify(ctx context.Context, email, code string) (*domain.OTPAssertion, error) {
	if email == "" || code == "" {
		return nil, domain.ErrInvalidCode
	}
	account, err := s.findAccount(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCode
		}
		return nil, fmt.Errorf("%w: failed to find account: %w", domain.ErrStorage, err)
	}

	ok, err := s.codes.Verify(ctx, account.ID, code, domain.PurposeLoginOTP)
	if err != nil {
		return nil, err
	}
	if !ok && s.authenticator != nil {
		ok, err = callWithTimeout(ctx, s.callTimeout, func(ctx context.Context) (bool, error) {
			return s.authenticator.Verify(ctx, account, code)
		})
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, domain.ErrInvalidCode
	}

	assertion, err := s.assertions.Issue(account)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login code verified", "user_id", account.ID)
	return assertion, nil
}

func (s *LoginOTPService) findAccount(ctx context.Context, email string) (*domain.Account, error) {
	return callWithTimeout(ctx, s.callTimeout, func(ctx context.Context) (*domain.Account, error) {
		return s.accounts.FindByEmail(ctx, NormalizeEmail(email))
	})
}

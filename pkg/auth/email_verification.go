package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/contextauth/pkg/domain"
)

// EmailCodeVerifier resolves an email verification code to the account it
// was issued for and consumes it.
type EmailCodeVerifier interface {
	VerifyEmailCode(ctx context.Context, email, code string) (*domain.Account, error)
}

// CodeOnlyEmailVerifier finds the account by the code alone and ignores the
// email. Any holder of a valid code verifies the account it was issued for.
type CodeOnlyEmailVerifier struct {
	codes    *CodeService
	accounts AccountStore
}

// NewCodeOnlyEmailVerifier creates a verifier that looks codes up by value.
func NewCodeOnlyEmailVerifier(codes *CodeService, accounts AccountStore) *CodeOnlyEmailVerifier {
	return &CodeOnlyEmailVerifier{codes: codes, accounts: accounts}
}

// VerifyEmailCode implements EmailCodeVerifier.
func (v *CodeOnlyEmailVerifier) VerifyEmailCode(ctx context.Context, _ string, code string) (*domain.Account, error) {
	userID, err := v.codes.VerifyByCode(ctx, code, domain.PurposeEmailVerification)
	if err != nil {
		return nil, err
	}
	return v.accounts.FindByID(ctx, userID)
}

// BoundEmailVerifier only accepts a code for the account that owns email.
type BoundEmailVerifier struct {
	codes    *CodeService
	accounts AccountStore
}

// NewBoundEmailVerifier creates a verifier that binds codes to an email.
func NewBoundEmailVerifier(codes *CodeService, accounts AccountStore) *BoundEmailVerifier {
	return &BoundEmailVerifier{codes: codes, accounts: accounts}
}

// VerifyEmailCode implements EmailCodeVerifier.
func (v *BoundEmailVerifier) VerifyEmailCode(ctx context.Context, email, code string) (*domain.Account, error) {
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}
	account, err := v.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCode
		}
		return nil, err
	}

	ok, err := v.codes.Verify(ctx, account.ID, code, domain.PurposeEmailVerification)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCode
	}
	return account, nil
}

// VerificationService handles the email ownership flow.
type VerificationService struct {
	logger   *slog.Logger
	accounts AccountStore
	codes    *CodeService
	verifier EmailCodeVerifier
	notifier NotificationSender
}

// NewVerificationService creates a new verification service.
func NewVerificationService(
	logger *slog.Logger,
	accounts AccountStore,
	codes *CodeService,
	verifier EmailCodeVerifier,
	notifier NotificationSender,
) *VerificationService {
	return &VerificationService{
		logger:   logger,
		accounts: accounts,
		codes:    codes,
		verifier: verifier,
		notifier: notifier,
	}
}

// RequestCode issues an email verification code and sends it to the account.
// Unknown and already verified addresses return nil without sending anything.
func (s *VerificationService) RequestCode(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil
		}
		return fmt.Errorf("%w: failed to find account: %w", domain.ErrStorage, err)
	}
	if account.EmailVerified {
		return nil
	}

	code, err := s.codes.Issue(ctx, account.ID, domain.PurposeEmailVerification)
	if err != nil {
		return err
	}

	if err := s.notifier.Send(ctx, account.Email, NotifyEmailVerification, map[string]string{"code": code}); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	s.logger.Info("email verification code sent", "user_id", account.ID)
	return nil
}

// VerifyCode consumes a verification code and marks the account verified.
func (s *VerificationService) VerifyCode(ctx context.Context, email, code string) (*domain.Account, error) {
	account, err := s.verifier.VerifyEmailCode(ctx, email, code)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.MarkEmailVerified(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("%w: failed to mark email verified: %w", domain.ErrStorage, err)
	}
	account.EmailVerified = true
	return account, nil
}

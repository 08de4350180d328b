package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/contextauth/internal/mock"
	"github.com/tendant/contextauth/pkg/auth"
	"github.com/tendant/contextauth/pkg/domain"
	"go.uber.org/mock/gomock"
)

func unverifiedAccount() *domain.Account {
	account := verifiedAccount()
	account.EmailVerified = false
	return account
}

func TestVerificationService_RequestCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mock.NewMockAccountStore(ctrl)
	store := mock.NewMockCodeStore(ctrl)
	notifier := mock.NewMockNotificationSender(ctrl)
	codes := auth.NewCodeService(auth.CodeConfig{}, store)
	svc := auth.NewVerificationService(slog.New(slog.NewTextHandler(io.Discard, nil)), accounts, codes, auth.NewCodeOnlyEmailVerifier(codes, accounts), notifier)

	account := unverifiedAccount()
	var issued string
	accounts.EXPECT().FindByEmail(gomock.Any(), account.Email).Return(account, nil)
	store.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *domain.OneTimeCode) error {
		assert.Equal(t, domain.PurposeEmailVerification, c.Purpose)
		assert.Nil(t, c.ExpiresAt)
		issued = c.Code
		return nil
	})
	notifier.EXPECT().Send(gomock.Any(), account.Email, auth.NotifyEmailVerification, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ auth.NotificationKind, payload map[string]string) error {
			assert.Equal(t, issued, payload["code"])
			return nil
		})

	require.NoError(t, svc.RequestCode(context.Background(), account.Email))
}

func TestVerificationService_RequestCodeIsSilentForUnknownOrVerified(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mock.NewMockAccountStore(ctrl)
	codes := auth.NewCodeService(auth.CodeConfig{}, mock.NewMockCodeStore(ctrl))
	svc := auth.NewVerificationService(slog.New(slog.NewTextHandler(io.Discard, nil)), accounts, codes, auth.NewCodeOnlyEmailVerifier(codes, accounts), mock.NewMockNotificationSender(ctrl))

	accounts.EXPECT().FindByEmail(gomock.Any(), "ghost@example.edu").Return(nil, domain.ErrAccountNotFound)
	assert.NoError(t, svc.RequestCode(context.Background(), "ghost@example.edu"))

	verified := verifiedAccount()
	accounts.EXPECT().FindByEmail(gomock.Any(), verified.Email).Return(verified, nil)
	assert.NoError(t, svc.RequestCode(context.Background(), verified.Email))
}

func TestCodeOnlyEmailVerifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mock.NewMockAccountStore(ctrl)
	store := mock.NewMockCodeStore(ctrl)
	codes := auth.NewCodeService(auth.CodeConfig{}, store)
	svc := auth.NewVerificationService(slog.New(slog.NewTextHandler(io.Discard, nil)), accounts, codes, auth.NewCodeOnlyEmailVerifier(codes, accounts), mock.NewMockNotificationSender(ctrl))

	account := unverifiedAccount()
	gomock.InOrder(
		store.EXPECT().LookupByCode(gomock.Any(), domain.PurposeEmailVerification, "424242").Return(account.ID, nil),
		store.EXPECT().Consume(gomock.Any(), account.ID, domain.PurposeEmailVerification, "424242", gomock.Any()).Return(true, nil),
		accounts.EXPECT().FindByID(gomock.Any(), account.ID).Return(account, nil),
		accounts.EXPECT().MarkEmailVerified(gomock.Any(), account.ID).Return(nil),
	)

	got, err := svc.VerifyCode(context.Background(), "", "424242")
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
}

func TestCodeOnlyEmailVerifier_UnknownCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mock.NewMockAccountStore(ctrl)
	store := mock.NewMockCodeStore(ctrl)
	codes := auth.NewCodeService(auth.CodeConfig{}, store)
	verifier := auth.NewCodeOnlyEmailVerifier(codes, accounts)

	store.EXPECT().LookupByCode(gomock.Any(), domain.PurposeEmailVerification, "111111").Return(uuid.Nil, domain.ErrCodeNotFound)

	_, err := verifier.VerifyEmailCode(context.Background(), "", "111111")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestBoundEmailVerifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mock.NewMockAccountStore(ctrl)
	store := mock.NewMockCodeStore(ctrl)
	codes := auth.NewCodeService(auth.CodeConfig{}, store)
	verifier := auth.NewBoundEmailVerifier(codes, accounts)

	account := unverifiedAccount()

	t.Run("matching email", func(t *testing.T) {
		accounts.EXPECT().FindByEmail(gomock.Any(), account.Email).Return(account, nil)
		store.EXPECT().Consume(gomock.Any(), account.ID, domain.PurposeEmailVerification, "424242", gomock.Any()).Return(true, nil)

		got, err := verifier.VerifyEmailCode(context.Background(), "Ada@Example.edu", "424242")
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("code belongs to someone else", func(t *testing.T) {
		accounts.EXPECT().FindByEmail(gomock.Any(), account.Email).Return(account, nil)
		store.EXPECT().Consume(gomock.Any(), account.ID, domain.PurposeEmailVerification, "999999", gomock.Any()).Return(false, nil)

		_, err := verifier.VerifyEmailCode(context.Background(), account.Email, "999999")
		assert.ErrorIs(t, err, domain.ErrInvalidCode)
	})

	t.Run("email required", func(t *testing.T) {
		_, err := verifier.VerifyEmailCode(context.Background(), "", "424242")
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/tendant/contextauth/pkg/domain"
)

const (
	totpPeriod = 30
	totpSkew   = 1 // Allow ±30 seconds clock drift

	// totpStepTTL outlives the window in which an accepted step still validates.
	totpStepTTL = time.Duration((2*totpSkew+1)*totpPeriod) * time.Second
)

var totpOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// AuthenticatorVerifier checks codes from an enrolled authenticator app. Each
// time step is accepted at most once per account.
type AuthenticatorVerifier struct {
	steps AssertionStore
	now   func() time.Time
}

// NewAuthenticatorVerifier creates a TOTP verifier that burns accepted steps
// in steps.
func NewAuthenticatorVerifier(steps AssertionStore) *AuthenticatorVerifier {
	return &AuthenticatorVerifier{steps: steps, now: time.Now}
}

// Verify returns true if code matches a time step within the allowed skew
// that has not been accepted before. Accounts without an enrolled secret
// always fail.
func (v *AuthenticatorVerifier) Verify(ctx context.Context, account *domain.Account, code string) (bool, error) {
	if account == nil || !account.HasAuthenticator() || len(code) != int(otp.DigitsSix) {
		return false, nil
	}

	now := v.now()
	for offset := -totpSkew; offset <= totpSkew; offset++ {
		at := now.Add(time.Duration(offset*totpPeriod) * time.Second)
		expected, err := totp.GenerateCodeCustom(*account.AuthenticatorSecret, at, totpOpts)
		if err != nil {
			return false, nil
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
			continue
		}

		fresh, err := v.steps.MarkTOTPStepUsed(ctx, account.ID, at.Unix()/totpPeriod, totpStepTTL)
		if err != nil {
			return false, fmt.Errorf("%w: failed to record authenticator step: %w", domain.ErrStorage, err)
		}
		return fresh, nil
	}
	return false, nil
}

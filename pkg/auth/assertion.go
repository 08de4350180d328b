package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/contextauth/pkg/domain"
)

const (
	// DefaultAssertionTTL is how long a verified OTP can be presented at login.
	DefaultAssertionTTL = 5 * time.Minute

	assertionAudience = "login"
	assertionType     = "otp_assertion"
)

// AssertionConfig holds OTP assertion configuration.
type AssertionConfig struct {
	TTL       time.Duration
	JWTSecret []byte
	Issuer    string
}

// OTPAssertionClaims are the claims of a second factor assertion.
type OTPAssertionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Type  string `json:"typ"`
}

// AssertionService issues and redeems proof that a login code was verified.
type AssertionService struct {
	config AssertionConfig
	store  AssertionStore
	now    func() time.Time
}

// NewAssertionService creates a new assertion service.
func NewAssertionService(config AssertionConfig, store AssertionStore) *AssertionService {
	if config.TTL == 0 {
		config.TTL = DefaultAssertionTTL
	}
	return &AssertionService{
		config: config,
		store:  store,
		now:    time.Now,
	}
}

// Issue signs a single-use assertion for account.
func (s *AssertionService) Issue(account *domain.Account) (*domain.OTPAssertion, error) {
	now := s.now()
	expiresAt := now.Add(s.config.TTL)
	id := uuid.NewString()

	claims := OTPAssertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			Audience:  jwt.ClaimStrings{assertionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    s.config.Issuer,
			ID:        id,
		},
		Email: account.Email,
		Type:  assertionType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign assertion: %w", err)
	}

	return &domain.OTPAssertion{
		Token:     signed,
		ID:        id,
		AccountID: account.ID,
		Email:     account.Email,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate checks the signature, expiry and binding of an assertion without
// consuming it.
func (s *AssertionService) Validate(token string, account *domain.Account) (*OTPAssertionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &OTPAssertionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrAssertionInvalid
		}
		return s.config.JWTSecret, nil
	}, jwt.WithAudience(assertionAudience), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, domain.ErrAssertionInvalid
	}

	claims, ok := parsed.Claims.(*OTPAssertionClaims)
	if !ok || !parsed.Valid || claims.Type != assertionType || claims.ID == "" {
		return nil, domain.ErrAssertionInvalid
	}
	if claims.Subject != account.ID.String() || NormalizeEmail(claims.Email) != NormalizeEmail(account.Email) {
		return nil, domain.ErrAssertionInvalid
	}
	return claims, nil
}

// Redeem burns the assertion id. A second redemption returns ErrAssertionUsed.
func (s *AssertionService) Redeem(ctx context.Context, claims *OTPAssertionClaims) error {
	ttl := s.config.TTL
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}

	ok, err := s.store.MarkUsed(ctx, claims.ID, ttl)
	if err != nil {
		return fmt.Errorf("%w: failed to redeem assertion: %w", domain.ErrStorage, err)
	}
	if !ok {
		return domain.ErrAssertionUsed
	}
	return nil
}

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/contextauth/pkg/domain"
)

const (
	// DefaultAccessTokenTTL is the default access token lifetime.
	DefaultAccessTokenTTL = 1 * time.Hour

	accessTokenAudience = "access"
)

// SessionConfig holds session configuration.
type SessionConfig struct {
	AccessTokenTTL time.Duration
	JWTSecret      []byte
	Issuer         string
}

// SessionService issues and validates access tokens.
type SessionService struct {
	config SessionConfig
	now    func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(config SessionConfig) *SessionService {
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = DefaultAccessTokenTTL
	}
	return &SessionService{
		config: config,
		now:    time.Now,
	}
}

// AccessTokenTTL returns the access token TTL.
func (s *SessionService) AccessTokenTTL() time.Duration {
	return s.config.AccessTokenTTL
}

// AccessTokenClaims represents the claims in an access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// IssueAccessToken signs an access token bound to the account id and role.
func (s *SessionService) IssueAccessToken(account *domain.Account) (*domain.AccessToken, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			Audience:  jwt.ClaimStrings{accessTokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    s.config.Issuer,
			ID:        uuid.NewString(),
		},
		Email: account.Email,
		Role:  string(account.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	return &domain.AccessToken{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int(s.config.AccessTokenTTL.Seconds()),
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateAccessToken validates an access token and returns the claims.
// Tokens minted for another audience, such as OTP assertions, are refused.
func (s *SessionService) ValidateAccessToken(tokenString string) (*AccessTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.JWTSecret, nil
	}, jwt.WithAudience(accessTokenAudience), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessTokenClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if s.config.Issuer != "" && claims.Issuer != s.config.Issuer {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// GetUserIDFromToken extracts the user ID from an access token.
func (s *SessionService) GetUserIDFromToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(claims.Subject)
}

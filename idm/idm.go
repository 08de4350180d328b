// Package idm provides context-aware adaptive authentication as a library.
//
// Setup:
//
//  1. Run migrations from the migrations/ folder (or call migrations.Migrate)
//  2. Create an IDM instance and mount its router
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//
//	auth, err := idm.New(idm.Config{
//	    DB:        db,
//	    Redis:     rdb,
//	    JWTSecret: "your-secret-key-at-least-32-chars",
//	})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//	defer auth.Close()
//
//	r := chi.NewRouter()
//	r.Mount("/", auth.Router())
//	http.ListenAndServe(":8080", r)
//
// Without a Transport, messages are written to the logger instead of being
// delivered.
package idm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/contextauth/internal/config"
	httpserver "github.com/tendant/contextauth/internal/http"
	"github.com/tendant/contextauth/internal/http/middleware"
	"github.com/tendant/contextauth/internal/notification"
	"github.com/tendant/contextauth/pkg/auth"
	"github.com/tendant/contextauth/pkg/domain"
	"github.com/tendant/contextauth/pkg/repository"
)

// Email code binding modes.
const (
	EmailBindingCode  = config.EmailBindingCode
	EmailBindingEmail = config.EmailBindingEmail
)

// Config holds the configuration for the IDM library.
type Config struct {
	// DB is the database connection (required).
	DB *sql.DB

	// Redis holds one-time codes and redeemed assertions (required).
	Redis *redis.Client

	// RedisKeyPrefix namespaces every key written to Redis (default: "contextauth:").
	RedisKeyPrefix string

	// JWTSecret is the secret key for signing JWT tokens (required, min 32 chars).
	JWTSecret string

	// JWTIssuer is the issuer claim in JWT tokens (default: "contextauth").
	JWTIssuer string

	// AccessTokenTTL is the lifetime of access tokens (default: 1 hour).
	AccessTokenTTL time.Duration

	// LoginOTPTTL is the lifetime of emailed login codes (default: 10 minutes).
	LoginOTPTTL time.Duration

	// OTPRequestInterval is the minimum time between two login code
	// requests for one account (default: 1 minute).
	OTPRequestInterval time.Duration

	// OTPAssertionTTL is how long a verified login code may be presented
	// at login (default: 5 minutes).
	OTPAssertionTTL time.Duration

	// TrustClientOTPFlag accepts the client supplied otpVerified flag in
	// place of an assertion. Only for clients that cannot carry the token.
	TrustClientOTPFlag bool

	// EmailCodeBinding is EmailBindingCode or EmailBindingEmail (default: code).
	EmailCodeBinding string

	// SuspensionDuration is how long a high-risk login suspends the
	// account (default: 24 hours).
	SuspensionDuration time.Duration

	// HistoryWindow is how many recent logins are loaded with a context
	// (default: 50).
	HistoryWindow int

	// Risk holds scoring weights; zero fields take the stock values.
	Risk auth.RiskConfig

	LoginTimeout        time.Duration
	CollaboratorTimeout time.Duration
	NotifyTimeout       time.Duration

	// Transport delivers notifications (default: log only).
	Transport notification.Transport

	RateLimit          config.RateLimitConfig
	SecurityHeaders    config.SecurityHeadersConfig
	MaxRequestBodySize int64
	CookieSecure       bool

	// Logger is the structured logger (default: JSON to stdout).
	Logger *slog.Logger
}

// IDM is the main authentication instance.
type IDM struct {
	config          Config
	accountsRepo    *repository.AccountsRepository
	contextsRepo    *repository.ContextsRepository
	sessionService  *auth.SessionService
	loginService    *auth.LoginService
	loginOTPService *auth.LoginOTPService
	verification    *auth.VerificationService
}

// New creates a new IDM instance with the given configuration.
// Returns an error if required database tables don't exist.
func New(cfg Config) (*IDM, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}

	if err := validateSchema(cfg.DB); err != nil {
		return nil, err
	}

	// Repositories
	accountsRepo := repository.NewAccountsRepository(cfg.DB)
	credsRepo := repository.NewCredentialsRepository(cfg.DB)
	contextsRepo := repository.NewContextsRepository(cfg.DB, repository.ContextsConfig{
		HistoryWindow:   cfg.HistoryWindow,
		DefaultRadiusKm: cfg.Risk.DefaultRadiusKm,
		NearbyKm:        cfg.Risk.NearbyKm,
	})
	codesStore := repository.NewCodesStore(cfg.Redis, cfg.RedisKeyPrefix)
	assertionsStore := repository.NewAssertionsStore(cfg.Redis, cfg.RedisKeyPrefix)

	// Services
	notifier := notification.NewNotifier(cfg.Logger, cfg.Transport)
	sessionService := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL: cfg.AccessTokenTTL,
		JWTSecret:      []byte(cfg.JWTSecret),
		Issuer:         cfg.JWTIssuer,
	})
	assertionService := auth.NewAssertionService(auth.AssertionConfig{
		TTL:       cfg.OTPAssertionTTL,
		JWTSecret: []byte(cfg.JWTSecret),
		Issuer:    cfg.JWTIssuer,
	}, assertionsStore)
	codeService := auth.NewCodeService(auth.CodeConfig{
		LoginOTPTTL:     cfg.LoginOTPTTL,
		RequestInterval: cfg.OTPRequestInterval,
	}, codesStore)

	loginService := auth.NewLoginService(cfg.Logger, auth.LoginConfig{
		Timeout:            cfg.LoginTimeout,
		CallTimeout:        cfg.CollaboratorTimeout,
		NotifyTimeout:      cfg.NotifyTimeout,
		TrustClientOTPFlag: cfg.TrustClientOTPFlag,
	}, auth.LoginDeps{
		Accounts:    accountsRepo,
		Credentials: auth.NewPasswordVerifier(credsRepo),
		Contexts:    contextsRepo,
		Scorer:      auth.NewRiskScorer(cfg.Risk),
		Suspensions: auth.NewSuspensionController(accountsRepo, cfg.SuspensionDuration),
		Sessions:    sessionService,
		Assertions:  assertionService,
		Notifier:    notifier,
	})

	loginOTPService := auth.NewLoginOTPService(
		cfg.Logger,
		cfg.CollaboratorTimeout,
		accountsRepo,
		codeService,
		assertionService,
		auth.NewAuthenticatorVerifier(assertionsStore),
		notifier,
	)

	var verifier auth.EmailCodeVerifier
	if cfg.EmailCodeBinding == EmailBindingEmail {
		verifier = auth.NewBoundEmailVerifier(codeService, accountsRepo)
	} else {
		verifier = auth.NewCodeOnlyEmailVerifier(codeService, accountsRepo)
	}
	verification := auth.NewVerificationService(cfg.Logger, accountsRepo, codeService, verifier, notifier)

	return &IDM{
		config:          cfg,
		accountsRepo:    accountsRepo,
		contextsRepo:    contextsRepo,
		sessionService:  sessionService,
		loginService:    loginService,
		loginOTPService: loginOTPService,
		verification:    verification,
	}, nil
}

// Router returns an http.Handler with all auth routes.
//
// Routes:
//
//	GET  /health                    - Database and Redis health
//	POST /v1/auth/login             - Adaptive login
//	POST /v1/auth/login-otp/request - Email a login code
//	POST /v1/auth/login-otp/verify  - Exchange a login code for an OTP token
//	POST /v1/auth/email/request     - Email a verification code
//	POST /v1/auth/email/verify      - Verify an email address
//	GET  /v1/me/login-history       - Login history (protected)
func (i *IDM) Router() http.Handler {
	return httpserver.NewRouter(httpserver.RouterConfig{
		Logger:              i.config.Logger,
		LoginService:        i.loginService,
		LoginOTPService:     i.loginOTPService,
		VerificationService: i.verification,
		SessionService:      i.sessionService,
		LoginHistory:        i.contextsRepo,
		RateLimitConfig:     i.config.RateLimit,
		SecurityHeaders:     i.config.SecurityHeaders,
		MaxRequestBodySize:  i.config.MaxRequestBodySize,
		CookieSecure:        i.config.CookieSecure,
		HealthChecks:        i.HealthChecks(),
	})
}

// HealthChecks returns the readiness probes for the backing stores.
func (i *IDM) HealthChecks() map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		"database": i.config.DB.PingContext,
		"redis": func(ctx context.Context) error {
			return i.config.Redis.Ping(ctx).Err()
		},
	}
}

// LoginService returns the login orchestrator for advanced usage.
func (i *IDM) LoginService() *auth.LoginService {
	return i.loginService
}

// SessionService returns the session service for advanced usage.
func (i *IDM) SessionService() *auth.SessionService {
	return i.sessionService
}

// Accounts returns the accounts repository. The suspension janitor uses it.
func (i *IDM) Accounts() *repository.AccountsRepository {
	return i.accountsRepo
}

// AuthMiddleware returns middleware that validates access tokens.
// Use this to protect your own routes:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(auth.AuthMiddleware())
//	    r.Get("/protected", handler)
//	})
func (i *IDM) AuthMiddleware() func(http.Handler) http.Handler {
	return middleware.Auth(i.sessionService)
}

// GetUserIDFromContext extracts the user ID from a context.
// Use after AuthMiddleware:
//
//	userID, ok := idm.GetUserIDFromContext(ctx)
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return middleware.GetUserID(ctx)
}

// LoginHistory returns up to limit entries after cursor, newest first.
func (i *IDM) LoginHistory(ctx context.Context, userID uuid.UUID, cursor domain.HistoryCursor, limit int) ([]domain.LoginEvent, error) {
	return i.contextsRepo.ListLoginHistory(ctx, userID, cursor, limit)
}

// Wait blocks until in-flight alert notifications are delivered.
func (i *IDM) Wait() {
	i.loginService.Wait()
}

// Close waits for pending notifications and closes the transport if it
// holds resources. The DB and Redis clients belong to the caller.
func (i *IDM) Close() error {
	i.Wait()
	if closer, ok := i.config.Transport.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil {
		return errors.New("idm: DB is required")
	}
	if cfg.Redis == nil {
		return errors.New("idm: Redis is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("idm: JWTSecret is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("idm: JWTSecret must be at least 32 characters")
	}
	switch cfg.EmailCodeBinding {
	case "", EmailBindingCode, EmailBindingEmail:
	default:
		return fmt.Errorf("idm: unknown EmailCodeBinding %q", cfg.EmailCodeBinding)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		RedisKeyPrefix:      "contextauth:",
		JWTIssuer:           "contextauth",
		AccessTokenTTL:      auth.DefaultAccessTokenTTL,
		LoginOTPTTL:         auth.DefaultLoginOTPTTL,
		OTPRequestInterval:  time.Minute,
		OTPAssertionTTL:     auth.DefaultAssertionTTL,
		EmailCodeBinding:    EmailBindingCode,
		SuspensionDuration:  auth.DefaultSuspensionDuration,
		HistoryWindow:       repository.DefaultHistoryWindow,
		Risk:                auth.DefaultRiskConfig(),
		LoginTimeout:        auth.DefaultLoginTimeout,
		CollaboratorTimeout: auth.DefaultCallTimeout,
		NotifyTimeout:       auth.DefaultNotifyTimeout,
		MaxRequestBodySize:  httpserver.DefaultMaxRequestBodySize,
	}
}

func applyDefaults(cfg *Config) error {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	if cfg.Transport == nil {
		cfg.Transport = notification.NewLogTransport(cfg.Logger)
	}
	if err := mergo.Merge(cfg, defaultConfig()); err != nil {
		return fmt.Errorf("idm: failed to apply defaults: %w", err)
	}
	return nil
}

// validateSchema checks that required database tables exist.
func validateSchema(db *sql.DB) error {
	requiredTables := []string{"accounts", "account_passwords", "user_contexts", "login_history"}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(query, table).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("idm: missing table '%s' - run migrations first (see migrations/ folder)", table)
		}
		if err != nil {
			return fmt.Errorf("idm: failed to check schema: %w", err)
		}
	}

	return nil
}

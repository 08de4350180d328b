package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/contextauth/internal/config"
	"github.com/tendant/contextauth/internal/http/features/email"
	"github.com/tendant/contextauth/internal/http/features/login"
	"github.com/tendant/contextauth/internal/http/features/me"
	"github.com/tendant/contextauth/internal/http/features/otp"
	"github.com/tendant/contextauth/internal/http/middleware"
	"github.com/tendant/contextauth/internal/httputil"
	"github.com/tendant/contextauth/pkg/auth"
)

// DefaultMaxRequestBodySize bounds request bodies when none is configured.
const DefaultMaxRequestBodySize = 1 << 20

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger              *slog.Logger
	LoginService        login.Authenticator
	LoginOTPService     otp.LoginCodes
	VerificationService email.Verifier
	SessionService      *auth.SessionService
	LoginHistory        me.HistoryLister
	RateLimitConfig     config.RateLimitConfig
	SecurityHeaders     config.SecurityHeadersConfig
	MaxRequestBodySize  int64
	CookieSecure        bool // Whether to use Secure flag on cookies (should be true for HTTPS)
	// HealthChecks are run by /health; any error reports the service
	// unavailable.
	HealthChecks map[string]func(ctx context.Context) error
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = DefaultMaxRequestBodySize
	}

	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))
	r.Use(middleware.RequireJSON)

	r.Get("/health", healthHandler(cfg.HealthChecks))

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	cookieConfig := httputil.DefaultCookieConfig()
	cookieConfig.Secure = cfg.CookieSecure

	loginHandler := login.NewHandler(cfg.Logger, cfg.LoginService, cookieConfig, cfg.SessionService.AccessTokenTTL())
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters[middleware.LimiterLogin])
		loginHandler.RegisterRoutes(r)
	})

	otpHandler := otp.NewHandler(cfg.Logger, cfg.LoginOTPService)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters[middleware.LimiterOTP])
		otpHandler.RegisterRequestRoutes(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters[middleware.LimiterVerify])
		otpHandler.RegisterVerifyRoutes(r)
	})

	if cfg.VerificationService != nil {
		emailHandler := email.NewHandler(cfg.Logger, cfg.VerificationService)
		r.Group(func(r chi.Router) {
			r.Use(rateLimiters[middleware.LimiterVerify])
			emailHandler.RegisterRoutes(r)
		})
	}

	if cfg.LoginHistory != nil {
		meHandler := me.NewHandler(cfg.Logger, cfg.LoginHistory)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.SessionService))
			r.Use(rateLimiters[middleware.LimiterProfile])
			meHandler.RegisterRoutes(r)
		})
	}

	return r
}

func healthHandler(checks map[string]func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = "unavailable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httputil.JSON(w, code, status)
	}
}

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/tendant/contextauth/internal/config"
	"github.com/tendant/contextauth/internal/httputil"
)

// Limiter names returned by CreateRateLimiters.
const (
	LimiterLogin   = "login"
	LimiterOTP     = "otp"
	LimiterVerify  = "verify"
	LimiterProfile = "profile"
)

// RateLimitConfig holds rate limiting configuration for a specific endpoint type.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// CreateRateLimiters creates rate limiting middleware functions based on configuration.
func CreateRateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	if !cfg.Enabled {
		noOp := NoRateLimit()
		return map[string]func(http.Handler) http.Handler{
			LimiterLogin:   noOp,
			LimiterOTP:     noOp,
			LimiterVerify:  noOp,
			LimiterProfile: noOp,
		}
	}

	perMinute := func(requests int) func(http.Handler) http.Handler {
		if requests <= 0 {
			return NoRateLimit()
		}
		return RateLimit(RateLimitConfig{Requests: requests, Window: time.Minute, Logger: logger})
	}

	return map[string]func(http.Handler) http.Handler{
		LimiterLogin:   perMinute(cfg.LoginRequestsPerMinute),
		LimiterOTP:     perMinute(cfg.OTPRequestsPerMinute),
		LimiterVerify:  perMinute(cfg.VerifyRequestsPerMinute),
		LimiterProfile: perMinute(cfg.ProfileRequestsPerMinute),
	}
}

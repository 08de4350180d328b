package middleware

import (
	"net/http"
	"strconv"

	"github.com/tendant/contextauth/internal/config"
)

type header struct {
	name  string
	value string
}

// securityHeaders lists the configured headers. Empty values are left out.
func securityHeaders(cfg config.SecurityHeadersConfig) []header {
	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains"
	}

	all := []header{
		{"Content-Security-Policy", cfg.CSP},
		{"Strict-Transport-Security", hsts},
		{"X-Frame-Options", cfg.FrameOptions},
		{"X-Content-Type-Options", cfg.ContentTypeOptions},
		{"X-XSS-Protection", cfg.XSSProtection},
		{"Referrer-Policy", cfg.ReferrerPolicy},
		{"Permissions-Policy", cfg.PermissionsPolicy},
		// Responses carry access tokens, OTP assertions and login history.
		{"Cache-Control", cfg.CacheControl},
	}

	headers := make([]header, 0, len(all))
	for _, h := range all {
		if h.value != "" {
			headers = append(headers, h)
		}
	}
	return headers
}

// SecurityHeaders creates middleware that applies OWASP-recommended security headers.
func SecurityHeaders(cfg config.SecurityHeadersConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	headers := securityHeaders(cfg)
	noStore := cfg.CacheControl == "no-store"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, sh := range headers {
				h.Set(sh.name, sh.value)
			}
			if noStore {
				h.Set("Pragma", "no-cache")
			}
			next.ServeHTTP(w, r)
		})
	}
}

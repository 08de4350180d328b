package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tendant/contextauth/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := RateLimit(RateLimitConfig{
		Requests: 2,
		Window:   time.Second,
		Logger:   logger,
	})(okHandler())

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, status := range want {
		req := httptest.NewRequest("POST", "/v1/auth/login", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != status {
			t.Errorf("request %d: got status %d, want %d", i+1, w.Code, status)
		}
	}

	// A different client is not affected
	req := httptest.NewRequest("POST", "/v1/auth/login", nil)
	req.RemoteAddr = "192.168.1.2:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other client: got status %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNoRateLimit(t *testing.T) {
	handler := NoRateLimit()(okHandler())

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Request %d: got status %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestCreateRateLimiters_Disabled(t *testing.T) {
	limiters := CreateRateLimiters(config.RateLimitConfig{Enabled: false}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	handler := limiters[LimiterLogin](okHandler())
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Request %d: got status %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestCreateRateLimiters_Enabled(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:                 true,
		LoginRequestsPerMinute:  1,
		OTPRequestsPerMinute:    5,
		VerifyRequestsPerMinute: 5,
	}
	limiters := CreateRateLimiters(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, name := range []string{LimiterLogin, LimiterOTP, LimiterVerify, LimiterProfile} {
		if limiters[name] == nil {
			t.Errorf("%s limiter should not be nil", name)
		}
	}

	handler := limiters[LimiterLogin](okHandler())
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("login limiter codes = %v", codes)
	}
}

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tendant/contextauth/internal/httputil"
)

func jsonBody(size int) []byte {
	// {"k":"aaa..."} is 8 bytes of framing around the value
	return []byte(`{"k":"` + strings.Repeat("a", size-8) + `"}`)
}

func TestRequestSizeLimit(t *testing.T) {
	maxSize := int64(100) // 100 bytes

	handler := RequestSizeLimit(maxSize)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.DecodeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name          string
		bodySize      int
		unknownLength bool
		wantStatus    int
	}{
		{
			name:       "small body - accepted",
			bodySize:   50,
			wantStatus: http.StatusOK,
		},
		{
			name:       "exact limit - accepted",
			bodySize:   100,
			wantStatus: http.StatusOK,
		},
		{
			name:       "declared too large - rejected before reading",
			bodySize:   150,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:          "chunked too large - rejected while reading",
			bodySize:      150,
			unknownLength: true,
			wantStatus:    http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader = bytes.NewReader(jsonBody(tt.bodySize))
			if tt.unknownLength {
				body = io.NopCloser(body)
			}
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", body)
			if tt.unknownLength {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireJSON(t *testing.T) {
	handler := RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
	}{
		{name: "json", contentType: "application/json", body: `{}`, wantStatus: http.StatusOK},
		{name: "json with charset", contentType: "application/json; charset=utf-8", body: `{}`, wantStatus: http.StatusOK},
		{name: "missing content type", body: `{}`, wantStatus: http.StatusOK},
		{name: "form", contentType: "application/x-www-form-urlencoded", body: "email=a", wantStatus: http.StatusUnsupportedMediaType},
		{name: "malformed", contentType: "application/", body: `{}`, wantStatus: http.StatusUnsupportedMediaType},
		{name: "no body", contentType: "text/plain", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tendant/contextauth/pkg/domain"
)

type fakeVerifier struct {
	requestErr error
	verifyErr  error
	gotEmail   string
	gotCode    string
}

func (f *fakeVerifier) RequestCode(_ context.Context, email string) error {
	f.gotEmail = email
	return f.requestErr
}

func (f *fakeVerifier) VerifyCode(_ context.Context, email, code string) (*domain.Account, error) {
	f.gotEmail, f.gotCode = email, code
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &domain.Account{ID: uuid.New(), Email: email, EmailVerified: true}, nil
}

func newRouter(v Verifier) http.Handler {
	r := chi.NewRouter()
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), v).RegisterRoutes(r)
	return r
}

func post(h http.Handler, path, body string) (*httptest.ResponseRecorder, Response) {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Response
	json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&resp)
	return rec, resp
}

func TestRequestCode(t *testing.T) {
	v := &fakeVerifier{}
	rec, resp := post(newRouter(v), "/v1/auth/email/request", `{"email":"alice@example.com"}`)

	if rec.Code != http.StatusOK || !resp.Success {
		t.Errorf("status = %d, resp = %+v", rec.Code, resp)
	}
	if v.gotEmail != "alice@example.com" {
		t.Errorf("email = %q", v.gotEmail)
	}
}

func TestRequestCode_Errors(t *testing.T) {
	rec, _ := post(newRouter(&fakeVerifier{}), "/v1/auth/email/request", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing email: status = %d", rec.Code)
	}

	rec, _ = post(newRouter(&fakeVerifier{requestErr: domain.ErrStorage}), "/v1/auth/email/request", `{"email":"alice@example.com"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("storage error: status = %d", rec.Code)
	}
}

func TestVerifyCode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "code only", body: `{"code":"123456"}`, wantStatus: http.StatusOK},
		{name: "code with email", body: `{"code":"123456","email":"alice@example.com"}`, wantStatus: http.StatusOK},
		{name: "missing code", body: `{"email":"alice@example.com"}`, wantStatus: http.StatusBadRequest},
		{name: "invalid code", body: `{"code":"000000"}`, err: domain.ErrInvalidCode, wantStatus: http.StatusBadRequest},
		{name: "unknown account", body: `{"code":"000000","email":"ghost@example.com"}`, err: domain.ErrAccountNotFound, wantStatus: http.StatusBadRequest},
		{name: "storage", body: `{"code":"123456"}`, err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := post(newRouter(&fakeVerifier{verifyErr: tt.err}), "/v1/auth/email/verify", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp.Success != (tt.wantStatus == http.StatusOK) {
				t.Errorf("success = %v", resp.Success)
			}
		})
	}
}

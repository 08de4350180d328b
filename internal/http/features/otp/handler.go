package otp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tendant/contextauth/internal/httputil"
	"github.com/tendant/contextauth/pkg/domain"
)

// LoginCodes issues and verifies login codes.
type LoginCodes interface {
	Request(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) (*domain.OTPAssertion, error)
}

// Handler handles login one-time code endpoints.
type Handler struct {
	logger *slog.Logger
	codes  LoginCodes
}

// NewHandler creates a new OTP handler.
func NewHandler(logger *slog.Logger, codes LoginCodes) *Handler {
	return &Handler{logger: logger, codes: codes}
}

// RequestCodeRequest represents a login code request.
type RequestCodeRequest struct {
	Email string `json:"email"`
}

// VerifyCodeRequest represents a login code verification.
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Response is the body of both endpoints.
type Response struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	OTPToken  string     `json:"otpToken,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// RequestCode sends a login code to the account email.
// POST /v1/auth/login-otp/request
func (h *Handler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req RequestCodeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	if req.Email == "" {
		httputil.JSON(w, http.StatusBadRequest, Response{Message: "Email is required"})
		return
	}

	err := h.codes.Request(r.Context(), req.Email)
	switch {
	case err == nil:
		httputil.JSON(w, http.StatusOK, Response{Success: true, Message: "Login code sent"})
	case errors.Is(err, domain.ErrInvalidEmail):
		httputil.JSON(w, http.StatusBadRequest, Response{Message: "Invalid email address"})
	case errors.Is(err, domain.ErrAccountNotFound):
		httputil.JSON(w, http.StatusNotFound, Response{Message: "Account not found"})
	case errors.Is(err, domain.ErrEmailNotVerified):
		httputil.JSON(w, http.StatusForbidden, Response{Message: "Email verification required"})
	case errors.Is(err, domain.ErrCodeRequestThrottled):
		httputil.JSON(w, http.StatusTooManyRequests, Response{Message: "A code was sent recently. Please wait before requesting another"})
	default:
		h.logger.Error("failed to send login code", "error", err)
		httputil.JSON(w, http.StatusInternalServerError, Response{Message: "Failed to send login code"})
	}
}

// VerifyCode checks a login code and returns a one-time login assertion.
// POST /v1/auth/login-otp/verify
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	if req.Email == "" || req.Code == "" {
		httputil.JSON(w, http.StatusBadRequest, Response{Message: "Email and code are required"})
		return
	}

	assertion, err := h.codes.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCode) {
			httputil.JSON(w, http.StatusBadRequest, Response{Message: "Invalid or expired code"})
			return
		}
		h.logger.Error("failed to verify login code", "error", err)
		httputil.JSON(w, http.StatusInternalServerError, Response{Message: "Failed to verify code"})
		return
	}

	expiresAt := assertion.ExpiresAt
	httputil.JSON(w, http.StatusOK, Response{
		Success:   true,
		Message:   "Code verified",
		OTPToken:  assertion.Token,
		ExpiresAt: &expiresAt,
	})
}

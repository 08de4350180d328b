package email

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tendant/contextauth/internal/httputil"
	"github.com/tendant/contextauth/pkg/domain"
)

// Verifier runs the email ownership flow.
type Verifier interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*domain.Account, error)
}

// Handler handles email verification endpoints.
type Handler struct {
	logger   *slog.Logger
	verifier Verifier
}

// NewHandler creates a new email verification handler.
func NewHandler(logger *slog.Logger, verifier Verifier) *Handler {
	return &Handler{logger: logger, verifier: verifier}
}

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Code  string `json:"code"`
	Email string `json:"email,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RequestCode sends an email verification code. The response does not
// reveal whether the address belongs to an account.
// POST /v1/auth/email/request
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

	if err := h.verifier.RequestCode(r.Context(), req.Email); err != nil {
		h.logger.Error("failed to send verification code", "error", err)
		httputil.JSON(w, http.StatusInternalServerError, Response{Message: "Failed to send verification code"})
		return
	}

	httputil.JSON(w, http.StatusOK, Response{
		Success: true,
		Message: "If the account exists and is not yet verified, a verification code has been sent",
	})
}

// VerifyCode consumes a verification code and marks the email verified.
// POST /v1/auth/email/verify
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	if req.Code == "" {
		httputil.JSON(w, http.StatusBadRequest, Response{Message: "Code is required"})
		return
	}

	account, err := h.verifier.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCode) || errors.Is(err, domain.ErrAccountNotFound) {
			httputil.JSON(w, http.StatusBadRequest, Response{Message: "Invalid verification code"})
			return
		}
		h.logger.Error("failed to verify email", "error", err)
		httputil.JSON(w, http.StatusInternalServerError, Response{Message: "Failed to verify email"})
		return
	}

	h.logger.Info("email verified", "user_id", account.ID)
	httputil.JSON(w, http.StatusOK, Response{Success: true, Message: "Email verified"})
}

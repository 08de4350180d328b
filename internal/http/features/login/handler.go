package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tendant/contextauth/internal/httputil"
	"github.com/tendant/contextauth/pkg/auth"
	"github.com/tendant/contextauth/pkg/domain"
)

// Authenticator runs a login attempt.
type Authenticator interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error)
}

// Handler handles the adaptive login endpoint.
type Handler struct {
	logger         *slog.Logger
	authenticator  Authenticator
	cookieConfig   httputil.CookieConfig
	accessTokenTTL time.Duration
}

// NewHandler creates a new login handler.
func NewHandler(logger *slog.Logger, authenticator Authenticator, cookieConfig httputil.CookieConfig, accessTokenTTL time.Duration) *Handler {
	return &Handler{
		logger:         logger,
		authenticator:  authenticator,
		cookieConfig:   cookieConfig,
		accessTokenTTL: accessTokenTTL,
	}
}

// ContextData is the device and location the client reports.
type ContextData struct {
	DeviceID string           `json:"deviceId"`
	Location *domain.Location `json:"location"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email       string       `json:"email"`
	Password    string       `json:"password"`
	ContextData *ContextData `json:"contextData"`
	OTPVerified bool         `json:"otpVerified"`
	OTPToken    string       `json:"otpToken"`
}

// LoginResponse is returned for both accepted and rejected logins.
type LoginResponse struct {
	Success        bool       `json:"success"`
	UserID         string     `json:"userId,omitempty"`
	Token          string     `json:"token,omitempty"`
	Role           string     `json:"role,omitempty"`
	Message        string     `json:"message,omitempty"`
	ForceLogout    bool       `json:"forceLogout,omitempty"`
	SuspendedUntil *time.Time `json:"suspendedUntil,omitempty"`
}

// Login handles an adaptive login.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	loginReq := auth.LoginRequest{
		Email:       req.Email,
		Password:    req.Password,
		OTPToken:    req.OTPToken,
		OTPVerified: req.OTPVerified,
	}
	if req.ContextData != nil {
		loginReq.DeviceID = req.ContextData.DeviceID
		loginReq.Location = req.ContextData.Location
	}

	result, err := h.authenticator.Login(r.Context(), loginReq)
	if err != nil {
		h.writeRejection(w, err)
		return
	}

	if !httputil.IsMobileClient(r) {
		httputil.SetAccessTokenCookie(w, result.Token.Token, h.accessTokenTTL, h.cookieConfig)
	}

	httputil.JSON(w, http.StatusOK, LoginResponse{
		Success: true,
		UserID:  result.Account.ID.String(),
		Token:   result.Token.Token,
		Role:    string(result.Account.Role),
	})
}

func (h *Handler) writeRejection(w http.ResponseWriter, err error) {
	var rej *auth.Rejection
	if !errors.As(err, &rej) {
		h.logger.Error("login failed", "error", err)
		httputil.JSON(w, http.StatusInternalServerError, LoginResponse{Message: "Login failed. Please try again later."})
		return
	}

	switch rej.Reason {
	case auth.ReasonSuspended, auth.ReasonHighRiskSuspended:
		resp := LoginResponse{
			ForceLogout: true,
			Message:     "Account suspended",
		}
		if rej.Until != nil {
			until := rej.Until.UTC()
			resp.SuspendedUntil = &until
			resp.Message = fmt.Sprintf("Account suspended until %s", until.Format(time.RFC3339))
		}
		httputil.JSON(w, http.StatusForbidden, resp)
		return
	}

	status, message := rejectionStatus(rej.Reason)
	httputil.JSON(w, status, LoginResponse{Message: message})
}

func rejectionStatus(reason auth.RejectReason) (int, string) {
	switch reason {
	case auth.ReasonBadInput:
		return http.StatusBadRequest, "Email and password are required"
	case auth.ReasonMissingContext:
		return http.StatusBadRequest, "Device and location information are required"
	case auth.ReasonNotFound:
		return http.StatusNotFound, "Account not found"
	case auth.ReasonUnverified:
		return http.StatusForbidden, "Email verification required"
	case auth.ReasonOTPRequired:
		return http.StatusForbidden, "One-time code verification required"
	case auth.ReasonBadCredentials:
		// Clients expect 400 here, not 401.
		return http.StatusBadRequest, "Invalid credentials"
	default:
		return http.StatusInternalServerError, "Login failed. Please try again later."
	}
}

package otp

import "github.com/go-chi/chi/v5"

// RegisterRequestRoutes registers the code request route.
func (h *Handler) RegisterRequestRoutes(r chi.Router) {
	r.Post("/v1/auth/login-otp/request", h.RequestCode)
}

// RegisterVerifyRoutes registers the code verification route.
func (h *Handler) RegisterVerifyRoutes(r chi.Router) {
	r.Post("/v1/auth/login-otp/verify", h.VerifyCode)
}

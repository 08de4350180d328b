package email

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers email verification routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/v1/auth/email/request", h.RequestCode)
	r.Post("/v1/auth/email/verify", h.VerifyCode)
}

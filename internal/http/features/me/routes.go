package me

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers user routes. r must already carry the auth
// middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/v1/me/login-history", h.GetLoginHistory)
}

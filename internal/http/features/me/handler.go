package me

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/contextauth/internal/http/middleware"
	"github.com/tendant/contextauth/internal/httputil"
	"github.com/tendant/contextauth/pkg/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// HistoryLister pages through a user's login history, newest first.
type HistoryLister interface {
	ListLoginHistory(ctx context.Context, userID uuid.UUID, cursor domain.HistoryCursor, limit int) ([]domain.LoginEvent, error)
}

// Handler handles endpoints about the authenticated user.
type Handler struct {
	logger  *slog.Logger
	history HistoryLister
}

// NewHandler creates a new me handler.
func NewHandler(logger *slog.Logger, history HistoryLister) *Handler {
	return &Handler{logger: logger, history: history}
}

// LoginHistoryResponse is one page of login history.
type LoginHistoryResponse struct {
	Entries []domain.LoginEvent `json:"entries"`
	// NextBefore and NextBeforeID are passed as ?before=&beforeId= to fetch
	// the next page. Empty on the last page.
	NextBefore   string `json:"nextBefore,omitempty"`
	NextBeforeID int64  `json:"nextBeforeId,omitempty"`
}

// GetLoginHistory returns the current user's login history.
// GET /v1/me/login-history?before=<RFC3339>&beforeId=<n>&limit=<n>
//
// A before without beforeId returns entries strictly older than before.
func (h *Handler) GetLoginHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var cursor domain.HistoryCursor
	if v := r.URL.Query().Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		cursor.OccurredAt = t
	}
	if v := r.URL.Query().Get("beforeId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 || cursor.IsZero() {
			httputil.Error(w, http.StatusBadRequest, "beforeId must be a non-negative integer given with before")
			return
		}
		cursor.ID = id
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.history.ListLoginHistory(r.Context(), userID, cursor, limit)
	if err != nil {
		h.logger.Error("failed to list login history", "user_id", userID, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to load login history")
		return
	}

	resp := LoginHistoryResponse{Entries: entries}
	if len(entries) == limit {
		next := entries[len(entries)-1].CursorAfter()
		resp.NextBefore = next.OccurredAt.UTC().Format(time.RFC3339Nano)
		resp.NextBeforeID = next.ID
	}
	httputil.JSON(w, http.StatusOK, resp)
}

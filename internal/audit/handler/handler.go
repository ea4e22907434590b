// Package handler exposes the audit trail read endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cycletracker/internal/audit"
	"cycletracker/internal/transport/http/shared"
	derrors "cycletracker/pkg/domain-errors"
)

const defaultLimit = 100

// Trail reads back recorded audit events.
type Trail interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler serves the audit trail.
type Handler struct {
	logger *slog.Logger
	trail  Trail
}

// New creates a new audit Handler.
func New(trail Trail, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, trail: trail}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit", h.handleList)
}

// handleList returns recent events, newest first, bounded by ?limit=.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			shared.WriteError(w, derrors.Newf(derrors.CodeBadRequest, "invalid limit %q", raw))
			return
		}
		limit = n
	}

	events, err := h.trail.List(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load audit trail", "error", err.Error())
		shared.WriteError(w, derrors.New(derrors.CodeInternal, "failed to load audit trail"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	shared.WriteJSON(w, http.StatusOK, events)
}

// Package handler exposes the observation vocabulary endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cycletracker/internal/transport/http/shared"
	derrors "cycletracker/pkg/domain-errors"
)

// Whitelist lists the accepted canonical observation strings in their
// presentation order.
type Whitelist interface {
	List(ctx context.Context) ([]string, error)
}

// Handler serves the valid observation list used to populate entry pickers.
type Handler struct {
	logger    *slog.Logger
	whitelist Whitelist
}

// New creates a new observation Handler.
func New(whitelist Whitelist, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, whitelist: whitelist}
}

// Register registers the observation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/valid-observations", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.whitelist.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load valid observations", "error", err.Error())
		shared.WriteError(w, derrors.New(derrors.CodeInternal, "failed to load valid observations"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}

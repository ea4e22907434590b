// Package handler exposes the cycle tracking HTTP endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cycletracker/internal/cycle/models"
	"cycletracker/internal/cycle/service"
	"cycletracker/internal/platform/middleware"
	"cycletracker/internal/transport/http/shared"
	derrors "cycletracker/pkg/domain-errors"
)

// Service defines the cycle operations the handler needs.
type Service interface {
	Current(ctx context.Context) (*service.CycleStatus, error)
	History(ctx context.Context) ([]*service.CycleStatus, error)
	Record(ctx context.Context, in service.RecordInput) (*models.Observation, error)
	CloseAndStartNext(ctx context.Context, closingCode string) (*service.CycleStatus, error)
	Stats(ctx context.Context, id *uuid.UUID) (*service.Stats, error)
}

// Handler handles the /cycle endpoints.
type Handler struct {
	logger *slog.Logger
	cycles Service
}

// New creates a new cycle Handler.
func New(cycles Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, cycles: cycles}
}

// Register registers the cycle routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/cycle", h.handleGetCycle)
	r.Patch("/cycle", h.handleRecordObservation)
	r.Post("/cycle", h.handleCloseCycle)
	r.Get("/cycle/stats", h.handleStats)
}

// handleGetCycle returns the current cycle, or the closed history with ?all=1.
func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Get("all") == "1" {
		history, err := h.cycles.History(ctx)
		if err != nil {
			h.writeError(ctx, w, err, "failed to load cycle history")
			return
		}
		if history == nil {
			history = []*service.CycleStatus{}
		}
		shared.WriteJSON(w, http.StatusOK, history)
		return
	}

	current, err := h.cycles.Current(ctx)
	if err != nil {
		h.writeError(ctx, w, err, "failed to load current cycle")
		return
	}
	shared.WriteJSON(w, http.StatusOK, current)
}

type recordObservationRequest struct {
	CycleID   *uuid.UUID `json:"cycleId,omitempty"`
	DayNumber int        `json:"dayNumber,omitempty"`
	Date      string     `json:"date"`
	Code      string     `json:"observation"`
}

// handleRecordObservation upserts one day's entry on the current cycle, or on
// a historical cycle when cycleId is given.
func (h *Handler) handleRecordObservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recordObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		shared.WriteError(w, derrors.Newf(derrors.CodeBadRequest, "invalid date %q", req.Date))
		return
	}

	obs, err := h.cycles.Record(ctx, service.RecordInput{
		CycleID:   req.CycleID,
		DayNumber: req.DayNumber,
		Date:      date,
		Code:      req.Code,
	})
	if err != nil {
		h.writeError(ctx, w, err, "failed to record observation")
		return
	}
	shared.WriteJSON(w, http.StatusOK, obs)
}

type closeCycleRequest struct {
	Code string `json:"observation,omitempty"`
}

// handleCloseCycle ends the current cycle and starts the next one. On first
// use, when nothing is tracked yet, it starts the first cycle instead.
func (h *Handler) handleCloseCycle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req closeCycleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	next, err := h.cycles.CloseAndStartNext(ctx, req.Code)
	if err != nil {
		h.writeError(ctx, w, err, "failed to close cycle")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, next)
}

// handleStats summarizes the current cycle, or ?cycleId=<uuid>.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cycleID *uuid.UUID
	if raw := r.URL.Query().Get("cycleId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.WriteError(w, derrors.Newf(derrors.CodeBadRequest, "invalid cycle id %q", raw))
			return
		}
		cycleID = &id
	}

	stats, err := h.cycles.Stats(ctx, cycleID)
	if err != nil {
		h.writeError(ctx, w, err, "failed to compute cycle stats")
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	requestID := middleware.GetRequestID(ctx)
	if derrors.CodeOf(err) == derrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err.Error())
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err.Error())
	}
	shared.WriteError(w, err)
}

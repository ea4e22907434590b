// Package service orchestrates cycle tracking: reading the current cycle,
// recording daily observations, and the close-and-start transition.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"cycletracker/internal/audit"
	"cycletracker/internal/cycle/metrics"
	"cycletracker/internal/cycle/models"
	"cycletracker/internal/observation"
	derrors "cycletracker/pkg/domain-errors"
	"cycletracker/pkg/platform/sentinel"
	"cycletracker/pkg/requestcontext"
)

// Store is the persistence contract the service consumes.
type Store interface {
	CreateCycle(ctx context.Context, startDate models.Date) (*models.Cycle, error)
	FindCurrent(ctx context.Context) (*models.Cycle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cycle, error)
	FindAllClosed(ctx context.Context) ([]*models.Cycle, error)
	UpsertObservation(ctx context.Context, cycleID uuid.UUID, obs models.Observation) error
	CloseAndStartNext(ctx context.Context, cycleID uuid.UUID, endDate, nextStart models.Date) (*models.Cycle, error)
}

// CodeValidator canonicalizes raw observation strings, rejecting entries the
// whitelist does not accept.
type CodeValidator interface {
	ValidateString(ctx context.Context, raw string) (string, error)
}

// AuditPublisher records tracking actions on the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CycleStatus is a cycle together with its derived current day number: the
// cycle-relative day of today for the open cycle, the final length for closed
// ones.
type CycleStatus struct {
	*models.Cycle
	CurrentDay int `json:"currentDay"`
}

// Stats summarizes a cycle for the stats view: how long it is and how its
// recorded days split across observation families.
type Stats struct {
	CycleID       uuid.UUID `json:"cycleId"`
	Length        int       `json:"length"`
	RecordedDays  int       `json:"recordedDays"`
	PeriodDays    int       `json:"periodDays"`
	DryDays       int       `json:"dryDays"`
	DischargeDays int       `json:"dischargeDays"`
}

// Service orchestrates cycle lifecycle and observation recording.
type Service struct {
	store     Store
	validator CodeValidator
	logger    *slog.Logger
	publisher AuditPublisher
	metrics   *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store Store, validator CodeValidator, opts ...Option) *Service {
	s := &Service{store: store, validator: validator, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the open cycle with its observations.
func (s *Service) Current(ctx context.Context) (*CycleStatus, error) {
	c, err := s.store.FindCurrent(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "no cycle is being tracked yet")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load current cycle")
	}
	return s.status(ctx, c), nil
}

// History returns all closed cycles, newest first.
func (s *Service) History(ctx context.Context) ([]*CycleStatus, error) {
	cycles, err := s.store.FindAllClosed(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load cycle history")
	}
	statuses := make([]*CycleStatus, 0, len(cycles))
	for _, c := range cycles {
		statuses = append(statuses, s.status(ctx, c))
	}
	return statuses, nil
}

// RecordInput describes one daily entry. CycleID targets a historical cycle;
// when nil the entry goes to the current cycle. DayNumber may be zero, in
// which case it is derived from Date.
type RecordInput struct {
	CycleID   *uuid.UUID
	DayNumber int
	Date      models.Date
	Code      string
}

// Record validates and upserts a single day's observation. Re-recording a day
// overwrites the previous entry.
func (s *Service) Record(ctx context.Context, in RecordInput) (*models.Observation, error) {
	if in.Date.IsZero() {
		return nil, derrors.New(derrors.CodeBadRequest, "date is required")
	}
	code, err := s.validator.ValidateString(ctx, in.Code)
	if err != nil {
		return nil, err
	}

	cycle, err := s.resolveCycle(ctx, in.CycleID)
	if err != nil {
		return nil, err
	}

	dayNumber := in.DayNumber
	if dayNumber == 0 {
		dayNumber = cycle.DayNumberFor(in.Date)
	}
	if dayNumber < 1 {
		return nil, derrors.Newf(derrors.CodeBadRequest,
			"date %s is before the cycle start %s", in.Date, cycle.StartDate)
	}
	// The stored date is derived from the day number, so an explicit day
	// number must agree with the date and all bounds apply to the resolved
	// date, not the supplied one.
	resolved := cycle.DateForDay(dayNumber)
	if !resolved.Equal(in.Date) {
		return nil, derrors.Newf(derrors.CodeBadRequest,
			"day %d of this cycle is %s, not %s", dayNumber, resolved, in.Date)
	}
	if cycle.Open() {
		today := models.DateOf(requestcontext.Now(ctx))
		if resolved.After(today) {
			return nil, derrors.Newf(derrors.CodeBadRequest, "cannot record a future date %s", resolved)
		}
	} else if cycle.EndDate != nil && resolved.After(*cycle.EndDate) {
		return nil, derrors.Newf(derrors.CodeBadRequest,
			"day %d is past the end of the cycle", dayNumber)
	}

	obs := models.Observation{
		DayNumber: dayNumber,
		Date:      resolved,
		Code:      code,
	}
	if err := s.store.UpsertObservation(ctx, cycle.ID, obs); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "cycle not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to record observation")
	}

	s.logger.Info("observation recorded",
		"cycle_id", cycle.ID, "day_number", dayNumber, "observation", code)
	s.emit(ctx, audit.Event{
		Kind:      audit.KindObservationRecorded,
		CycleID:   cycle.ID,
		DayNumber: dayNumber,
		Code:      code,
	})
	if s.metrics != nil {
		s.metrics.IncrementObservationsRecorded()
	}
	return &obs, nil
}

// CloseAndStartNext ends the current cycle and opens the next one. The
// closing observation, when given, is recorded on today's entry first. The
// closed cycle ends on its last recorded day (its start date when nothing was
// recorded) and the next cycle starts the following day.
//
// When nothing is being tracked yet this bootstraps the first cycle instead,
// starting today.
func (s *Service) CloseAndStartNext(ctx context.Context, closingCode string) (*CycleStatus, error) {
	today := models.DateOf(requestcontext.Now(ctx))

	current, err := s.store.FindCurrent(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.bootstrap(ctx, today, closingCode)
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load current cycle")
	}

	if closingCode != "" {
		if _, err := s.Record(ctx, RecordInput{Date: today, Code: closingCode}); err != nil {
			return nil, err
		}
		// Re-read so the end date sees the entry just written.
		current, err = s.store.FindByID(ctx, current.ID)
		if err != nil {
			return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to reload current cycle")
		}
	}

	endDate := current.StartDate
	if last, ok := current.LastFilled(); ok {
		endDate = last.Date
	}
	next, err := s.store.CloseAndStartNext(ctx, current.ID, endDate, endDate.AddDays(1))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState), errors.Is(err, sentinel.ErrConflict):
			return nil, derrors.New(derrors.CodeConflict, "cycle was already closed")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, derrors.New(derrors.CodeNotFound, "cycle not found")
		default:
			return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to close cycle")
		}
	}

	s.logger.Info("cycle closed",
		"cycle_id", current.ID, "end_date", endDate, "next_cycle_id", next.ID)
	s.emit(ctx, audit.Event{Kind: audit.KindCycleClosed, CycleID: current.ID})
	s.emit(ctx, audit.Event{Kind: audit.KindCycleStarted, CycleID: next.ID})
	if s.metrics != nil {
		s.metrics.IncrementCyclesClosed()
	}
	return s.status(ctx, next), nil
}

// Stats summarizes the current cycle, or a specific cycle when id is given.
func (s *Service) Stats(ctx context.Context, id *uuid.UUID) (*Stats, error) {
	cycle, err := s.resolveCycle(ctx, id)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		CycleID: cycle.ID,
		Length:  cycle.CurrentDay(models.DateOf(requestcontext.Now(ctx))),
	}
	for _, obs := range cycle.Observations {
		if !obs.Filled() {
			continue
		}
		st.RecordedDays++
		switch observation.FamilyOf(obs.Code) {
		case observation.FamilyPeriod:
			st.PeriodDays++
		case observation.FamilyDry:
			st.DryDays++
		case observation.FamilyDischarge:
			st.DischargeDays++
		}
	}
	return st, nil
}

func (s *Service) bootstrap(ctx context.Context, today models.Date, code string) (*CycleStatus, error) {
	first, err := s.store.CreateCycle(ctx, today)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, derrors.New(derrors.CodeConflict, "a cycle is already open")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to start first cycle")
	}
	s.logger.Info("first cycle started", "cycle_id", first.ID, "start_date", first.StartDate)
	s.emit(ctx, audit.Event{Kind: audit.KindCycleStarted, CycleID: first.ID})

	if code != "" {
		if _, err := s.Record(ctx, RecordInput{Date: today, Code: code}); err != nil {
			return nil, err
		}
		first, err = s.store.FindByID(ctx, first.ID)
		if err != nil {
			return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to reload first cycle")
		}
	}
	return s.status(ctx, first), nil
}

func (s *Service) resolveCycle(ctx context.Context, id *uuid.UUID) (*models.Cycle, error) {
	var cycle *models.Cycle
	var err error
	if id != nil {
		cycle, err = s.store.FindByID(ctx, *id)
	} else {
		cycle, err = s.store.FindCurrent(ctx)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, derrors.New(derrors.CodeNotFound, "cycle not found")
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load cycle")
	}
	return cycle, nil
}

func (s *Service) status(ctx context.Context, c *models.Cycle) *CycleStatus {
	today := models.DateOf(requestcontext.Now(ctx))
	return &CycleStatus{Cycle: c, CurrentDay: c.CurrentDay(today)}
}

// emit never fails the user operation; audit problems are logged and dropped.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.Error("failed to emit audit event", "kind", event.Kind, "error", err)
	}
}

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"cycletracker/internal/cycle/models"
	"cycletracker/pkg/platform/sentinel"
)

// InMemory keeps cycles in process memory. It is the development and test
// store; it enforces the same invariants as the Postgres store, including the
// single-open-cycle rule and the atomicity of the close-and-start transition.
type InMemory struct {
	mu     sync.RWMutex
	cycles map[uuid.UUID]*cycleRecord
}

type cycleRecord struct {
	id           uuid.UUID
	startDate    models.Date
	endDate      *models.Date
	observations map[int]models.Observation
}

func NewInMemory() *InMemory {
	return &InMemory{cycles: make(map[uuid.UUID]*cycleRecord)}
}

func (s *InMemory) CreateCycle(_ context.Context, startDate models.Date) (*models.Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openCycleLocked() != nil {
		return nil, sentinel.ErrConflict
	}
	rec := &cycleRecord{
		id:           uuid.New(),
		startDate:    startDate,
		observations: make(map[int]models.Observation),
	}
	s.cycles[rec.id] = rec
	return rec.snapshot(), nil
}

func (s *InMemory) FindCurrent(_ context.Context) (*models.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec := s.openCycleLocked(); rec != nil {
		return rec.snapshot(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.cycles[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.snapshot(), nil
}

func (s *InMemory) FindAllClosed(_ context.Context) ([]*models.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var closed []*models.Cycle
	for _, rec := range s.cycles {
		if rec.endDate != nil {
			closed = append(closed, rec.snapshot())
		}
	}
	// Newest first.
	sort.Slice(closed, func(i, j int) bool {
		return closed[j].StartDate.Before(closed[i].StartDate)
	})
	return closed, nil
}

func (s *InMemory) FindObservation(_ context.Context, cycleID uuid.UUID, dayNumber int) (*models.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.cycles[cycleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	obs, ok := rec.observations[dayNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &obs, nil
}

func (s *InMemory) UpsertObservation(_ context.Context, cycleID uuid.UUID, obs models.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.cycles[cycleID]
	if !ok {
		return sentinel.ErrNotFound
	}
	rec.observations[obs.DayNumber] = obs
	return nil
}

func (s *InMemory) UpdateCycleEndDate(_ context.Context, cycleID uuid.UUID, endDate models.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked(cycleID, endDate)
}

// CloseAndStartNext closes the given cycle and opens the next one as a single
// atomic step, refusing when the cycle was already closed by a concurrent
// transition.
func (s *InMemory) CloseAndStartNext(_ context.Context, cycleID uuid.UUID, endDate, nextStart models.Date) (*models.Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.closeLocked(cycleID, endDate); err != nil {
		return nil, err
	}
	next := &cycleRecord{
		id:           uuid.New(),
		startDate:    nextStart,
		observations: make(map[int]models.Observation),
	}
	s.cycles[next.id] = next
	return next.snapshot(), nil
}

func (s *InMemory) closeLocked(cycleID uuid.UUID, endDate models.Date) error {
	rec, ok := s.cycles[cycleID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if rec.endDate != nil {
		return sentinel.ErrInvalidState
	}
	rec.endDate = &endDate
	return nil
}

func (s *InMemory) openCycleLocked() *cycleRecord {
	for _, rec := range s.cycles {
		if rec.endDate == nil {
			return rec
		}
	}
	return nil
}

func (r *cycleRecord) snapshot() *models.Cycle {
	c := &models.Cycle{
		ID:        r.id,
		StartDate: r.startDate,
	}
	if r.endDate != nil {
		end := *r.endDate
		c.EndDate = &end
	}
	for _, obs := range r.observations {
		c.Observations = append(c.Observations, obs)
	}
	sort.Slice(c.Observations, func(i, j int) bool {
		return c.Observations[i].DayNumber < c.Observations[j].DayNumber
	})
	return c
}

package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"cycletracker/internal/cycle/models"
	"cycletracker/internal/cycle/service"
	"cycletracker/internal/cycle/store"
	"cycletracker/internal/observation"
	"cycletracker/internal/observation/whitelist"
	"cycletracker/pkg/requestcontext"
)

type CycleHandlerSuite struct {
	suite.Suite
	store  *store.InMemory
	router chi.Router
}

func TestCycleHandlerSuite(t *testing.T) {
	suite.Run(t, new(CycleHandlerSuite))
}

func (s *CycleHandlerSuite) SetupTest() {
	s.store = store.NewInMemory()
	validator := observation.NewValidator(whitelist.Default())
	svc := service.New(s.store, validator,
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	s.router = chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

// do sends a request with request time pinned to the given day.
func (s *CycleHandlerSuite) do(method, target string, body any, year int, month time.Month, day int) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := requestcontext.WithTime(req.Context(),
		time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *CycleHandlerSuite) seedCycle(year int, month time.Month, day int) *models.Cycle {
	c, err := s.store.CreateCycle(s.T().Context(), models.NewDate(year, month, day))
	s.Require().NoError(err)
	return c
}

func (s *CycleHandlerSuite) TestGetCycle() {
	s.Run("404 before any cycle exists", func() {
		w := s.do(http.MethodGet, "/cycle", nil, 2025, time.May, 15)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("returns the current cycle with its day number", func() {
		s.SetupTest()
		s.seedCycle(2025, time.May, 15)

		w := s.do(http.MethodGet, "/cycle", nil, 2025, time.May, 17)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("2025-05-15", resp["startDate"])
		s.Nil(resp["endDate"])
		s.Equal(float64(3), resp["currentDay"])
	})

	s.Run("all=1 lists closed cycles", func() {
		s.SetupTest()
		c := s.seedCycle(2025, time.May, 15)
		_, err := s.store.CloseAndStartNext(s.T().Context(), c.ID,
			models.NewDate(2025, time.June, 8), models.NewDate(2025, time.June, 9))
		s.Require().NoError(err)

		w := s.do(http.MethodGet, "/cycle?all=1", nil, 2025, time.June, 10)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp []map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Require().Len(resp, 1)
		s.Equal("2025-06-08", resp[0]["endDate"])
	})
}

func (s *CycleHandlerSuite) TestRecordObservation() {
	s.Run("records an entry for a date", func() {
		s.seedCycle(2025, time.May, 15)

		w := s.do(http.MethodPatch, "/cycle", map[string]any{
			"date":        "2025-05-17",
			"observation": "6P X1",
		}, 2025, time.May, 17)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal(float64(3), resp["dayNumber"])
		s.Equal("6P X1", resp["observation"])
	})

	s.Run("rejects an off-list observation", func() {
		s.SetupTest()
		s.seedCycle(2025, time.May, 15)

		w := s.do(http.MethodPatch, "/cycle", map[string]any{
			"date":        "2025-05-17",
			"observation": "6 X1",
		}, 2025, time.May, 17)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects a malformed date", func() {
		s.SetupTest()
		s.seedCycle(2025, time.May, 15)

		w := s.do(http.MethodPatch, "/cycle", map[string]any{
			"date":        "17/05/2025",
			"observation": "H",
		}, 2025, time.May, 17)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects a garbled body", func() {
		s.SetupTest()
		s.seedCycle(2025, time.May, 15)

		req := httptest.NewRequest(http.MethodPatch, "/cycle", bytes.NewReader([]byte("{")))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *CycleHandlerSuite) TestCloseCycle() {
	s.Run("closes the current cycle and returns the next", func() {
		s.seedCycle(2025, time.May, 15)

		w := s.do(http.MethodPost, "/cycle", map[string]any{
			"observation": "H",
		}, 2025, time.June, 8)
		s.Require().Equal(http.StatusCreated, w.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("2025-06-09", resp["startDate"])
		s.Nil(resp["endDate"])
	})

	s.Run("empty body starts the first cycle on first use", func() {
		s.SetupTest()

		w := s.do(http.MethodPost, "/cycle", nil, 2025, time.May, 15)
		s.Require().Equal(http.StatusCreated, w.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("2025-05-15", resp["startDate"])
	})
}

func (s *CycleHandlerSuite) TestStats() {
	s.Run("summarizes the current cycle", func() {
		s.seedCycle(2025, time.May, 15)
		for _, day := range []struct {
			date string
			code string
		}{
			{"2025-05-15", "H"},
			{"2025-05-16", "0 X1"},
			{"2025-05-17", "8C X2"},
		} {
			w := s.do(http.MethodPatch, "/cycle", map[string]any{
				"date":        day.date,
				"observation": day.code,
			}, 2025, time.May, 18)
			s.Require().Equal(http.StatusOK, w.Code)
		}

		w := s.do(http.MethodGet, "/cycle/stats", nil, 2025, time.May, 18)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal(float64(4), resp["length"])
		s.Equal(float64(3), resp["recordedDays"])
		s.Equal(float64(1), resp["periodDays"])
		s.Equal(float64(1), resp["dryDays"])
		s.Equal(float64(1), resp["dischargeDays"])
	})

	s.Run("rejects a malformed cycle id", func() {
		s.SetupTest()
		s.seedCycle(2025, time.May, 15)

		w := s.do(http.MethodGet, "/cycle/stats?cycleId=nope", nil, 2025, time.May, 18)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

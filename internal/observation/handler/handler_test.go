package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cycletracker/internal/observation/whitelist"
	"cycletracker/pkg/testutil"
)

func TestHandleList(t *testing.T) {
	r := chi.NewRouter()
	New(whitelist.Default(), slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)

	rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/valid-observations", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	entries := testutil.UnmarshalResponse[[]string](t, rr)
	require.NotEmpty(t, *entries)

	// Order matters: the list drives the entry picker top to bottom.
	assert.Equal(t, "H", (*entries)[0])
	assert.Equal(t, "M", (*entries)[1])
	assert.Contains(t, *entries, "6P X1")
	assert.Contains(t, *entries, "B 10KL AD")
}

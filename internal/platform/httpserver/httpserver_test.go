package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	handler := http.NewServeMux()
	srv := New(":9090", handler, 2*time.Second)

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 2*time.Second, srv.ReadHeaderTimeout)
}

func TestNewDefaultsReadHeaderTimeout(t *testing.T) {
	srv := New(":9090", http.NewServeMux(), 0)

	assert.Equal(t, defaultReadHeaderTimeout, srv.ReadHeaderTimeout)
}

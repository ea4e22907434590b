// Package httpserver constructs the process HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

const defaultReadHeaderTimeout = 5 * time.Second

// New builds the server for the cycle tracking API. readHeaderTimeout bounds
// clients that stall while sending headers; per-request deadlines are handled
// by the timeout middleware, not here.
func New(addr string, handler http.Handler, readHeaderTimeout time.Duration) *http.Server {
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// Package shared holds the JSON response helpers used by every handler so the
// error envelope stays uniform across features.
package shared

import (
	"encoding/json"
	"net/http"

	derrors "cycletracker/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError translates a domain error into an HTTP response. Non-domain
// errors become opaque 500s so internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	WriteJSON(w, derrors.ToHTTPStatus(code), ErrorResponse{
		Error:   string(code),
		Message: derrors.MessageOf(err),
	})
}

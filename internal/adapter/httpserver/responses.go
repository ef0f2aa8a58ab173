// Package httpserver contains HTTP handlers and middleware.
//
// It exposes the submission intake endpoint and the read-side endpoints for
// grading and profile display, keeping HTTP concerns separate from the
// pipeline's business logic.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greenboard/eco-intake/internal/domain"
)

// errorEnvelope is the failure body. Error carries the human-readable
// message as a plain string; Code and Details are machine-readable extras.
type errorEnvelope struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, _ *http.Request, err error, details interface{}) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
		codeStr = "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
		codeStr = "CONFLICT"
	}
	writeJSON(w, code, errorEnvelope{Error: err.Error(), Code: codeStr, Details: details})
}

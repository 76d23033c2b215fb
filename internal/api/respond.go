package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"nutriapi/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v and writes it with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps store errors to status codes. Storage failures surface as
// a generic message; details stay in the log.
func writeError(w http.ResponseWriter, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, "record not found"
	case errors.Is(err, store.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, store.ErrStorageUnavailable):
		status, msg = http.StatusServiceUnavailable, "storage unavailable"
		log.Error().Err(err).Msg("Storage failure")
	default:
		status, msg = http.StatusInternalServerError, "internal error"
		log.Error().Err(err).Msg("Request failed")
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

// writeBadRequest reports a request validation failure
func writeBadRequest(w http.ResponseWriter, format string, args ...interface{}) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// decode reads the request body into v
func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// conflictf builds an ErrConflict with a caller-facing message
func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, store.ErrConflict)...)
}

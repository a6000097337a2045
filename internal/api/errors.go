package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/homecast/internal/command"
	"github.com/nerrad567/homecast/internal/executor"
)

// Error is the body of every error response.
type Error struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes not covered by executor or parse error kinds.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeInternal    = "internal_error"
	ErrCodeUnavailable = "unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  string(executor.StatusError),
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// actionStatus maps an executor error kind to an HTTP status.
func actionStatus(kind executor.ErrorKind) int {
	switch kind {
	case executor.TargetNotFound:
		return http.StatusNotFound
	case executor.AmbiguousTarget, executor.UnsupportedAction:
		return http.StatusBadRequest
	case executor.BridgeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeActionError writes the response for a failed execution.
func writeActionError(w http.ResponseWriter, err *executor.ActionError) {
	writeError(w, actionStatus(err.Kind), string(err.Kind), err.Error())
}

// writeParseError writes a 400 response for a command that did not parse.
func writeParseError(w http.ResponseWriter, err error) {
	var pe *command.ParseError
	if errors.As(err, &pe) {
		writeError(w, http.StatusBadRequest, string(pe.Kind), pe.Error())
		return
	}
	writeBadRequest(w, err.Error())
}

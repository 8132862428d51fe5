package rest

import (
	"encoding/json"
	"net/http"

	zlog "github.com/rs/zerolog/log"
)

// Error codes returned in the error envelope.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInternal     = "internal_error"
)

// Error is the JSON envelope for all non-2xx responses.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, e Error) {
	writeJSON(w, e.Status, map[string]Error{"error": e})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, Error{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message})
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message})
}

func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, Error{Status: http.StatusConflict, Code: CodeConflict, Message: message})
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: message})
}

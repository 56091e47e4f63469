package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ridepoolapp/backend/internal/domain"
)

// ErrorResponse is the JSON error body shared by every endpoint.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto the HTTP status + body convention:
// 404 for ErrNotFound, 422 for ErrValidation, 409 for ErrConflict, and 500
// (with a generic body) for anything unexpected.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "not_found", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: ErrorDetail{Code: "conflict", Message: unwrapMessage(err)},
		})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "internal_error", Message: "internal server error"},
		})
	}
}

// writeRequestError rejects a request before it reaches the service layer
// (missing or malformed body, bad path parameter).
func writeRequestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error: ErrorDetail{Code: "validation_error", Message: message},
	})
}

// writeUnauthorized rejects a request that needs an identity but has none.
func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error: ErrorDetail{Code: "unauthorized", Message: "authentication required"},
	})
}

// unwrapMessage extracts the human-readable tail from a wrapped sentinel
// error, e.g. "service.TripService.Create: validation error: origin is
// required" → "origin is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []string{"validation error: ", "conflict: ", "not found: "} {
		if i := strings.LastIndex(msg, marker); i >= 0 {
			return msg[i+len(marker):]
		}
	}
	// Sentinel with no detail: drop any wrap prefixes.
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

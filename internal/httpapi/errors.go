package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskflow/core/internal/domain"
)

// errorBody is the error envelope returned on every non-2xx response
// (spec §6.1/§7): {"error":{"code","message","details?":[{field,message}],"correlationId"}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// fieldError is one entry of the details array: a single field-level
// validation failure.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorDetail struct {
	Code          string       `json:"code"`
	Message       string       `json:"message"`
	Details       []fieldError `json:"details,omitempty"`
	CorrelationID string       `json:"correlationId"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []fieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{
		Code:          code,
		Message:       message,
		Details:       details,
		CorrelationID: GetCorrelationID(r.Context()),
	}})
}

// writeDomainError maps a typed domain error to its HTTP status/code per
// spec §7 (never by string-matching the error text).
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *domain.InvalidOperationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	case errors.Is(err, domain.ErrConcurrencyConflict):
		writeError(w, r, http.StatusConflict, "CONCURRENCY_CONFLICT", "resource was modified concurrently", nil)
	case errors.As(err, &invalid):
		writeError(w, r, http.StatusBadRequest, "INVALID_OPERATION", invalid.Reason, nil)
	case errors.Is(err, domain.ErrInvalidOperation):
		writeError(w, r, http.StatusBadRequest, "INVALID_OPERATION", "invalid operation", nil)
	default:
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func writeValidationError(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", message, nil)
}

// writeFieldValidationError reports a 400 VALIDATION_ERROR with a
// single field-level detail entry.
func writeFieldValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", message, []fieldError{{Field: field, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package handler implements the HTTP layer: request parsing, response
// writing, and nothing else. Business rules live in the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/eventhub/internal/apperror"
)

// ErrorResponse is the standard error envelope returned by all API
// endpoints. Every failure, whatever its status code, has this shape:
//
//	{"error": "not_found", "message": "event not found with id abc123"}
//
// A machine-readable code plus a human-readable message, so clients can
// branch on the former and display the latter.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be written before the body — once Encode starts writing,
// header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and sends the standard
// envelope. This is the single place where the apperror taxonomy meets
// HTTP status codes:
//
//	ErrValidation        → 400 validation_error
//	ErrUnauthenticated   → 401 unauthenticated
//	ErrForbidden         → 403 forbidden
//	ErrNotFound          → 404 not_found
//	ErrConflict          → 409 conflict
//	ErrInsufficientStock → 409 insufficient_tickets
//	anything else        → 500 internal_error (detail logged, not leaked)
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
			errorType = "unauthenticated"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrInsufficientStock):
			status = http.StatusConflict
			errorType = "insufficient_tickets"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — the raw message might contain SQL or file paths, so
	// the client gets a generic 500 and the detail stays in the logs.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

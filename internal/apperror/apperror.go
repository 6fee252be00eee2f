// Package apperror defines the domain error taxonomy shared by every layer.
//
// The service layer returns these errors; the HTTP handlers translate them
// to status codes at the boundary (see handler/response.go). No other layer
// knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure category. Callers test for them with
// errors.Is; the handler layer maps each to exactly one HTTP status.
var (
	ErrValidation        = errors.New("validation failed")    // 400
	ErrUnauthenticated   = errors.New("unauthenticated")      // 401
	ErrForbidden         = errors.New("forbidden")            // 403
	ErrNotFound          = errors.New("not found")            // 404
	ErrConflict          = errors.New("conflict")             // 409
	ErrInsufficientStock = errors.New("insufficient tickets") // 409
)

// AppError carries a sentinel category plus a human-readable message.
type AppError struct {
	Err     error  // sentinel category (one of the Err* vars above)
	Message string // human-readable error message
	Field   string // optional: the input field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound returns an AppError for an unknown entity id.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed returns an AppError for missing or malformed input.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict returns an AppError for a business-rule violation, e.g. deleting
// an event that still has bookings.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthenticated returns an AppError for a missing, malformed, or expired
// credential. HTTP handlers map this to 401 Unauthorized.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller is authenticated but
// lacks permission. HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InsufficientStock returns an AppError for a booking that asked for more
// tickets than remain. The remaining count is carried in the message so the
// client can show the user how many are actually left.
func InsufficientStock(requested, remaining int) *AppError {
	return &AppError{
		Err:     ErrInsufficientStock,
		Message: fmt.Sprintf("requested %d tickets but only %d remain", requested, remaining),
	}
}

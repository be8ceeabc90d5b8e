package apperrors

import (
	"errors"
	"fmt"

	"github.com/Skotchmaster/lab_management/internal/models"
)

var (
	ErrInvalidInterval = errors.New("start time must be before end time")

	ErrResourceNotFound = errors.New("resource not found")

	// ErrInvalidToken is terminal for the request; the caller must
	// re-authenticate. It is never retried.
	ErrInvalidToken = errors.New("invalid token")

	// ErrStorageUnavailable wraps transient store failures. It is the only
	// retryable kind; retries with backoff are the caller's responsibility.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrAlreadyExists = errors.New("already exists")

	ErrInvalidTransition = errors.New("invalid status transition")
)

// ConflictError reports every existing booking that overlaps a requested
// interval, so callers can present full conflict detail.
type ConflictError struct {
	Bookings []models.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot is already booked (%d conflicting bookings)", len(e.Bookings))
}

func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no negotiation exists for the given id.
	ErrNotFound = errors.New("negotiation not found")

	// ErrAlreadyExists is returned by a store create when the id is taken.
	ErrAlreadyExists = errors.New("negotiation already exists")

	// ErrConcurrencyConflict is returned when a conditional write supplied
	// a version that no longer matches the stored record. The caller must
	// re-read and may retry the same logical event against the fresh
	// version; it must not blindly resend.
	ErrConcurrencyConflict = errors.New("negotiation version conflict")

	// ErrAdvisorUnavailable wraps transport or model failures from the
	// strategy advisor. No state has been persisted when it is returned.
	ErrAdvisorUnavailable = errors.New("strategy advisor unavailable")

	// ErrDeliveryFailed wraps notifier failures. No state has been
	// persisted when it is returned, so the operation is safe to retry.
	ErrDeliveryFailed = errors.New("offer delivery failed")

	// ErrBookingFailed wraps booking initiator failures. The negotiation
	// is already ACCEPTED with BookingTriggered set when it is returned;
	// retrying the accept does not re-invoke booking.
	ErrBookingFailed = errors.New("booking creation failed")
)

// InvalidTransitionError reports an event that is not legal for the
// negotiation's current status. The record is untouched; the caller should
// inspect the current status before deciding what to do. Rejecting these
// outright is what keeps a stale or duplicate broker callback from
// corrupting an already-resolved negotiation.
type InvalidTransitionError struct {
	Status Status
	Event  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: event %q not allowed in status %s", e.Event, e.Status)
}

// ValidationError reports malformed input rejected before any side effect.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

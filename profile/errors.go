package profile

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrChangeSetMalformed is returned when a submitted change-set cannot be
	// decoded into the canonical shape.
	ErrChangeSetMalformed = errors.New("change-set malformed")

	// ErrProfileNotFound is returned when an employee has no stored profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrNotPending is returned by backends when a decision targets a request
	// that already reached a terminal status.
	ErrNotPending = errors.New("request is not pending")

	// ErrInvalidTransition is returned when a status move violates the
	// PENDING -> APPROVED | REJECTED machine.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// IsNotFound returns true if the error indicates a missing profile or request.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}

// IsConflict returns true if the error indicates a request that can no longer
// be decided.
func IsConflict(err error) bool {
	return errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrInvalidTransition)
}

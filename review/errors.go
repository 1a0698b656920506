package review

import (
	"errors"
	"fmt"

	"github.com/warp/profile-review/profile"
)

var (
	// ErrEmptyComment is returned when a rejection carries no admin comment.
	ErrEmptyComment = errors.New("rejection requires a comment")

	// ErrReloadFailed is returned alongside a successful decision when the
	// pending list could not be refreshed afterwards.
	ErrReloadFailed = errors.New("pending list reload failed")
)

// ValidationError is a local precondition failure. No collaborator is called
// when one is returned.
type ValidationError struct {
	RequestID string
	Field     string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request %s: invalid %s: %v", e.RequestID, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failed approve/reject call. The request stays
// PENDING; retrying is up to the operator.
type TransportError struct {
	Workflow  Workflow
	Op        string
	RequestID string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Workflow, e.Op, e.RequestID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsClientError returns true if the error is due to caller input rather than
// a failing collaborator.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyComment) ||
		profile.IsNotFound(err) ||
		profile.IsConflict(err)
}

// Package store defines the persistence contract shared by the memory, SQLite
// and PostgreSQL backends.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/review"
)

// ErrInvalidRequest is returned when a submitted record is missing required
// data. Nothing is written.
var ErrInvalidRequest = errors.New("invalid request")

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is everything the review service needs from a backend. Decisions
// only succeed on PENDING records; a decided or missing record yields
// profile.ErrNotPending or profile.ErrRequestNotFound.
type Store interface {
	review.ProfileFetcher
	review.UpdateRequestSource
	review.HolidayRequestSource

	// SaveProfile creates or replaces an employee's baseline, including its
	// addresses and documents.
	SaveProfile(ctx context.Context, b profile.Baseline) error

	SubmitUpdateRequest(ctx context.Context, r profile.UpdateRequest) (profile.UpdateRequest, error)
	GetUpdateRequest(ctx context.Context, id string) (*profile.UpdateRequest, error)

	SubmitHolidayRequest(ctx context.Context, r profile.HolidayChangeRequest) (profile.HolidayChangeRequest, error)
	GetHolidayRequest(ctx context.Context, id string) (*profile.HolidayChangeRequest, error)

	SaveHoliday(ctx context.Context, h profile.Holiday) (profile.Holiday, error)
	ListHolidays(ctx context.Context) ([]profile.Holiday, error)

	// Reset clears all data (for testing/demo).
	Reset(ctx context.Context) error
	Close() error
}

// =============================================================================
// SUBMISSION HELPERS - shared by every backend
// =============================================================================

// PrepareUpdateRequest validates r and fills defaults: a fresh id, PENDING
// status, FIELD_UPDATE kind and the creation time.
func PrepareUpdateRequest(r profile.UpdateRequest, now time.Time) (profile.UpdateRequest, error) {
	if strings.TrimSpace(r.EmployeeID) == "" {
		return r, fmt.Errorf("%w: employee id is required", ErrInvalidRequest)
	}
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	if r.Kind == "" {
		r.Kind = profile.KindFieldUpdate
	}
	if r.Kind != profile.KindFieldUpdate && r.Kind != profile.KindAddressDelete {
		return r, fmt.Errorf("%w: unknown request kind %q", ErrInvalidRequest, r.Kind)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.CreatedAt = r.CreatedAt.UTC().Truncate(time.Second)
	r.Status = profile.StatusPending
	r.AdminComment = ""
	return r, nil
}

// PrepareHolidayRequest validates r and fills defaults like
// PrepareUpdateRequest. Every entry needs a known update type and a date.
func PrepareHolidayRequest(r profile.HolidayChangeRequest, now time.Time) (profile.HolidayChangeRequest, error) {
	if strings.TrimSpace(r.EmployeeID) == "" {
		return r, fmt.Errorf("%w: employee id is required", ErrInvalidRequest)
	}
	if len(r.Entries) == 0 {
		return r, fmt.Errorf("%w: at least one holiday entry is required", ErrInvalidRequest)
	}
	for i, e := range r.Entries {
		if e.UpdateType != profile.HolidayAdd && e.UpdateType != profile.HolidayRemove {
			return r, fmt.Errorf("%w: entry %d: unknown update type %q", ErrInvalidRequest, i, e.UpdateType)
		}
		if strings.TrimSpace(e.HolidayDate) == "" {
			return r, fmt.Errorf("%w: entry %d: holiday date is required", ErrInvalidRequest, i)
		}
	}
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.CreatedAt = r.CreatedAt.UTC().Truncate(time.Second)
	r.Status = profile.StatusPending
	r.AdminComment = ""
	r.Entries = append([]profile.HolidayEntry(nil), r.Entries...)
	return r, nil
}

// PrepareHoliday validates h and assigns an id when absent.
func PrepareHoliday(h profile.Holiday) (profile.Holiday, error) {
	if strings.TrimSpace(h.Date) == "" {
		return h, fmt.Errorf("%w: holiday date is required", ErrInvalidRequest)
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return h, nil
}

// PrepareProfile validates b before it is saved.
func PrepareProfile(b profile.Baseline) (profile.Baseline, error) {
	if strings.TrimSpace(b.EmployeeID) == "" {
		return b, fmt.Errorf("%w: employee id is required", ErrInvalidRequest)
	}
	b.Addresses = append([]profile.AddressRecord(nil), b.Addresses...)
	b.Documents = append([]profile.DocumentRecord(nil), b.Documents...)
	for i, a := range b.Addresses {
		if a.AddressType == "" {
			return b, fmt.Errorf("%w: address %d: address type is required", ErrInvalidRequest, i)
		}
		if a.AddressID == "" {
			b.Addresses[i].AddressID = uuid.NewString()
		}
	}
	for i, d := range b.Documents {
		if d.DocumentID == "" {
			b.Documents[i].DocumentID = uuid.NewString()
		}
	}
	return b, nil
}

// DecisionError picks the error for a decision that changed nothing: the
// request either does not exist or is no longer PENDING.
func DecisionError(requestID string, exists bool) error {
	if !exists {
		return fmt.Errorf("%w: %s", profile.ErrRequestNotFound, requestID)
	}
	return fmt.Errorf("%w: %s", profile.ErrNotPending, requestID)
}

package review

import (
	"context"

	"github.com/warp/profile-review/profile"
)

// =============================================================================
// COLLABORATORS - implemented by store/memory, store/sqlite, store/postgres
// =============================================================================

// ProfileFetcher reads baseline profiles. It returns an error wrapping
// profile.ErrProfileNotFound when the employee has no stored profile.
type ProfileFetcher interface {
	FetchBaselineProfile(ctx context.Context, employeeID string) (*profile.Baseline, error)
}

// UpdateRequestSource lists and decides profile update requests. Listing only
// returns requests still PENDING.
type UpdateRequestSource interface {
	ListPendingUpdateRequests(ctx context.Context) ([]profile.UpdateRequest, error)
	ApproveUpdateRequest(ctx context.Context, requestID string) error
	RejectUpdateRequest(ctx context.Context, requestID, comment string) error
}

// HolidayRequestSource is the holiday-variant equivalent of
// UpdateRequestSource.
type HolidayRequestSource interface {
	ListPendingHolidayRequests(ctx context.Context) ([]profile.HolidayChangeRequest, error)
	ApproveHolidayRequest(ctx context.Context, requestID string) error
	RejectHolidayRequest(ctx context.Context, requestID, comment string) error
}

// Decider is what a Controller drives: one request collection with its
// approve/reject calls.
type Decider[T any] interface {
	ListPending(ctx context.Context) ([]T, error)
	Approve(ctx context.Context, requestID string) error
	Reject(ctx context.Context, requestID, comment string) error
}

type updateDecider struct{ src UpdateRequestSource }

func (d updateDecider) ListPending(ctx context.Context) ([]profile.UpdateRequest, error) {
	return d.src.ListPendingUpdateRequests(ctx)
}

func (d updateDecider) Approve(ctx context.Context, id string) error {
	return d.src.ApproveUpdateRequest(ctx, id)
}

func (d updateDecider) Reject(ctx context.Context, id, comment string) error {
	return d.src.RejectUpdateRequest(ctx, id, comment)
}

type holidayDecider struct{ src HolidayRequestSource }

func (d holidayDecider) ListPending(ctx context.Context) ([]profile.HolidayChangeRequest, error) {
	return d.src.ListPendingHolidayRequests(ctx)
}

func (d holidayDecider) Approve(ctx context.Context, id string) error {
	return d.src.ApproveHolidayRequest(ctx, id)
}

func (d holidayDecider) Reject(ctx context.Context, id, comment string) error {
	return d.src.RejectHolidayRequest(ctx, id, comment)
}

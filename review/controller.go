/*
Package review drives the admin side of profile and holiday change requests.

PURPOSE:
  Loads pending requests, computes a diff per request card against a cached
  baseline, and turns admin decisions into approve/reject calls on the
  backing store.

STATE MACHINE:
  PENDING --Approve()--------> APPROVED (terminal)
  PENDING --Reject(comment)--> REJECTED (terminal)

  The controller never mutates a request locally. After a successful call it
  reloads the pending list from the source of truth, which no longer
  contains the decided request.

DOUBLE SUBMISSION:
  Each workflow has one processing flag (see locks.go). While a call is in
  flight, further calls for the same workflow return an Ignored decision and
  no error.

SEE ALSO:
  - cache.go: baseline snapshot cache
  - view.go: per-session card rendering
  - errors.go: ValidationError, TransportError
*/
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/warp/profile-review/profile"
)

// Request is what a Controller needs to know about a request record.
type Request interface {
	Key() string
	CurrentStatus() profile.Status
}

// Decision reports the outcome of Approve or Reject.
type Decision struct {
	RequestID string         `json:"requestId"`
	Workflow  Workflow       `json:"workflow"`
	Status    profile.Status `json:"status"`
	Ignored   bool           `json:"ignored"`
	Pending   int            `json:"pending"`
}

// Controller runs the approve/reject workflow over one request collection.
type Controller[T Request] struct {
	workflow Workflow
	decider  Decider[T]
	locks    *Locks
	logger   *slog.Logger

	mu       sync.RWMutex
	requests []T
}

// NewController binds a decider to its workflow flag. locks is usually shared
// between the controllers of one process.
func NewController[T Request](workflow Workflow, decider Decider[T], locks *Locks, logger *slog.Logger) *Controller[T] {
	if locks == nil {
		locks = NewLocks()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{
		workflow: workflow,
		decider:  decider,
		locks:    locks,
		logger:   logger.With("workflow", string(workflow)),
	}
}

// NewUpdateController drives profile update requests.
func NewUpdateController(src UpdateRequestSource, locks *Locks, logger *slog.Logger) *Controller[profile.UpdateRequest] {
	return NewController[profile.UpdateRequest](WorkflowUpdates, updateDecider{src: src}, locks, logger)
}

// NewHolidayController drives holiday change requests.
func NewHolidayController(src HolidayRequestSource, locks *Locks, logger *slog.Logger) *Controller[profile.HolidayChangeRequest] {
	return NewController[profile.HolidayChangeRequest](WorkflowHolidays, holidayDecider{src: src}, locks, logger)
}

func (c *Controller[T]) Workflow() Workflow { return c.workflow }

// Reload replaces the local list with the source's pending requests. On
// failure the previous list is kept.
func (c *Controller[T]) Reload(ctx context.Context) error {
	reqs, err := c.decider.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("list pending %s: %w", c.workflow, err)
	}
	c.mu.Lock()
	c.requests = reqs
	c.mu.Unlock()
	return nil
}

// Pending returns the loaded requests that are still PENDING.
func (c *Controller[T]) Pending() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.requests))
	for _, r := range c.requests {
		if r.CurrentStatus() == profile.StatusPending {
			out = append(out, r)
		}
	}
	return out
}

func (c *Controller[T]) lookup(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.requests {
		if r.Key() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Approve moves a request to APPROVED.
func (c *Controller[T]) Approve(ctx context.Context, requestID string) (Decision, error) {
	return c.decide(ctx, requestID, profile.StatusApproved, "")
}

// Reject moves a request to REJECTED. A blank comment fails locally with a
// ValidationError and nothing is sent.
func (c *Controller[T]) Reject(ctx context.Context, requestID, comment string) (Decision, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		d := Decision{RequestID: requestID, Workflow: c.workflow, Status: profile.StatusPending}
		return d, &ValidationError{RequestID: requestID, Field: "comment", Err: ErrEmptyComment}
	}
	return c.decide(ctx, requestID, profile.StatusRejected, comment)
}

func (c *Controller[T]) decide(ctx context.Context, requestID string, to profile.Status, comment string) (Decision, error) {
	d := Decision{RequestID: requestID, Workflow: c.workflow, Status: profile.StatusPending}

	if !c.locks.TryAcquire(c.workflow) {
		c.logger.Debug("decision ignored, another one is in flight", "request_id", requestID)
		d.Ignored = true
		return d, nil
	}
	defer c.locks.Release(c.workflow)

	if req, ok := c.lookup(requestID); ok && !req.CurrentStatus().CanTransition(to) {
		return d, fmt.Errorf("%w: %s is %s", profile.ErrInvalidTransition, requestID, req.CurrentStatus())
	}

	op := "approve"
	var err error
	if to == profile.StatusApproved {
		err = c.decider.Approve(ctx, requestID)
	} else {
		op = "reject"
		err = c.decider.Reject(ctx, requestID, comment)
	}
	if err != nil {
		c.logger.Warn("decision failed", "request_id", requestID, "op", op, "error", err)
		return d, &TransportError{Workflow: c.workflow, Op: op, RequestID: requestID, Err: err}
	}

	d.Status = to
	c.logger.Info("request decided", "request_id", requestID, "status", string(to))

	if err := c.Reload(ctx); err != nil {
		c.logger.Warn("reload after decision failed", "request_id", requestID, "error", err)
		d.Pending = len(c.Pending())
		return d, fmt.Errorf("%w: %v", ErrReloadFailed, err)
	}
	d.Pending = len(c.Pending())
	return d, nil
}

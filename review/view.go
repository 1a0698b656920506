package review

import (
	"context"
	"log/slog"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/reconcile"
)

// Card is one pending update request with its diff.
type Card struct {
	Request profile.UpdateRequest
	Diff    reconcile.DiffResult

	// Degraded is set when no baseline was available and every proposed
	// value is shown against an empty old value.
	Degraded bool

	// Malformed is set when the change-set could not be decoded. Diff is
	// then empty.
	Malformed bool
}

// View is one "pending update requests" session. It owns a fresh
// SnapshotCache; discarding the View discards the cache.
type View struct {
	requests *Controller[profile.UpdateRequest]
	cache    *SnapshotCache
	logger   *slog.Logger
}

func NewView(requests *Controller[profile.UpdateRequest], profiles ProfileFetcher, logger *slog.Logger, warmConcurrency int) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		requests: requests,
		cache:    NewSnapshotCache(profiles, logger, warmConcurrency),
		logger:   logger,
	}
}

func (v *View) Cache() *SnapshotCache { return v.cache }

// Load reloads the pending list, warms the cache for every distinct employee
// and renders the cards. Baseline failures never fail the load.
func (v *View) Load(ctx context.Context) ([]Card, error) {
	if err := v.requests.Reload(ctx); err != nil {
		return nil, err
	}

	pending := v.requests.Pending()
	ids := make([]string, 0, len(pending))
	for _, r := range pending {
		ids = append(ids, r.EmployeeID)
	}
	v.cache.Warm(ctx, ids)

	return v.render(pending), nil
}

// Cards renders the currently loaded requests against whatever the cache
// holds right now.
func (v *View) Cards() []Card {
	return v.render(v.requests.Pending())
}

func (v *View) render(reqs []profile.UpdateRequest) []Card {
	cards := make([]Card, 0, len(reqs))
	for _, r := range reqs {
		cards = append(cards, v.Card(r))
	}
	return cards
}

// Card reconciles a single request. It never blocks on a fetch.
func (v *View) Card(r profile.UpdateRequest) Card {
	baseline, _ := v.cache.Peek(r.EmployeeID)
	diff, err := reconcile.ReconcileRaw(baseline, r.ChangeSet, r.Kind)
	card := Card{Request: r, Diff: diff, Degraded: baseline == nil}
	if err != nil {
		card.Malformed = true
		v.logger.Warn("change-set malformed, showing no changes", "request_id", r.RequestID, "error", err)
	}
	return card
}

package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/warp/profile-review/profile"
)

// DefaultWarmConcurrency bounds parallel baseline fetches during Warm.
const DefaultWarmConcurrency = 4

// SnapshotCache memoizes baseline profiles by employee id for the lifetime of
// one pending-requests view. Entries are never replaced or evicted; failed
// fetches leave no entry so a later Get retries.
type SnapshotCache struct {
	fetcher ProfileFetcher
	logger  *slog.Logger
	limit   int

	mu      sync.RWMutex
	entries map[string]*profile.Baseline
	group   singleflight.Group
}

// NewSnapshotCache creates an empty cache. warmConcurrency <= 0 uses
// DefaultWarmConcurrency.
func NewSnapshotCache(fetcher ProfileFetcher, logger *slog.Logger, warmConcurrency int) *SnapshotCache {
	if logger == nil {
		logger = slog.Default()
	}
	if warmConcurrency <= 0 {
		warmConcurrency = DefaultWarmConcurrency
	}
	return &SnapshotCache{
		fetcher: fetcher,
		logger:  logger,
		limit:   warmConcurrency,
		entries: make(map[string]*profile.Baseline),
	}
}

// Peek returns the cached baseline without fetching.
func (c *SnapshotCache) Peek(employeeID string) (*profile.Baseline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[employeeID]
	return b, ok
}

// Len returns the number of cached profiles.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns the cached baseline or fetches it. Concurrent calls for the same
// id share one fetch.
func (c *SnapshotCache) Get(ctx context.Context, employeeID string) (*profile.Baseline, error) {
	if b, ok := c.Peek(employeeID); ok {
		return b, nil
	}

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own ctx is done.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(employeeID, func() (any, error) {
		if b, ok := c.Peek(employeeID); ok {
			return b, nil
		}
		b, err := c.fetcher.FetchBaselineProfile(fetchCtx, employeeID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, employeeID)
		}
		return c.store(employeeID, b), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*profile.Baseline), nil
	}
}

// store keeps the first entry written for an id.
func (c *SnapshotCache) store(employeeID string, b *profile.Baseline) *profile.Baseline {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[employeeID]; ok {
		return existing
	}
	c.entries[employeeID] = b
	return b
}

// Warm fetches every distinct id not yet cached. Failures are logged and
// skipped; cards for those employees render a degraded diff.
func (c *SnapshotCache) Warm(ctx context.Context, employeeIDs []string) {
	var g errgroup.Group
	g.SetLimit(c.limit)

	seen := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := c.Peek(id); ok {
			continue
		}
		id := id
		g.Go(func() error {
			if _, err := c.Get(ctx, id); err != nil {
				c.logger.Warn("baseline unavailable", "employee_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

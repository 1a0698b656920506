// Package memory provides an in-memory store.Store (for testing/dev).
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	profiles map[string]profile.Baseline

	// Requests are kept sorted by CreatedAt; see insertByCreatedAt.
	updates  []*profile.UpdateRequest
	holidayR []*profile.HolidayChangeRequest

	holidays map[holidayKey]profile.Holiday

	now func() time.Time
}

type holidayKey struct {
	Date string
	Name string
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		profiles: make(map[string]profile.Baseline),
		holidays: make(map[holidayKey]profile.Holiday),
		now:      time.Now,
	}
}

func (m *Memory) Close() error { return nil }

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = make(map[string]profile.Baseline)
	m.updates = nil
	m.holidayR = nil
	m.holidays = make(map[holidayKey]profile.Holiday)
	return nil
}

// =============================================================================
// PROFILES
// =============================================================================

func (m *Memory) SaveProfile(_ context.Context, b profile.Baseline) error {
	b, err := store.PrepareProfile(b)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[b.EmployeeID] = cloneBaseline(b)
	return nil
}

func (m *Memory) FetchBaselineProfile(_ context.Context, employeeID string) (*profile.Baseline, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.profiles[employeeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, employeeID)
	}
	out := cloneBaseline(b)
	return &out, nil
}

func cloneBaseline(b profile.Baseline) profile.Baseline {
	out := b
	out.Fields = maps.Clone(b.Fields)
	if out.Fields == nil {
		out.Fields = map[string]any{}
	}
	out.Addresses = append([]profile.AddressRecord{}, b.Addresses...)
	out.Documents = append([]profile.DocumentRecord{}, b.Documents...)
	return out
}

// =============================================================================
// UPDATE REQUESTS
// =============================================================================

func (m *Memory) SubmitUpdateRequest(_ context.Context, r profile.UpdateRequest) (profile.UpdateRequest, error) {
	r, err := store.PrepareUpdateRequest(r, m.now())
	if err != nil {
		return r, err
	}
	r.ChangeSet = append(profile.RawChangeSet(nil), r.ChangeSet...)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findUpdate(r.RequestID) != nil {
		return r, fmt.Errorf("%w: duplicate request id %s", store.ErrInvalidRequest, r.RequestID)
	}
	stored := r
	m.updates = insertByCreatedAt(m.updates, &stored, func(u *profile.UpdateRequest) time.Time { return u.CreatedAt })
	return r, nil
}

func (m *Memory) GetUpdateRequest(_ context.Context, id string) (*profile.UpdateRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.findUpdate(id)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", profile.ErrRequestNotFound, id)
	}
	out := *r
	return &out, nil
}

func (m *Memory) ListPendingUpdateRequests(_ context.Context) ([]profile.UpdateRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []profile.UpdateRequest{}
	for _, r := range m.updates {
		if r.Status == profile.StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *Memory) ApproveUpdateRequest(_ context.Context, id string) error {
	return m.decideUpdate(id, profile.StatusApproved, "")
}

func (m *Memory) RejectUpdateRequest(_ context.Context, id, comment string) error {
	return m.decideUpdate(id, profile.StatusRejected, comment)
}

func (m *Memory) decideUpdate(id string, to profile.Status, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findUpdate(id)
	if r == nil || r.Status != profile.StatusPending {
		return store.DecisionError(id, r != nil)
	}
	r.Status = to
	r.AdminComment = comment
	return nil
}

func (m *Memory) findUpdate(id string) *profile.UpdateRequest {
	for _, r := range m.updates {
		if r.RequestID == id {
			return r
		}
	}
	return nil
}

// =============================================================================
// HOLIDAY REQUESTS
// =============================================================================

func (m *Memory) SubmitHolidayRequest(_ context.Context, r profile.HolidayChangeRequest) (profile.HolidayChangeRequest, error) {
	r, err := store.PrepareHolidayRequest(r, m.now())
	if err != nil {
		return r, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findHolidayRequest(r.RequestID) != nil {
		return r, fmt.Errorf("%w: duplicate request id %s", store.ErrInvalidRequest, r.RequestID)
	}
	stored := r
	m.holidayR = insertByCreatedAt(m.holidayR, &stored, func(h *profile.HolidayChangeRequest) time.Time { return h.CreatedAt })
	return r, nil
}

func (m *Memory) GetHolidayRequest(_ context.Context, id string) (*profile.HolidayChangeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := m.findHolidayRequest(id)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", profile.ErrRequestNotFound, id)
	}
	out := *r
	out.Entries = append([]profile.HolidayEntry(nil), r.Entries...)
	return &out, nil
}

func (m *Memory) ListPendingHolidayRequests(_ context.Context) ([]profile.HolidayChangeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []profile.HolidayChangeRequest{}
	for _, r := range m.holidayR {
		if r.Status == profile.StatusPending {
			c := *r
			c.Entries = append([]profile.HolidayEntry(nil), r.Entries...)
			out = append(out, c)
		}
	}
	return out, nil
}

// ApproveHolidayRequest marks the request APPROVED and applies its entries to
// the calendar under the same lock.
func (m *Memory) ApproveHolidayRequest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findHolidayRequest(id)
	if r == nil || r.Status != profile.StatusPending {
		return store.DecisionError(id, r != nil)
	}
	for _, e := range r.Entries {
		k := holidayKey{Date: e.HolidayDate, Name: e.HolidayName}
		switch e.UpdateType {
		case profile.HolidayAdd:
			if _, exists := m.holidays[k]; !exists {
				h, err := store.PrepareHoliday(profile.Holiday{Date: e.HolidayDate, Name: e.HolidayName})
				if err != nil {
					return err
				}
				m.holidays[k] = h
			}
		case profile.HolidayRemove:
			delete(m.holidays, k)
		}
	}
	r.Status = profile.StatusApproved
	return nil
}

func (m *Memory) RejectHolidayRequest(_ context.Context, id, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findHolidayRequest(id)
	if r == nil || r.Status != profile.StatusPending {
		return store.DecisionError(id, r != nil)
	}
	r.Status = profile.StatusRejected
	r.AdminComment = comment
	return nil
}

func (m *Memory) findHolidayRequest(id string) *profile.HolidayChangeRequest {
	for _, r := range m.holidayR {
		if r.RequestID == id {
			return r
		}
	}
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h profile.Holiday) (profile.Holiday, error) {
	h, err := store.PrepareHoliday(h)
	if err != nil {
		return h, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := holidayKey{Date: h.Date, Name: h.Name}
	if existing, ok := m.holidays[k]; ok {
		return existing, nil
	}
	m.holidays[k] = h
	return h, nil
}

// ListHolidays returns the calendar ordered by date, then name.
func (m *Memory) ListHolidays(_ context.Context) ([]profile.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]profile.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// insertByCreatedAt keeps s ordered by creation time. Equal times keep
// submission order.
func insertByCreatedAt[T any](s []*T, v *T, at func(*T) time.Time) []*T {
	i := sort.Search(len(s), func(i int) bool {
		return at(s[i]).After(at(v))
	})
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

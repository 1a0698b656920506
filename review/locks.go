package review

import "sync"

// Workflow names a request collection guarded by one processing flag.
type Workflow string

const (
	WorkflowUpdates  Workflow = "update_requests"
	WorkflowHolidays Workflow = "holiday_requests"
)

// Locks holds the per-workflow "processing" flags. A flag is held for the
// duration of one approve/reject call; a second call for the same workflow
// fails to acquire it and is dropped.
type Locks struct {
	mu   sync.Mutex
	held map[Workflow]bool
}

func NewLocks() *Locks {
	return &Locks{held: make(map[Workflow]bool)}
}

// TryAcquire sets the flag for w. It returns false if the flag is already set.
func (l *Locks) TryAcquire(w Workflow) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[w] {
		return false
	}
	l.held[w] = true
	return true
}

// Release clears the flag for w.
func (l *Locks) Release(w Workflow) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, w)
}

// Busy reports whether a call is in flight for w.
func (l *Locks) Busy(w Workflow) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[w]
}

// Package lock provides claims that stop two consumers from handling the same
// entry at once.
//
// A source only acquires claims. Releasing them is up to whoever owns the entry
// while it is in flight, normally the poller once a handler has finished.
// None of the lockers here coordinate across hosts.
package lock

import (
	"sync"

	"github.com/poiesic/filepoll/core"
)

// Locker claims entries exclusively. Implementations must be safe for concurrent use.
type Locker interface {
	// TryLock attempts to claim the entry without blocking.
	// Returns true if the claim was acquired.
	TryLock(e core.Entry) bool

	// Unlock releases a claim. Releasing an unclaimed entry is a no-op.
	Unlock(e core.Entry)
}

// Noop is a Locker that grants every claim. It offers no protection against
// duplicate handling and is the default for a source.
type Noop struct{}

var _ Locker = Noop{}

// TryLock always returns true.
func (Noop) TryLock(core.Entry) bool { return true }

// Unlock does nothing.
func (Noop) Unlock(core.Entry) {}

// Memory claims entries by path within the current process.
type Memory struct {
	mu     sync.Mutex
	claims map[string]struct{}
}

var _ Locker = (*Memory)(nil)

// NewMemory creates an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{claims: make(map[string]struct{})}
}

// TryLock claims the entry's path if nobody holds it.
func (m *Memory) TryLock(e core.Entry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.claims[e.Path]; held {
		return false
	}
	m.claims[e.Path] = struct{}{}
	return true
}

// Unlock releases the claim on the entry's path.
func (m *Memory) Unlock(e core.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, e.Path)
}

// IsLocked reports whether the entry's path is currently claimed.
func (m *Memory) IsLocked(e core.Entry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, held := m.claims[e.Path]
	return held
}

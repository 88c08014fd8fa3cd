package filter

import (
	"sync"

	"github.com/poiesic/filepoll/core"
)

// AcceptOnce passes each path through at most once for the lifetime of the filter.
//
// With a positive capacity the filter remembers only the most recent capacity paths;
// when it is full the oldest path is forgotten and may be accepted again.
type AcceptOnce struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	order    []string // Insertion order, used for eviction when bounded
	capacity int
}

var _ Filter = (*AcceptOnce)(nil)

// NewAcceptOnce creates an accept-once filter. A capacity <= 0 means unbounded.
func NewAcceptOnce(capacity int) *AcceptOnce {
	return &AcceptOnce{
		seen:     make(map[string]struct{}),
		capacity: capacity,
	}
}

// Filter returns the entries whose paths have not been accepted before and records them.
func (f *AcceptOnce) Filter(entries []core.Entry) []core.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := f.seen[e.Path]; ok {
			continue
		}
		if f.capacity > 0 && len(f.order) >= f.capacity {
			oldest := f.order[0]
			f.order = f.order[1:]
			delete(f.seen, oldest)
		}
		f.seen[e.Path] = struct{}{}
		f.order = append(f.order, e.Path)
		out = append(out, e)
	}
	return out
}

// Forget removes an entry from the filter so a later scan can accept it again.
func (f *AcceptOnce) Forget(e core.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[e.Path]; !ok {
		return
	}
	delete(f.seen, e.Path)
	for i, p := range f.order {
		if p == e.Path {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of remembered paths.
func (f *AcceptOnce) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

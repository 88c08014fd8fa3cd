package source

import (
	"container/heap"
	"slices"
	"sync"

	"github.com/poiesic/filepoll/core"
)

// initialQueueCapacity is a sizing hint only; the queue grows as needed.
const initialQueueCapacity = 5

// queue is the pending buffer: a mutex-guarded priority queue of entries keyed by
// path. The mutex is held only for the duration of one method call.
type queue struct {
	mu     sync.Mutex
	items  entryHeap
	queued map[string]struct{}
	seq    uint64
}

func newQueue(compare Comparator) *queue {
	return &queue{
		items: entryHeap{
			items:   make([]queueItem, 0, initialQueueCapacity),
			compare: compare,
		},
		queued: make(map[string]struct{}, initialQueueCapacity),
	}
}

// add merges entries into the queue, skipping paths that are already queued.
// Returns the entries that were actually added.
func (q *queue) add(entries []core.Entry) []core.Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	var added []core.Entry
	for _, e := range entries {
		if q.pushLocked(e) {
			added = append(added, e)
		}
	}
	return added
}

// pop removes and returns the next entry. Returns false if the queue is empty.
func (q *queue) pop() (core.Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Len() == 0 {
		return core.Entry{}, false
	}
	item := heap.Pop(&q.items).(queueItem)
	delete(q.queued, item.entry.Path)
	return item.entry, true
}

// returnEntry puts an entry back. Returns false if its path was already queued.
func (q *queue) returnEntry(e core.Entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushLocked(e)
}

func (q *queue) isEmpty() bool {
	return q.len() == 0
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// snapshot returns the queued entries in delivery order.
func (q *queue) snapshot() []core.Entry {
	q.mu.Lock()
	items := slices.Clone(q.items.items)
	q.mu.Unlock()

	slices.SortFunc(items, q.items.cmpItems)
	out := make([]core.Entry, len(items))
	for i, item := range items {
		out[i] = item.entry
	}
	return out
}

// pushLocked must be called with q.mu held.
func (q *queue) pushLocked(e core.Entry) bool {
	if _, ok := q.queued[e.Path]; ok {
		return false
	}
	q.seq++
	heap.Push(&q.items, queueItem{entry: e, seq: q.seq})
	q.queued[e.Path] = struct{}{}
	return true
}

type queueItem struct {
	entry core.Entry
	seq   uint64 // Insertion sequence, breaks comparator ties
}

// entryHeap implements heap.Interface over queueItems.
type entryHeap struct {
	items   []queueItem
	compare Comparator
}

func (h *entryHeap) cmpItems(a, b queueItem) int {
	if c := h.compare(a.entry, b.entry); c != 0 {
		return c
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}

func (h *entryHeap) Len() int           { return len(h.items) }
func (h *entryHeap) Less(i, j int) bool { return h.cmpItems(h.items[i], h.items[j]) < 0 }
func (h *entryHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *entryHeap) Push(x any) {
	h.items = append(h.items, x.(queueItem))
}

func (h *entryHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = queueItem{}
	h.items = old[:n-1]
	return item
}

package filter

import (
	"time"

	"github.com/poiesic/filepoll/core"
)

// LastModified drops entries modified more recently than a minimum age.
// Writers that do not rename finished files can otherwise be read mid-write; an
// entry that is too young is simply left for a later scan.
type LastModified struct {
	age time.Duration
	now func() time.Time
}

var _ Filter = (*LastModified)(nil)

// NewLastModified creates a filter requiring entries to be at least age old.
func NewLastModified(age time.Duration) *LastModified {
	return &LastModified{age: age, now: time.Now}
}

// WithClock replaces the filter's time source. Intended for tests.
func (f *LastModified) WithClock(now func() time.Time) *LastModified {
	f.now = now
	return f
}

// Filter returns the entries whose modification time is at least age in the past.
func (f *LastModified) Filter(entries []core.Entry) []core.Entry {
	cutoff := f.now().Add(-f.age)
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.ModTime.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

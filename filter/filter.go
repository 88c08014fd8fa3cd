package filter

import "github.com/poiesic/filepoll/core"

// Filter narrows a directory listing down to the entries eligible for delivery.
type Filter interface {
	// Filter returns the eligible subset of entries. It must not modify the input slice.
	Filter(entries []core.Entry) []core.Entry
}

// Func adapts an ordinary function to the Filter interface.
type Func func(entries []core.Entry) []core.Entry

// Filter calls f(entries).
func (f Func) Filter(entries []core.Entry) []core.Entry {
	return f(entries)
}

// Predicate builds a stateless Filter that keeps entries for which keep returns true.
func Predicate(keep func(core.Entry) bool) Filter {
	return Func(func(entries []core.Entry) []core.Entry {
		out := make([]core.Entry, 0, len(entries))
		for _, e := range entries {
			if keep(e) {
				out = append(out, e)
			}
		}
		return out
	})
}

// AcceptAll returns a Filter that passes every entry through.
func AcceptAll() Filter {
	return Func(func(entries []core.Entry) []core.Entry {
		return entries
	})
}

// Chain returns a Filter applying filters in order.
// Evaluation stops as soon as a filter returns nothing, so later stateful filters
// (such as accept-once) only record entries that passed every earlier filter.
func Chain(filters ...Filter) Filter {
	return Func(func(entries []core.Entry) []core.Entry {
		for _, f := range filters {
			if len(entries) == 0 {
				return entries
			}
			entries = f.Filter(entries)
		}
		return entries
	})
}

// Must panics if err is not nil. It simplifies building chains from literal patterns.
func Must[F Filter](f F, err error) F {
	if err != nil {
		panic(err)
	}
	return f
}

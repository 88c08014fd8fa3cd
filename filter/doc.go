// Package filter decides which directory entries are eligible for delivery.
//
// A Filter receives the full listing of one directory scan and returns the subset
// that may be queued. Filters may keep state across scans; the accept-once filters
// remember what they have already let through so a file is offered only once.
//
// Filters must be safe for concurrent use, since scans can overlap when several
// goroutines pull from the same source. They should also be conservative: when a
// filter cannot tell whether an entry was delivered before, it should drop it.
//
// Filters compose with Chain:
//
//	f := filter.Chain(
//	    filter.IgnoreHidden(),
//	    filter.Must(filter.NewPattern([]string{"*.csv"}, nil)),
//	    filter.NewAcceptOnce(0),
//	)
package filter

// Package source turns a filesystem directory into a pull-based stream of entries.
//
// A Source keeps an internal, ordered buffer of entries that have been discovered
// but not yet handed out. Each call to Receive returns at most one entry wrapped in
// a core.Message. The directory is rescanned when the buffer runs dry, or on every
// call when scan-each-poll is enabled. Entries pass through a filter.Filter before
// they are buffered, and through a lock.Locker before they are handed out.
//
// Receive never waits for files to appear. Its cost is bounded by one directory
// listing plus one lock attempt per buffered entry.
//
// # Thread Safety
//
// Receive, OnFailure and OnSend may be called from any number of goroutines. With
// no scan in between, concurrent callers always receive distinct entries. Ordering
// across racing callers is best-effort: the buffer pops in comparator order, but
// nothing orders the callers themselves.
//
// # Failure Handling
//
// A scan that cannot list the directory fails that Receive with
// core.ErrDirectoryAccess and leaves the buffer untouched. A downstream failure
// reported through OnFailure puts the entry back in the buffer without consulting
// the filter again. OnFailure does not release the entry's lock.
package source

//go:build !unix

package lock

import "log/slog"

// Flock falls back to in-process claims where flock(2) is unavailable.
type Flock struct {
	*Memory
}

var _ Locker = (*Flock)(nil)

// NewFlock creates a locker that behaves like Memory. A nil logger falls back to
// slog.Default().
func NewFlock(logger *slog.Logger) *Flock {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("flock is not supported on this platform, claims are in-process only")
	return &Flock{Memory: NewMemory()}
}

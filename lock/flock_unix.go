//go:build unix

package lock

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/poiesic/filepoll/core"
	"golang.org/x/sys/unix"
)

// Flock claims entries with a non-blocking advisory flock(2) on the file itself.
// The descriptor stays open until Unlock. Other processes on the same host that
// also use flock see the claim; processes that ignore advisory locks do not.
type Flock struct {
	mu     sync.Mutex
	held   map[string]*os.File
	logger *slog.Logger
}

var _ Locker = (*Flock)(nil)

// NewFlock creates a flock-based locker. A nil logger falls back to slog.Default().
func NewFlock(logger *slog.Logger) *Flock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flock{
		held:   make(map[string]*os.File),
		logger: logger,
	}
}

// TryLock opens the file and takes an exclusive, non-blocking flock on it.
// Returns false if the file cannot be opened or another descriptor holds the lock.
func (l *Flock) TryLock(e core.Entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[e.Path]; ok {
		return false
	}

	f, err := os.Open(e.Path)
	if err != nil {
		l.logger.Debug("cannot open entry for locking", "path", e.Path, "err", err)
		return false
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if !errors.Is(err, unix.EWOULDBLOCK) {
			l.logger.Warn("flock failed", "path", e.Path, "err", err)
		}
		return false
	}
	l.held[e.Path] = f
	return true
}

// Unlock releases the flock and closes the descriptor.
func (l *Flock) Unlock(e core.Entry) {
	l.mu.Lock()
	f, ok := l.held[e.Path]
	delete(l.held, e.Path)
	l.mu.Unlock()

	if !ok {
		return
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		l.logger.Warn("flock release failed", "path", e.Path, "err", err)
	}
	if err := f.Close(); err != nil {
		l.logger.Warn("error closing locked entry", "path", e.Path, "err", err)
	}
}

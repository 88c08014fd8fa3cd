package filter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/filepoll/core"
	"github.com/poiesic/filepoll/storage"
)

// Persistent is an accept-once filter whose memory lives in a storage.SeenRepository,
// so it survives restarts. An entry is accepted when its path has never been seen, or
// when its size or modification time differs from the recorded version.
//
// Repository errors make the filter drop the affected entries rather than risk a
// duplicate delivery.
type Persistent struct {
	repo   storage.SeenRepository
	logger *slog.Logger
	now    func() time.Time

	// Serializes check-then-mark so overlapping scans cannot both accept a path.
	mu sync.Mutex
}

var _ Filter = (*Persistent)(nil)

// PersistentOption configures a Persistent filter.
type PersistentOption func(*Persistent)

// WithPersistentLogger sets a custom logger.
// Default is slog.Default().
func WithPersistentLogger(logger *slog.Logger) PersistentOption {
	return func(p *Persistent) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// WithPersistentClock replaces the time source used for AcceptedAt.
func WithPersistentClock(now func() time.Time) PersistentOption {
	return func(p *Persistent) {
		p.now = now
	}
}

// NewPersistent creates a persistent accept-once filter over repo.
func NewPersistent(repo storage.SeenRepository, opts ...PersistentOption) (*Persistent, error) {
	if repo == nil {
		return nil, ErrSeenRepositoryRequired
	}

	p := &Persistent{
		repo:   repo,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Filter returns entries that are new or changed since they were last accepted,
// and records them as seen.
func (p *Persistent) Filter(entries []core.Entry) []core.Entry {
	ctx := context.Background()

	p.mu.Lock()
	defer p.mu.Unlock()

	acceptedAt := p.now()
	out := make([]core.Entry, 0, len(entries))
	records := make([]*core.SeenRecord, 0, len(entries))
	for _, e := range entries {
		record, err := p.repo.GetSeen(ctx, e.Path)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			p.logger.Error("error reading seen record, skipping entry", "path", e.Path, "err", err)
			continue
		case record.Matches(e):
			continue
		}
		out = append(out, e)
		records = append(records, core.SeenRecordFor(e, acceptedAt))
	}

	if len(records) == 0 {
		return out
	}
	if err := p.repo.MarkSeen(ctx, records...); err != nil {
		p.logger.Error("error recording seen entries, skipping batch", "count", len(records), "err", err)
		return nil
	}
	return out
}

// Forget removes an entry from the repository so a later scan can accept it again.
func (p *Persistent) Forget(ctx context.Context, e core.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repo.Forget(ctx, e.Path)
}

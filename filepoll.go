// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package filepoll wires a polled directory, its filters, its locker and an
// optional badger seen store into a ready-to-use Inbox.
package filepoll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/filepoll/config"
	"github.com/poiesic/filepoll/core"
	"github.com/poiesic/filepoll/filter"
	"github.com/poiesic/filepoll/lock"
	"github.com/poiesic/filepoll/poller"
	"github.com/poiesic/filepoll/source"
	"github.com/poiesic/filepoll/storage"
	"github.com/poiesic/filepoll/storage/badger"
)

// ErrNoSeenStore is returned by operations that need the persistent seen store
// when the inbox was opened without one.
var ErrNoSeenStore = errors.New("inbox has no seen store")

// Inbox is a polled directory wired to its filter chain, its locker and, when
// configured, a persistent seen store.
type Inbox struct {
	cfg      *config.Config
	backend  *badger.Backend
	seenRepo storage.SeenRepository
	once     *filter.AcceptOnce
	locker   lock.Locker
	source   *source.Source
	logger   *slog.Logger
}

// InboxOption configures an Inbox.
type InboxOption func(*inboxOptions)

type inboxOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger handed to every component of the inbox.
func WithLogger(logger *slog.Logger) InboxOption {
	return func(o *inboxOptions) {
		o.logger = logger
	}
}

// Open validates cfg and builds the inbox it describes. The source is initialized
// before Open returns, so a missing or unreadable directory fails here.
func Open(cfg *config.Config, opts ...InboxOption) (*Inbox, error) {
	options := &inboxOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ib := &Inbox{
		cfg:    cfg,
		logger: options.logger,
	}

	if cfg.SeenDB != "" {
		backend, err := badger.OpenBackend(cfg.SeenDB, false)
		if err != nil {
			return nil, err
		}
		ib.backend = backend
		ib.seenRepo = badger.NewSeenRepository(backend)
	}

	f, err := ib.buildFilter()
	if err != nil {
		ib.Close()
		return nil, err
	}

	ib.locker = ib.buildLocker()

	cmp, err := cfg.Comparator()
	if err != nil {
		ib.Close()
		return nil, err
	}

	src, err := source.New(cfg.Directory,
		source.WithAutoCreateDirectory(cfg.AutoCreate),
		source.WithScanEachPoll(cfg.ScanEachPoll),
		source.WithRequeueLocked(cfg.RequeueLocked),
		source.WithFilter(f),
		source.WithLocker(ib.locker),
		source.WithComparator(cmp),
		source.WithLogger(ib.logger),
	)
	if err != nil {
		ib.Close()
		return nil, err
	}
	if err := src.Initialize(); err != nil {
		ib.Close()
		return nil, err
	}
	ib.source = src

	return ib, nil
}

// buildFilter assembles the filter chain. Cheap stateless filters run first so
// the accept-once stage at the end only records entries that passed all of them.
func (ib *Inbox) buildFilter() (filter.Filter, error) {
	var chain []filter.Filter

	if ib.cfg.IgnoreHidden {
		chain = append(chain, filter.IgnoreHidden())
	}
	if len(ib.cfg.Include) > 0 || len(ib.cfg.Exclude) > 0 {
		p, err := filter.NewPattern(ib.cfg.Include, ib.cfg.Exclude)
		if err != nil {
			return nil, err
		}
		chain = append(chain, p)
	}
	if ib.cfg.Pattern != "" {
		r, err := filter.NewRegex(ib.cfg.Pattern)
		if err != nil {
			return nil, err
		}
		chain = append(chain, r)
	}
	if age := ib.cfg.MinAge.Duration(); age > 0 {
		chain = append(chain, filter.NewLastModified(age))
	}

	if ib.seenRepo != nil {
		p, err := filter.NewPersistent(ib.seenRepo, filter.WithPersistentLogger(ib.logger))
		if err != nil {
			return nil, err
		}
		chain = append(chain, p)
	} else {
		ib.once = filter.NewAcceptOnce(ib.cfg.MaxSeen)
		chain = append(chain, ib.once)
	}

	return filter.Chain(chain...), nil
}

func (ib *Inbox) buildLocker() lock.Locker {
	switch ib.cfg.Locker {
	case config.LockerMemory:
		return lock.NewMemory()
	case config.LockerFlock:
		return lock.NewFlock(ib.logger)
	default:
		return lock.Noop{}
	}
}

// Close releases the seen store. It is safe to call on a partially opened inbox.
func (ib *Inbox) Close() error {
	if ib.seenRepo != nil {
		if err := ib.seenRepo.Close(); err != nil {
			ib.logger.Error("error closing seen repository", "err", err)
			return err
		}
	}
	if ib.backend != nil {
		if err := ib.backend.Close(); err != nil {
			ib.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}

// Source returns the initialized source.
func (ib *Inbox) Source() *source.Source {
	return ib.source
}

// Locker returns the locker shared by the source and any poller built from the inbox.
func (ib *Inbox) Locker() lock.Locker {
	return ib.locker
}

// SeenRepository returns the persistent seen store, or nil if none is configured.
func (ib *Inbox) SeenRepository() storage.SeenRepository {
	return ib.seenRepo
}

// Forget makes the filter offer path again on a later scan.
// Relative paths are resolved against the working directory.
func (ib *Inbox) Forget(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if ib.seenRepo != nil {
		return ib.seenRepo.Forget(ctx, abs)
	}
	ib.once.Forget(core.Entry{Path: abs})
	return nil
}

// NewPoller creates a poller over the inbox's source, configured from the inbox
// config. opts are applied after the config-derived options and override them.
func (ib *Inbox) NewPoller(handler poller.Handler, opts ...poller.Option) (*poller.Poller, error) {
	base := []poller.Option{
		poller.WithInterval(ib.cfg.Interval.Duration()),
		poller.WithMaxMessagesPerPoll(ib.cfg.MaxMessages),
		poller.WithRetry(ib.cfg.Retry.MaxAttempts, ib.cfg.Retry.BaseDelay.Duration()),
		poller.WithLogger(ib.logger),
	}
	if ib.cfg.PoolSize > 0 {
		base = append(base, poller.WithPoolSize(ib.cfg.PoolSize))
	}
	return poller.New(ib.source, ib.locker, handler, append(base, opts...)...)
}

// ListSeen returns every file the seen store remembers.
func (ib *Inbox) ListSeen(ctx context.Context) ([]*core.SeenRecord, error) {
	if ib.seenRepo == nil {
		return nil, ErrNoSeenStore
	}
	records, err := ib.seenRepo.ListSeen(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing seen files: %w", err)
	}
	return records, nil
}

// SeenStore is a persistent seen store opened on its own, for inspecting or
// editing it without touching the polled directory.
type SeenStore struct {
	backend *badger.Backend
	repo    storage.SeenRepository
}

// OpenSeenStore opens the seen store at path. Unlike Open it never creates
// anything: the store must already exist.
func OpenSeenStore(path string) (*SeenStore, error) {
	if path == "" {
		return nil, ErrNoSeenStore
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSeenStore, err)
	}
	backend, err := badger.OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &SeenStore{backend: backend, repo: badger.NewSeenRepository(backend)}, nil
}

// List returns every file the store remembers.
func (s *SeenStore) List(ctx context.Context) ([]*core.SeenRecord, error) {
	records, err := s.repo.ListSeen(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing seen files: %w", err)
	}
	return records, nil
}

// Forget removes path from the store. Relative paths are resolved against the
// working directory.
func (s *SeenStore) Forget(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return s.repo.Forget(ctx, abs)
}

// Close releases the store.
func (s *SeenStore) Close() error {
	if err := s.repo.Close(); err != nil {
		return err
	}
	return s.backend.Close()
}

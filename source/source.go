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


package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/poiesic/filepoll/core"
	"github.com/poiesic/filepoll/filter"
	"github.com/poiesic/filepoll/lock"
)

const (
	stateNew int32 = iota
	stateReady
	stateFailed
)

// Source delivers files from a directory one message at a time.
type Source struct {
	directory     string
	autoCreate    bool
	scanEachPoll  bool
	requeueLocked bool
	filter        filter.Filter
	locker        lock.Locker
	comparator    Comparator
	logger        *slog.Logger

	queue   *queue
	scanner *scanner

	initOnce sync.Once
	initErr  error
	state    atomic.Int32
}

// Option configures a Source.
type Option func(*Source) error

// WithAutoCreateDirectory sets whether Initialize creates a missing directory.
// Default is true.
func WithAutoCreateDirectory(autoCreate bool) Option {
	return func(s *Source) error {
		s.autoCreate = autoCreate
		return nil
	}
}

// WithScanEachPoll sets whether every Receive rescans the directory.
// Default is false: the directory is scanned only when the buffer is empty.
// Scanning on every poll keeps the buffer closer to the filesystem, at the cost
// of more listings and more reordering.
func WithScanEachPoll(scanEachPoll bool) Option {
	return func(s *Source) error {
		s.scanEachPoll = scanEachPoll
		return nil
	}
}

// WithRequeueLocked sets whether entries the locker rejects go back into the buffer.
// Default is false: a rejected entry is dropped and comes back only if the filter
// offers it again. When true, rejected entries are re-queued once the Receive call
// finishes; they are never retried within the same call.
func WithRequeueLocked(requeue bool) Option {
	return func(s *Source) error {
		s.requeueLocked = requeue
		return nil
	}
}

// WithFilter sets the filter applied to each directory listing.
// Default is an unbounded filter.AcceptOnce. The filter must be thread-safe.
func WithFilter(f filter.Filter) Option {
	return func(s *Source) error {
		if f == nil {
			return ErrFilterRequired
		}
		s.filter = f
		return nil
	}
}

// WithLocker sets the locker consulted before an entry is handed out.
// Default is lock.Noop. The locker must be thread-safe.
func WithLocker(l lock.Locker) Option {
	return func(s *Source) error {
		if l == nil {
			return ErrLockerRequired
		}
		s.locker = l
		return nil
	}
}

// WithComparator sets the delivery order of buffered entries.
// Default is ByPath.
func WithComparator(c Comparator) Option {
	return func(s *Source) error {
		if c == nil {
			return ErrComparatorRequired
		}
		s.comparator = c
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a Source for directory. The directory is not touched until
// Initialize is called.
func New(directory string, opts ...Option) (*Source, error) {
	if directory == "" {
		return nil, ErrDirectoryRequired
	}
	abs, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("resolving input directory %s: %w", directory, err)
	}

	s := &Source{
		directory:  abs,
		autoCreate: true,
		filter:     filter.NewAcceptOnce(0),
		locker:     lock.Noop{},
		comparator: ByPath,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.logger = s.logger.With("directory", s.directory)
	s.queue = newQueue(s.comparator)
	s.scanner = &scanner{
		directory: s.directory,
		filter:    s.filter,
		logger:    s.logger,
	}
	return s, nil
}

// Directory returns the absolute path of the polled directory.
func (s *Source) Directory() string {
	return s.directory
}

// Initialize validates the input directory, creating it first if it is missing and
// auto-create is enabled. Only the first call does any work; later calls return
// its result. A failure is permanent: the source will never deliver.
func (s *Source) Initialize() error {
	s.initOnce.Do(func() {
		if err := s.validateDirectory(); err != nil {
			s.initErr = err
			s.state.Store(stateFailed)
			s.logger.Error("source initialization failed", "err", err)
			return
		}
		s.state.Store(stateReady)
	})
	return s.initErr
}

func (s *Source) validateDirectory() error {
	info, err := os.Stat(s.directory)
	if os.IsNotExist(err) && s.autoCreate {
		if mkErr := os.MkdirAll(s.directory, 0755); mkErr != nil {
			return fmt.Errorf("%w: cannot create source directory [%s]: %w", core.ErrFatalConfiguration, s.directory, mkErr)
		}
		s.logger.Info("created source directory")
		info, err = os.Stat(s.directory)
	}
	if err != nil {
		return fmt.Errorf("%w: source directory [%s] does not exist: %w", core.ErrFatalConfiguration, s.directory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: source path [%s] does not point to a directory", core.ErrFatalConfiguration, s.directory)
	}

	f, err := os.Open(s.directory)
	if err != nil {
		return fmt.Errorf("%w: source directory [%s] is not readable: %w", core.ErrFatalConfiguration, s.directory, err)
	}
	return f.Close()
}

// Receive returns the next deliverable entry, or nil if there is none right now.
//
// The directory is scanned first if scan-each-poll is enabled or the buffer is
// empty. Entries are then popped in comparator order until the locker grants one.
// Entries it rejects are skipped for this call.
func (s *Source) Receive() (*core.Message, error) {
	switch s.state.Load() {
	case stateNew:
		return nil, core.ErrNotInitialized
	case stateFailed:
		return nil, s.initErr
	}

	if s.scanEachPoll || s.queue.isEmpty() {
		if err := s.scanInputDirectory(); err != nil {
			return nil, err
		}
	}

	var rejected []core.Entry
	defer func() {
		for _, e := range rejected {
			s.queue.returnEntry(e)
		}
	}()

	// Only pop decides emptiness; other receivers may drain the buffer between calls.
	for {
		e, ok := s.queue.pop()
		if !ok {
			return nil, nil
		}
		if s.locker.TryLock(e) {
			msg := core.NewMessage(e)
			s.logger.Info("created message", "message", msg.String())
			return msg, nil
		}
		s.logger.Debug("entry is locked, skipping", "path", e.Path)
		if s.requeueLocked {
			rejected = append(rejected, e)
		}
	}
}

func (s *Source) scanInputDirectory() error {
	fresh, err := s.scanner.scan()
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		return nil
	}
	added := s.queue.add(fresh)
	if len(added) > 0 {
		s.logger.Debug("added entries to queue", "count", len(added))
	}
	return nil
}

// OnFailure puts the message's entry back into the buffer after a failed delivery.
// The filter is not consulted and the entry's lock is not released.
func (s *Source) OnFailure(msg *core.Message, err error) {
	s.logger.Warn("failed to send", "message", msg.String(), "err", err)
	if !s.queue.returnEntry(msg.Payload) {
		s.logger.Debug("entry already queued", "path", msg.Payload.Path)
	}
}

// OnSend records a successful delivery. The entry already left the buffer in Receive.
func (s *Source) OnSend(msg *core.Message) {
	s.logger.Debug("sent", "message", msg.String())
}

// Pending returns the buffered entries in delivery order.
func (s *Source) Pending() []core.Entry {
	return s.queue.snapshot()
}

// Len returns the number of buffered entries.
func (s *Source) Len() int {
	return s.queue.len()
}

package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/filepoll/core"
	"github.com/poiesic/filepoll/lock"
)

// Handler processes one message. A non-nil error marks the delivery as failed.
type Handler func(ctx context.Context, msg *core.Message) error

// MessageSource is the pull side of a delivery. *source.Source implements it.
type MessageSource interface {
	Receive() (*core.Message, error)
	OnSend(msg *core.Message)
	OnFailure(msg *core.Message, err error)
}

// Poller pulls messages from a source and runs a handler for each one on a worker pool.
type Poller struct {
	source      MessageSource
	locker      lock.Locker
	handler     Handler
	pool        *ants.Pool
	interval    time.Duration
	maxMessages int
	maxAttempts int
	baseDelay   time.Duration
	metrics     *Metrics
	progress    io.Writer
	logger      *slog.Logger

	inflight sync.WaitGroup
}

// Stats summarizes a drain.
type Stats struct {
	Received  int
	Delivered int
	Failed    int
}

// Option configures a Poller.
type Option func(*Poller) error

// WithPoolSize sets the worker pool size for concurrent handling.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Poller) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithInterval sets the time between polls in Run.
// Default is 1 second.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		p.interval = interval
		return nil
	}
}

// WithMaxMessagesPerPoll caps the messages received in one poll.
// Default is 10. -1 receives until the source has nothing left.
func WithMaxMessagesPerPoll(n int) Option {
	return func(p *Poller) error {
		if n == 0 || n < -1 {
			return ErrInvalidMaxMessages
		}
		p.maxMessages = n
		return nil
	}
}

// WithRetry sets how often a failing handler is attempted, and the delay before
// the first retry. The delay doubles on each later retry.
// Default is a single attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Poller) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithMetrics records poller activity in m.
// Default is no metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Poller) error {
		p.metrics = m
		return nil
	}
}

// WithProgress makes Drain report progress to w.
func WithProgress(w io.Writer) Option {
	return func(p *Poller) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// New creates a Poller. The locker must be the one the source acquires claims
// from; the poller releases each claim as soon as the handler is done, before the
// message is settled.
func New(src MessageSource, locker lock.Locker, handler Handler, opts ...Option) (*Poller, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}
	if locker == nil {
		return nil, ErrLockerRequired
	}
	if handler == nil {
		return nil, ErrHandlerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Poller{
		source:      src,
		locker:      locker,
		handler:     handler,
		pool:        pool,
		interval:    time.Second,
		maxMessages: 10,
		maxAttempts: 1,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run polls once immediately and then on every interval until ctx is done.
// It waits for in-flight handlers before returning. Receive failures are logged
// and retried on the next tick, except initialization failures, which end Run.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer p.Wait()

	for {
		if _, err := p.Poll(ctx); err != nil {
			if isPermanent(err) {
				return err
			}
			p.logger.Error("poll failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll receives up to the configured number of messages and submits each to the
// worker pool. It returns how many messages were submitted. It does not wait for
// the handlers to finish.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	return p.poll(ctx, p.maxMessages, nil, p.settle)
}

// Drain receives until the source has nothing left, then waits for every handler.
//
// Messages that fail during the drain are handed back to the source only after the
// drain completes, so a persistently failing file is attempted once per drain
// instead of being received again and again.
func (p *Poller) Drain(ctx context.Context) (Stats, error) {
	var (
		mu       sync.Mutex
		stats    Stats
		failures []failedMessage
		tracker  *ProgressTracker
	)
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, 10)
		tracker.Start()
	}

	record := func(msg *core.Message, err error) {
		if tracker != nil {
			tracker.Settled(err == nil)
		}
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			stats.Delivered++
			p.source.OnSend(msg)
			return
		}
		stats.Failed++
		failures = append(failures, failedMessage{msg: msg, err: err})
	}

	var received func()
	if tracker != nil {
		received = func() { tracker.Received(1) }
	}

	n, err := p.poll(ctx, -1, received, record)
	p.Wait()

	stats.Received = n
	p.returnFailures(failures)
	if tracker != nil {
		tracker.Finish()
	}
	if err == nil {
		err = ctx.Err()
	}
	return stats, err
}

type failedMessage struct {
	msg *core.Message
	err error
}

func (p *Poller) returnFailures(failures []failedMessage) {
	for _, f := range failures {
		p.source.OnFailure(f.msg, f.err)
	}
}

func (p *Poller) poll(ctx context.Context, limit int, received func(), settle func(*core.Message, error)) (int, error) {
	submitted := 0
	for limit < 0 || submitted < limit {
		if ctx.Err() != nil {
			return submitted, nil
		}

		msg, err := p.source.Receive()
		if err != nil {
			p.metrics.observeScanError()
			return submitted, err
		}
		if msg == nil {
			return submitted, nil
		}
		p.metrics.observeReceived()
		if received != nil {
			received()
		}

		p.inflight.Add(1)
		err = p.pool.Submit(func() {
			defer p.inflight.Done()
			p.deliver(ctx, msg, settle)
		})
		if err != nil {
			p.inflight.Done()
			p.locker.Unlock(msg.Payload)
			p.source.OnFailure(msg, err)
			return submitted, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
		}
		submitted++
	}
	return submitted, nil
}

func (p *Poller) deliver(ctx context.Context, msg *core.Message, settle func(*core.Message, error)) {
	start := time.Now()
	err := retryWithBackoff(ctx, p.logger, func() error {
		return p.handle(ctx, msg)
	}, p.maxAttempts, p.baseDelay)
	p.metrics.observeHandled(err == nil, time.Since(start))

	if err != nil {
		p.logger.Error("error handling message", "message", msg.String(), "err", err)
	}
	// Release before settling: once OnFailure requeues the entry, another
	// receiver may pop it, and a claim still held there would drop it.
	p.locker.Unlock(msg.Payload)
	settle(msg, err)
}

func (p *Poller) handle(ctx context.Context, msg *core.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return p.handler(ctx, msg)
}

func (p *Poller) settle(msg *core.Message, err error) {
	if err != nil {
		p.source.OnFailure(msg, err)
		return
	}
	p.source.OnSend(msg)
}

// Wait blocks until every submitted message has been settled.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

// Release waits for in-flight handlers and releases the worker pool.
// The poller should not be used after calling Release.
func (p *Poller) Release() {
	p.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, core.ErrFatalConfiguration) || errors.Is(err, core.ErrNotInitialized)
}

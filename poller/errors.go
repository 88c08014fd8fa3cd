package poller

import "errors"

var (
	// ErrSourceRequired is returned when no source is provided.
	ErrSourceRequired = errors.New("source required")

	// ErrLockerRequired is returned when no locker is provided.
	ErrLockerRequired = errors.New("locker required")

	// ErrHandlerRequired is returned when no handler is provided.
	ErrHandlerRequired = errors.New("handler required")

	// ErrInvalidInterval is returned when the poll interval is not positive.
	ErrInvalidInterval = errors.New("poll interval must be positive")

	// ErrInvalidMaxMessages is returned when max messages per poll is zero or below -1.
	ErrInvalidMaxMessages = errors.New("max messages per poll must be positive or -1")

	// ErrInvalidMaxAttempts is returned when max attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrSubmitFailed is returned when a message could not be handed to the worker pool.
	ErrSubmitFailed = errors.New("failed to submit message to worker pool")

	// ErrHandlerPanic wraps a panic recovered from a handler.
	ErrHandlerPanic = errors.New("handler panicked")
)

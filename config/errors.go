package config

import "errors"

var (
	// ErrDirectoryRequired is returned when no directory is configured.
	ErrDirectoryRequired = errors.New("config: directory is required")

	// ErrUnknownLocker is returned when the locker name is not recognized.
	ErrUnknownLocker = errors.New("config: locker must be one of none, memory, flock")

	// ErrInvalidInterval is returned when the poll interval is not positive.
	ErrInvalidInterval = errors.New("config: interval must be positive")

	// ErrInvalidMaxMessages is returned when max_messages is zero or below -1.
	ErrInvalidMaxMessages = errors.New("config: max_messages must be positive or -1")

	// ErrInvalidRetry is returned when the retry settings are out of range.
	ErrInvalidRetry = errors.New("config: retry.max_attempts must be at least 1 and retry.base_delay must not be negative")

	// ErrNegativeValue is returned when a count or duration that must not be negative is.
	ErrNegativeValue = errors.New("config: value must not be negative")
)

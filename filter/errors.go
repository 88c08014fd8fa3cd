package filter

import "errors"

var (
	// ErrInvalidPattern is returned when a glob or regular expression cannot be compiled.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrSeenRepositoryRequired is returned when a persistent filter has no repository.
	ErrSeenRepositoryRequired = errors.New("seen repository required")
)

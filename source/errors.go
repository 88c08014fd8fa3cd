package source

import "errors"

var (
	// ErrDirectoryRequired is returned when no input directory is provided.
	ErrDirectoryRequired = errors.New("input directory required")

	// ErrFilterRequired is returned when a nil filter is provided.
	ErrFilterRequired = errors.New("filter required")

	// ErrLockerRequired is returned when a nil locker is provided.
	ErrLockerRequired = errors.New("locker required")

	// ErrComparatorRequired is returned when a nil comparator is provided.
	ErrComparatorRequired = errors.New("comparator required")

	// ErrUnknownOrder is returned when an ordering name is not recognized.
	ErrUnknownOrder = errors.New("unknown ordering")
)

package core

import (
	"fmt"
	"path/filepath"
)

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - Path must not be empty
//   - Path must be absolute
//   - Size must not be negative
func ValidateEntry(e Entry) error {
	if e.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyPath)
	}

	if !filepath.IsAbs(e.Path) {
		return fmt.Errorf("%w: %w: %s", ErrInvalidEntry, ErrRelativePath, e.Path)
	}

	if e.Size < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrNegativeSize)
	}

	return nil
}

// ValidateSeenRecord validates a SeenRecord before it is persisted.
//
// Validation rules:
//   - Path must not be empty
//   - Key must be IDFromContent(Path)
//   - Size must not be negative
func ValidateSeenRecord(record *SeenRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidSeenRecord)
	}

	if record.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSeenRecord, ErrEmptyPath)
	}

	if record.Key != IDFromContent(record.Path) {
		return fmt.Errorf("%w: %w", ErrInvalidSeenRecord, ErrKeyMismatch)
	}

	if record.Size < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSeenRecord, ErrNegativeSize)
	}

	return nil
}

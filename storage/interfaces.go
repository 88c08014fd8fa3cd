package storage

import (
	"context"

	"github.com/poiesic/filepoll/core"
)

// SeenRepository records which entries have been accepted for delivery.
// Implementations must be thread-safe and support concurrent access.
type SeenRepository interface {
	// MarkSeen stores one or more seen records, replacing any record for the same path.
	// Records are validated with core.ValidateSeenRecord before anything is written.
	MarkSeen(ctx context.Context, records ...*core.SeenRecord) error

	// GetSeen retrieves the record for a path.
	// Returns ErrNotFound if the path has never been seen.
	GetSeen(ctx context.Context, path string) (*core.SeenRecord, error)

	// ListSeen retrieves all records, ordered by path.
	ListSeen(ctx context.Context) ([]*core.SeenRecord, error)

	// Forget removes the records for the given paths so they can be accepted again.
	// Unknown paths are ignored.
	Forget(ctx context.Context, paths ...string) error

	// Close releases resources held by the repository.
	Close() error
}

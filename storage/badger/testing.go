package badger

import "github.com/poiesic/filepoll/storage"

// NewMemorySeenRepository creates an in-memory seen repository for testing.
// Returns the repository, its backend, and error.
// Caller must close both repo and backend when done.
func NewMemorySeenRepository() (storage.SeenRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}

	return NewSeenRepository(backend), backend, nil
}

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


package badger

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/filepoll/core"
	"github.com/poiesic/filepoll/storage"
)

// SeenRepository implements storage.SeenRepository for BadgerDB.
type SeenRepository struct {
	backend *Backend
}

var _ storage.SeenRepository = (*SeenRepository)(nil)

// NewSeenRepository creates a new SeenRepository.
func NewSeenRepository(backend *Backend) storage.SeenRepository {
	return &SeenRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend is closed by its owner.
func (r *SeenRepository) Close() error {
	return nil
}

// MarkSeen stores one or more seen records.
func (r *SeenRepository) MarkSeen(ctx context.Context, records ...*core.SeenRecord) error {
	for _, record := range records {
		if err := core.ValidateSeenRecord(record); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := tx.Set(makeSeenKey(record.Path), storage.MarshalSeenRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetSeen retrieves the record for a path.
func (r *SeenRepository) GetSeen(ctx context.Context, path string) (*core.SeenRecord, error) {
	var record *core.SeenRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSeenKey(path))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			record, unmarshalErr = storage.UnmarshalSeenRecord(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}

	// Distinct paths can collide on the 64-bit key; treat a collision as unseen.
	if record.Path != path {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// ListSeen retrieves all records, ordered by path.
func (r *SeenRepository) ListSeen(ctx context.Context) ([]*core.SeenRecord, error) {
	var records []*core.SeenRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = seenKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalSeenRecord(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(records, func(a, b *core.SeenRecord) int {
		return strings.Compare(a.Path, b.Path)
	})
	return records, nil
}

// Forget removes the records for the given paths.
func (r *SeenRepository) Forget(ctx context.Context, paths ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, path := range paths {
			if err := tx.Delete(makeSeenKey(path)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

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

// Package storage provides the persistence abstraction layer for filepoll.
//
// The only state filepoll persists is the set of entries an accept-once filter
// has already let through. Keeping that set outside the process lets a restarted
// poller skip files it delivered before the restart.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the storage interface:
//
//	repo, err := badger.NewSeenRepository(backend)  // returns storage.SeenRepository
//
// Internal helpers may return concrete types since they're only used within the
// implementation package.
//
// # Usage
//
// Open a backend on disk and create a repository over it:
//
//	backend, err := badger.OpenBackend("/var/lib/filepoll/seen", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo := badger.NewSeenRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemorySeenRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage

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


package core

import "errors"

// Source errors
var (
	// ErrDirectoryAccess indicates the polled directory could not be listed.
	// It fails a single receive; later receives may succeed.
	ErrDirectoryAccess = errors.New("directory not accessible")

	// ErrFatalConfiguration indicates the source could not be initialized.
	// A source that failed initialization never delivers.
	ErrFatalConfiguration = errors.New("fatal configuration error")

	// ErrNotInitialized indicates a receive was attempted before initialization.
	ErrNotInitialized = errors.New("source not initialized")
)

// Domain validation errors
var (
	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidSeenRecord indicates a SeenRecord failed validation.
	ErrInvalidSeenRecord = errors.New("invalid seen record")

	// ErrEmptyPath indicates the Path field is empty.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrRelativePath indicates the Path field is not absolute.
	ErrRelativePath = errors.New("path must be absolute")

	// ErrNegativeSize indicates the Size field is negative.
	ErrNegativeSize = errors.New("size cannot be negative")

	// ErrKeyMismatch indicates a SeenRecord key does not match its path.
	ErrKeyMismatch = errors.New("key does not match path")
)

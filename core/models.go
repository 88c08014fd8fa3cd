package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Entry is a single file discovered in a polled directory.
// Path is the identity of an entry; two entries with the same Path are the same file.
type Entry struct {
	Path    string    // Absolute path of the file
	Name    string    // Base name of the file
	Size    int64     // Size in bytes at discovery time
	ModTime time.Time // Last modification time at discovery time
}

// NewEntry builds an Entry for a file in dir from its directory listing metadata.
func NewEntry(dir string, info fs.FileInfo) Entry {
	return Entry{
		Path:    filepath.Join(dir, info.Name()),
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// Key returns the content-based ID of the entry path.
func (e Entry) Key() ID {
	return IDFromContent(e.Path)
}

func (e Entry) String() string {
	return e.Path
}

// SeenRecord is the persisted form of an accepted entry.
// It lets an accept-once filter survive restarts.
type SeenRecord struct {
	Key        ID
	Path       string
	Size       int64
	ModTime    time.Time // Modification time of the file when it was accepted
	AcceptedAt time.Time // When the entry was accepted
}

// SeenRecordFor creates a SeenRecord for an entry accepted at the given time.
func SeenRecordFor(e Entry, acceptedAt time.Time) *SeenRecord {
	return &SeenRecord{
		Key:        e.Key(),
		Path:       e.Path,
		Size:       e.Size,
		ModTime:    e.ModTime.UTC(),
		AcceptedAt: acceptedAt.UTC(),
	}
}

// Matches reports whether the record describes the same version of the entry.
// Timestamps are compared at microsecond precision, which is what the record stores.
func (r *SeenRecord) Matches(e Entry) bool {
	return r.Path == e.Path &&
		r.Size == e.Size &&
		r.ModTime.UnixMicro() == e.ModTime.UnixMicro()
}

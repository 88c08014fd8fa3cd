package badger

import (
	"fmt"

	"github.com/poiesic/filepoll/core"
)

// Key prefixes for different data types
const (
	seenRecordPrefix = "seen"
)

// makeSeenKey generates a key for a seen record by path.
// Paths are hashed so keys have a fixed, filesystem-independent shape.
func makeSeenKey(path string) []byte {
	return []byte(fmt.Sprintf("%s:%d", seenRecordPrefix, core.IDFromContent(path)))
}

// seenKeyPrefix is the iteration prefix covering every seen record.
func seenKeyPrefix() []byte {
	return []byte(seenRecordPrefix + ":")
}

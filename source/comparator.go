package source

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/poiesic/filepoll/core"
)

// Comparator orders entries in the pending buffer.
// It returns a negative number when a should be delivered before b, a positive
// number when after, and zero when either order is fine. Ties are broken by the
// order in which the entries entered the buffer.
type Comparator func(a, b core.Entry) int

// ByPath orders entries lexically by path. This is the default.
func ByPath(a, b core.Entry) int {
	return strings.Compare(a.Path, b.Path)
}

// ByName orders entries lexically by base name.
func ByName(a, b core.Entry) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return ByPath(a, b)
}

// ByModTime orders entries oldest first.
func ByModTime(a, b core.Entry) int {
	if c := a.ModTime.Compare(b.ModTime); c != 0 {
		return c
	}
	return ByPath(a, b)
}

// BySize orders entries smallest first.
func BySize(a, b core.Entry) int {
	if c := cmp.Compare(a.Size, b.Size); c != 0 {
		return c
	}
	return ByPath(a, b)
}

// InsertionOrder treats all entries as equal, so the buffer behaves as a FIFO.
func InsertionOrder(a, b core.Entry) int {
	return 0
}

// Reverse inverts a comparator.
func Reverse(c Comparator) Comparator {
	return func(a, b core.Entry) int {
		return c(b, a)
	}
}

// ComparatorByName resolves a configured ordering name.
// Recognized names: path, name, modified, size, insertion.
func ComparatorByName(name string) (Comparator, error) {
	switch strings.ToLower(name) {
	case "", "path":
		return ByPath, nil
	case "name":
		return ByName, nil
	case "modified":
		return ByModTime, nil
	case "size":
		return BySize, nil
	case "insertion":
		return InsertionOrder, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, name)
	}
}

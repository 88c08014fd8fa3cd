package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/filepoll/core"
)

func TestComparators(t *testing.T) {
	now := time.Now()
	small := core.Entry{Path: "/x/zeta", Name: "zeta", Size: 1, ModTime: now}
	large := core.Entry{Path: "/a/alpha", Name: "alpha", Size: 100, ModTime: now.Add(-time.Hour)}

	tests := []struct {
		name string
		cmp  Comparator
		want int
	}{
		{"path", ByPath, 1},
		{"name", ByName, 1},
		{"modified", ByModTime, 1},
		{"size", BySize, -1},
		{"insertion", InsertionOrder, 0},
		{"reverse size", Reverse(BySize), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cmp(small, large)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestComparators_TieBreakOnPath(t *testing.T) {
	ts := time.Now()
	a := core.Entry{Path: "/in/a", Name: "a", Size: 5, ModTime: ts}
	b := core.Entry{Path: "/in/b", Name: "b", Size: 5, ModTime: ts}

	assert.Negative(t, ByModTime(a, b))
	assert.Negative(t, BySize(a, b))
}

func TestComparatorByName(t *testing.T) {
	for _, name := range []string{"", "path", "NAME", "modified", "size", "insertion"} {
		c, err := ComparatorByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}

	_, err := ComparatorByName("random")
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

package filter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/filepoll/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(names ...string) []core.Entry {
	out := make([]core.Entry, len(names))
	for i, name := range names {
		out[i] = core.Entry{Path: filepath.Join("/in", name), Name: name, Size: int64(i + 1)}
	}
	return out
}

func names(es []core.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func TestAcceptAll(t *testing.T) {
	in := entries("a", "b")
	assert.Equal(t, in, AcceptAll().Filter(in))
}

func TestPredicate(t *testing.T) {
	f := Predicate(func(e core.Entry) bool { return e.Size > 1 })
	assert.Equal(t, []string{"b", "c"}, names(f.Filter(entries("a", "b", "c"))))
}

func TestChain_AppliesInOrder(t *testing.T) {
	once := NewAcceptOnce(0)
	f := Chain(IgnoreHidden(), Must(NewPattern([]string{"*.csv"}, nil)), once)

	got := f.Filter(entries(".hidden.csv", "a.csv", "b.txt", "c.csv"))
	assert.Equal(t, []string{"a.csv", "c.csv"}, names(got))

	// Only entries that passed the earlier filters were remembered.
	assert.Equal(t, 2, once.Len())
	assert.Empty(t, f.Filter(entries("a.csv", "c.csv")))
}

func TestChain_StopsOnEmpty(t *testing.T) {
	called := false
	probe := Func(func(es []core.Entry) []core.Entry {
		called = true
		return es
	})

	got := Chain(Predicate(func(core.Entry) bool { return false }), probe).Filter(entries("a"))
	assert.Empty(t, got)
	assert.False(t, called, "filters after an empty result should not run")
}

func TestChain_Empty(t *testing.T) {
	in := entries("a")
	assert.Equal(t, in, Chain().Filter(in))
}

func TestMust_Panics(t *testing.T) {
	assert.Panics(t, func() {
		Must(NewRegex("("))
	})
}

func TestLastModified(t *testing.T) {
	now := time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC)
	f := NewLastModified(time.Minute).WithClock(func() time.Time { return now })

	in := []core.Entry{
		{Path: "/in/old", Name: "old", ModTime: now.Add(-time.Hour)},
		{Path: "/in/edge", Name: "edge", ModTime: now.Add(-time.Minute)},
		{Path: "/in/fresh", Name: "fresh", ModTime: now.Add(-time.Second)},
	}

	got := f.Filter(in)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"old", "edge"}, names(got))
}

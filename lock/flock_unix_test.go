//go:build unix

package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/filepoll/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlock_ExclusiveAcrossLockers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	e := core.Entry{Path: path, Name: "a.txt"}

	first := NewFlock(nil)
	second := NewFlock(nil)

	require.True(t, first.TryLock(e))
	assert.False(t, first.TryLock(e), "same locker must not claim twice")
	assert.False(t, second.TryLock(e), "separate descriptors must see the flock")

	first.Unlock(e)
	assert.True(t, second.TryLock(e))
	second.Unlock(e)
}

func TestFlock_MissingFile(t *testing.T) {
	l := NewFlock(nil)
	assert.False(t, l.TryLock(core.Entry{Path: filepath.Join(t.TempDir(), "gone")}))
}

package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/filepoll/core"
	"github.com/poiesic/filepoll/filter"
	"github.com/poiesic/filepoll/lock"
)

// rejectingLocker refuses claims for a configurable set of file names.
type rejectingLocker struct {
	mu       sync.Mutex
	reject   map[string]bool
	attempts map[string]int
}

func newRejectingLocker(names ...string) *rejectingLocker {
	l := &rejectingLocker{reject: make(map[string]bool), attempts: make(map[string]int)}
	for _, n := range names {
		l.reject[n] = true
	}
	return l
}

func (l *rejectingLocker) TryLock(e core.Entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[e.Name]++
	return !l.reject[e.Name]
}

func (l *rejectingLocker) Unlock(core.Entry) {}

func (l *rejectingLocker) allow(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.reject, name)
}

func (l *rejectingLocker) attemptsFor(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attempts[name]
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0644))
	}
}

func newTestSource(t *testing.T, dir string, opts ...Option) *Source {
	t.Helper()
	src, err := New(dir, opts...)
	require.NoError(t, err)
	require.NoError(t, src.Initialize())
	return src
}

func receiveName(t *testing.T, src *Source) string {
	t.Helper()
	msg, err := src.Receive()
	require.NoError(t, err)
	if msg == nil {
		return ""
	}
	return msg.Payload.Name
}

func pendingNames(src *Source) []string {
	var names []string
	for _, e := range src.Pending() {
		names = append(names, e.Name)
	}
	return names
}

func TestNew_Validation(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrDirectoryRequired)

	_, err = New(t.TempDir(), WithFilter(nil))
	assert.ErrorIs(t, err, ErrFilterRequired)

	_, err = New(t.TempDir(), WithLocker(nil))
	assert.ErrorIs(t, err, ErrLockerRequired)

	_, err = New(t.TempDir(), WithComparator(nil))
	assert.ErrorIs(t, err, ErrComparatorRequired)
}

func TestNew_ResolvesAbsolutePath(t *testing.T) {
	src, err := New("relative/inbox")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(src.Directory()))
}

func TestInitialize_AutoCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "inbox")

	src := newTestSource(t, dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "", receiveName(t, src))
}

func TestInitialize_MissingDirectoryWithoutAutoCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	src, err := New(dir, WithAutoCreateDirectory(false))
	require.NoError(t, err)

	err = src.Initialize()
	require.ErrorIs(t, err, core.ErrFatalConfiguration)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "directory must not be created")

	// The failure is permanent, even once the directory shows up
	require.NoError(t, os.Mkdir(dir, 0755))
	writeFiles(t, dir, "a.txt")

	assert.ErrorIs(t, src.Initialize(), core.ErrFatalConfiguration)
	for range 3 {
		msg, err := src.Receive()
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, core.ErrFatalConfiguration)
	}
}

func TestInitialize_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	src, err := New(path)
	require.NoError(t, err)

	err = src.Initialize()
	assert.ErrorIs(t, err, core.ErrFatalConfiguration)
}

func TestInitialize_UnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(dir, 0))
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	src, err := New(dir)
	require.NoError(t, err)
	assert.ErrorIs(t, src.Initialize(), core.ErrFatalConfiguration)
}

func TestReceive_BeforeInitialize(t *testing.T) {
	src, err := New(t.TempDir())
	require.NoError(t, err)

	msg, err := src.Receive()
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

func TestReceive_DrainsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "C", "A", "B")
	src := newTestSource(t, dir)

	assert.Equal(t, "A", receiveName(t, src))
	assert.Equal(t, []string{"B", "C"}, pendingNames(src))

	assert.Equal(t, "B", receiveName(t, src))
	assert.Equal(t, "C", receiveName(t, src))

	// Unchanged directory: accept-once offers nothing new
	assert.Equal(t, "", receiveName(t, src))
	assert.Zero(t, src.Len())
}

func TestReceive_MessageWrapsEntry(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "report.csv")
	src := newTestSource(t, dir)

	msg, err := src.Receive()
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, filepath.Join(src.Directory(), "report.csv"), msg.Payload.Path)
	assert.Equal(t, int64(len("report.csv")), msg.Payload.Size)
	assert.Equal(t, "report.csv", msg.Headers[core.HeaderFileName])
	assert.Equal(t, msg.Payload.Path, msg.Headers[core.HeaderFilePath])
}

func TestReceive_SkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a-subdir"), 0755))
	writeFiles(t, dir, "b.txt")
	src := newTestSource(t, dir)

	assert.Equal(t, "b.txt", receiveName(t, src))
	assert.Equal(t, "", receiveName(t, src))
}

func TestReceive_NoDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a", "b", "c")
	src := newTestSource(t, dir, WithScanEachPoll(true))

	seen := make(map[string]bool)
	for range 10 {
		msg, err := src.Receive()
		require.NoError(t, err)
		if msg == nil {
			continue
		}
		assert.False(t, seen[msg.Payload.Path], "duplicate delivery of %s", msg.Payload.Path)
		seen[msg.Payload.Path] = true
	}
	assert.Len(t, seen, 3)
}

func TestReceive_ConcurrentCallersGetDistinctEntries(t *testing.T) {
	dir := t.TempDir()
	const total = 200
	for i := range total {
		writeFiles(t, dir, fmt.Sprintf("file-%03d", i))
	}
	src := newTestSource(t, dir, WithScanEachPoll(true), WithLocker(lock.NewMemory()))

	var (
		mu        sync.Mutex
		delivered = make(map[string]int)
		wg        sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				msg, err := src.Receive()
				if err != nil || msg == nil {
					return
				}
				mu.Lock()
				delivered[msg.Payload.Path]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Whoever scanned first drains what it added, so everything is delivered
	assert.Len(t, delivered, total)
	for path, n := range delivered {
		assert.Equal(t, 1, n, "path %s delivered %d times", path, n)
	}
}

func TestReceive_LockerRejectsEverything(t *testing.T) {
	for _, requeue := range []bool{false, true} {
		t.Run(fmt.Sprintf("requeue=%v", requeue), func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, "a", "b", "c")
			locker := newRejectingLocker("a", "b", "c")
			src := newTestSource(t, dir, WithLocker(locker), WithRequeueLocked(requeue))

			msg, err := src.Receive()
			require.NoError(t, err)
			assert.Nil(t, msg)

			// Every entry was tried exactly once in this call
			for _, n := range []string{"a", "b", "c"} {
				assert.Equal(t, 1, locker.attemptsFor(n))
			}
			if requeue {
				assert.Equal(t, []string{"a", "b", "c"}, pendingNames(src))
			} else {
				assert.Zero(t, src.Len())
			}
		})
	}
}

func TestReceive_LockedEntryStaysBehindDeliveredOne(t *testing.T) {
	for _, requeue := range []bool{false, true} {
		t.Run(fmt.Sprintf("requeue=%v", requeue), func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, "A", "B", "C")
			locker := newRejectingLocker("B")
			src := newTestSource(t, dir, WithLocker(locker), WithRequeueLocked(requeue))

			assert.Equal(t, "A", receiveName(t, src))
			assert.Equal(t, []string{"B", "C"}, pendingNames(src))
			assert.Zero(t, locker.attemptsFor("B"))

			locker.allow("B")
			assert.Equal(t, "B", receiveName(t, src))
			assert.Equal(t, "C", receiveName(t, src))
		})
	}
}

func TestReceive_RejectedEntryDroppedByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "A", "B", "C")
	locker := newRejectingLocker("A")
	src := newTestSource(t, dir, WithLocker(locker))

	assert.Equal(t, "B", receiveName(t, src))
	assert.Equal(t, []string{"C"}, pendingNames(src))

	// Accept-once never offers A again, so unlocking it changes nothing
	locker.allow("A")
	assert.Equal(t, "C", receiveName(t, src))
	assert.Equal(t, "", receiveName(t, src))
	assert.Equal(t, 1, locker.attemptsFor("A"))
}

func TestReceive_RejectedEntryRequeued(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "A", "B", "C")
	locker := newRejectingLocker("A")
	src := newTestSource(t, dir, WithLocker(locker), WithRequeueLocked(true))

	assert.Equal(t, "B", receiveName(t, src))
	assert.Equal(t, 1, locker.attemptsFor("A"), "rejected entry must not be retried within the same call")
	assert.Equal(t, []string{"A", "C"}, pendingNames(src))

	locker.allow("A")
	assert.Equal(t, "A", receiveName(t, src))
	assert.Equal(t, "C", receiveName(t, src))
}

func TestOnFailure_ReturnsEntry(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a", "b")
	src := newTestSource(t, dir)

	msg, err := src.Receive()
	require.NoError(t, err)
	require.NotNil(t, msg)

	src.OnFailure(msg, errors.New("downstream unavailable"))

	again, err := src.Receive()
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, msg.Payload, again.Payload)
	assert.NotEqual(t, msg.ID, again.ID)
}

func TestOnFailure_DoesNotDuplicateQueuedEntry(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a", "b")
	src := newTestSource(t, dir)

	msg, err := src.Receive()
	require.NoError(t, err)
	require.NotNil(t, msg)

	src.OnFailure(msg, errors.New("first"))
	src.OnFailure(msg, errors.New("second"))
	assert.Equal(t, 2, src.Len())
}

func TestOnFailure_DoesNotReleaseLock(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a")
	locker := lock.NewMemory()
	src := newTestSource(t, dir, WithLocker(locker))

	msg, err := src.Receive()
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.True(t, locker.IsLocked(msg.Payload))

	src.OnFailure(msg, errors.New("boom"))
	assert.True(t, locker.IsLocked(msg.Payload))

	// Still claimed, so the returned entry is skipped until released
	assert.Equal(t, "", receiveName(t, src))

	src.OnFailure(msg, errors.New("boom"))
	locker.Unlock(msg.Payload)
	assert.Equal(t, "a", receiveName(t, src))
}

func TestOnSend_LeavesBufferAlone(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a", "b")
	src := newTestSource(t, dir)

	msg, err := src.Receive()
	require.NoError(t, err)
	src.OnSend(msg)
	assert.Equal(t, []string{"b"}, pendingNames(src))
}

func TestScan_MergeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a", "b", "c")

	t.Run("accept once", func(t *testing.T) {
		src := newTestSource(t, dir)
		require.NoError(t, src.scanInputDirectory())
		require.NoError(t, src.scanInputDirectory())
		assert.Equal(t, 3, src.Len())
	})

	t.Run("accept all", func(t *testing.T) {
		src := newTestSource(t, dir, WithFilter(filter.AcceptAll()))
		require.NoError(t, src.scanInputDirectory())
		require.NoError(t, src.scanInputDirectory())
		assert.Equal(t, 3, src.Len())
	})
}

func TestReceive_ScanOnlyWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b", "c")
	src := newTestSource(t, dir)

	assert.Equal(t, "b", receiveName(t, src))

	// The buffer still holds c, so the new file is not seen yet
	writeFiles(t, dir, "a")
	assert.Equal(t, "c", receiveName(t, src))
	assert.Equal(t, "a", receiveName(t, src))
}

func TestReceive_ScanEachPoll(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b", "c")
	src := newTestSource(t, dir, WithScanEachPoll(true))

	assert.Equal(t, "b", receiveName(t, src))

	writeFiles(t, dir, "a")
	assert.Equal(t, "a", receiveName(t, src))
	assert.Equal(t, "c", receiveName(t, src))
}

func TestReceive_DirectoryAccessErrorKeepsBuffer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	require.NoError(t, os.Mkdir(dir, 0755))
	writeFiles(t, dir, "a", "b", "c")
	src := newTestSource(t, dir, WithScanEachPoll(true))

	assert.Equal(t, "a", receiveName(t, src))
	require.NoError(t, os.Rename(dir, dir+".moved"))

	msg, err := src.Receive()
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, core.ErrDirectoryAccess)
	assert.Equal(t, []string{"b", "c"}, pendingNames(src))

	// Recovers once the directory is back
	require.NoError(t, os.Rename(dir+".moved", dir))
	assert.Equal(t, "b", receiveName(t, src))
}

func TestReceive_Comparator(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a", "b", "c")
	src := newTestSource(t, dir, WithComparator(Reverse(ByPath)))

	assert.Equal(t, "c", receiveName(t, src))
	assert.Equal(t, "b", receiveName(t, src))
	assert.Equal(t, "a", receiveName(t, src))
}

func TestReceive_FilterChain(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "keep.csv", "skip.tmp", ".hidden.csv")

	pattern, err := filter.NewPattern([]string{"*.csv"}, nil)
	require.NoError(t, err)
	f := filter.Chain(filter.IgnoreHidden(), pattern, filter.NewAcceptOnce(0))
	src := newTestSource(t, dir, WithFilter(f))

	assert.Equal(t, "keep.csv", receiveName(t, src))
	assert.Equal(t, "", receiveName(t, src))
}

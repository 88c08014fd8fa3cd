package storage

import (
	"testing"
	"time"

	"github.com/poiesic/filepoll/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	id := core.IDFromContent("/in/a.txt")

	decoded, err := UnmarshalID(MarshalID(id))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestUnmarshalID_Empty(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalSeenRecord(t *testing.T) {
	mod := time.Date(2025, 1, 2, 3, 4, 5, 678901000, time.UTC)
	record := core.SeenRecordFor(core.Entry{Path: "/in/report.csv", Size: 1024, ModTime: mod}, mod.Add(time.Minute))

	decoded, err := UnmarshalSeenRecord(MarshalSeenRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record.Key, decoded.Key)
	assert.Equal(t, record.Path, decoded.Path)
	assert.Equal(t, record.Size, decoded.Size)
	assert.True(t, record.ModTime.Equal(decoded.ModTime))
	assert.True(t, record.AcceptedAt.Equal(decoded.AcceptedAt))
}

func TestUnmarshalSeenRecord_Truncated(t *testing.T) {
	record := core.SeenRecordFor(core.Entry{Path: "/in/report.csv", Size: 1024}, time.Now())
	data := MarshalSeenRecord(record)

	_, err := UnmarshalSeenRecord(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

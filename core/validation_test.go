package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{
			name:    "valid entry",
			entry:   Entry{Path: "/in/a.txt", Name: "a.txt", Size: 10, ModTime: time.Now()},
			wantErr: nil,
		},
		{
			name:    "valid empty file",
			entry:   Entry{Path: "/in/empty", Name: "empty"},
			wantErr: nil,
		},
		{
			name:    "empty path",
			entry:   Entry{Name: "a.txt"},
			wantErr: ErrEmptyPath,
		},
		{
			name:    "relative path",
			entry:   Entry{Path: "in/a.txt", Name: "a.txt"},
			wantErr: ErrRelativePath,
		},
		{
			name:    "negative size",
			entry:   Entry{Path: "/in/a.txt", Name: "a.txt", Size: -1},
			wantErr: ErrNegativeSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntry() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("ValidateEntry() error = %v, want wrapped %v", err, ErrInvalidEntry)
			}
		})
	}
}

func TestValidateSeenRecord(t *testing.T) {
	valid := SeenRecordFor(Entry{Path: "/in/a.txt", Size: 3}, time.Now())

	tests := []struct {
		name    string
		record  *SeenRecord
		wantErr error
	}{
		{
			name:    "valid record",
			record:  valid,
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidSeenRecord,
		},
		{
			name:    "empty path",
			record:  &SeenRecord{Key: IDFromContent("")},
			wantErr: ErrEmptyPath,
		},
		{
			name:    "key mismatch",
			record:  &SeenRecord{Key: 7, Path: "/in/a.txt"},
			wantErr: ErrKeyMismatch,
		},
		{
			name:    "negative size",
			record:  &SeenRecord{Key: IDFromContent("/in/a.txt"), Path: "/in/a.txt", Size: -5},
			wantErr: ErrNegativeSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeenRecord(tt.record)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSeenRecord() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateSeenRecord() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSeenRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

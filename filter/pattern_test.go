package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern(t *testing.T) {
	tests := []struct {
		name     string
		includes []string
		excludes []string
		want     []string
	}{
		{"no patterns", nil, nil, []string{"a.csv", "b.txt", "c.csv.part"}},
		{"include extension", []string{"*.csv"}, nil, []string{"a.csv"}},
		{"include double star prefix", []string{"**/*.txt"}, nil, []string{"b.txt"}},
		{"exclude partial uploads", nil, []string{"*.part"}, []string{"a.csv", "b.txt"}},
		{"include and exclude", []string{"*"}, []string{"b.*"}, []string{"a.csv", "c.csv.part"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewPattern(tt.includes, tt.excludes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(f.Filter(entries("a.csv", "b.txt", "c.csv.part"))))
		})
	}
}

func TestNewPattern_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		includes []string
		excludes []string
	}{
		{"empty include", []string{""}, nil},
		{"bad include syntax", []string{"[a-"}, nil},
		{"bad exclude syntax", nil, []string{"file["}},
		{"path pattern", []string{"sub/*.csv"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPattern(tt.includes, tt.excludes)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestRegex(t *testing.T) {
	f, err := NewRegex(`^report-\d+\.json$`)
	require.NoError(t, err)

	got := f.Filter(entries("report-1.json", "report-x.json", "report-22.json"))
	assert.Equal(t, []string{"report-1.json", "report-22.json"}, names(got))
}

func TestNewRegex_Invalid(t *testing.T) {
	_, err := NewRegex(`(unclosed`)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestIgnoreHidden(t *testing.T) {
	got := IgnoreHidden().Filter(entries(".DS_Store", "a.txt", ".tmp-upload"))
	assert.Equal(t, []string{"a.txt"}, names(got))
}

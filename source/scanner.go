package source

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/filepoll/core"
	"github.com/poiesic/filepoll/filter"
)

// scanner lists a directory and narrows the listing with a filter.
type scanner struct {
	directory string
	filter    filter.Filter
	logger    *slog.Logger
}

// list returns the files directly inside the directory. Subdirectories are
// skipped, as are files that vanish between the listing and the stat.
func (s *scanner) list() ([]core.Entry, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("%w: the path [%s] does not denote a properly accessible directory: %w",
			core.ErrDirectoryAccess, s.directory, err)
	}

	entries := make([]core.Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		if d.IsDir() {
			continue
		}
		info, err := d.Info()
		if err != nil {
			s.logger.Debug("skipping entry without metadata", "name", d.Name(), "err", err)
			continue
		}
		entries = append(entries, core.NewEntry(s.directory, info))
	}
	return entries, nil
}

// scan lists the directory and returns the entries the filter accepts.
func (s *scanner) scan() ([]core.Entry, error) {
	entries, err := s.list()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return s.filter.Filter(entries), nil
}

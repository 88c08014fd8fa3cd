// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/poiesic/filepoll/core"
)

// Pattern keeps entries whose file name matches at least one include glob and no
// exclude glob. With no include globs every name is included.
//
// Globs use filepath.Match syntax. A leading "**/" is accepted and ignored, since
// a polled directory is flat and only base names are matched.
type Pattern struct {
	includes []string
	excludes []string
}

var _ Filter = (*Pattern)(nil)

// NewPattern creates a pattern filter, validating every glob.
func NewPattern(includes, excludes []string) (*Pattern, error) {
	p := &Pattern{}
	for _, pattern := range includes {
		normalized, err := normalizePattern(pattern)
		if err != nil {
			return nil, err
		}
		p.includes = append(p.includes, normalized)
	}
	for _, pattern := range excludes {
		normalized, err := normalizePattern(pattern)
		if err != nil {
			return nil, err
		}
		p.excludes = append(p.excludes, normalized)
	}
	return p, nil
}

// normalizePattern strips a "**/" prefix and checks the glob syntax.
func normalizePattern(pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	normalized := strings.TrimPrefix(filepath.ToSlash(pattern), "**/")
	if strings.Contains(normalized, "/") {
		return "", fmt.Errorf("%w: pattern '%s' must match a file name, not a path", ErrInvalidPattern, pattern)
	}

	// filepath.Match only reports bad syntax when it gets far enough to see it,
	// so match against a name long enough to reach the end of the pattern.
	if _, err := filepath.Match(normalized, strings.Repeat("x", len(normalized)+1)); err != nil {
		return "", fmt.Errorf("%w: invalid glob pattern '%s': %w", ErrInvalidPattern, pattern, err)
	}
	return normalized, nil
}

// Filter returns the entries whose names pass the include and exclude globs.
func (p *Pattern) Filter(entries []core.Entry) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if p.shouldInclude(e.Name) && !p.shouldExclude(e.Name) {
			out = append(out, e)
		}
	}
	return out
}

func (p *Pattern) shouldInclude(name string) bool {
	if len(p.includes) == 0 {
		return true
	}
	return matchAny(p.includes, name)
}

func (p *Pattern) shouldExclude(name string) bool {
	return matchAny(p.excludes, name)
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if pattern == "*" {
			return true
		}
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// Regex keeps entries whose file name matches a regular expression.
type Regex struct {
	re *regexp.Regexp
}

var _ Filter = (*Regex)(nil)

// NewRegex compiles expr into a name filter.
func NewRegex(expr string) (*Regex, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return &Regex{re: re}, nil
}

// Filter returns the entries whose names match the expression.
func (r *Regex) Filter(entries []core.Entry) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if r.re.MatchString(e.Name) {
			out = append(out, e)
		}
	}
	return out
}

// IgnoreHidden returns a Filter that drops dot-files.
func IgnoreHidden() Filter {
	return Predicate(func(e core.Entry) bool {
		return !strings.HasPrefix(e.Name, ".")
	})
}

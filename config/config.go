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


package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/filepoll/source"
)

// Locker names accepted in Config.Locker.
const (
	LockerNone   = "none"
	LockerMemory = "memory"
	LockerFlock  = "flock"
)

// Config holds the settings for an inbox and its poller.
type Config struct {
	// Directory is the directory to poll. Relative paths are resolved against the
	// working directory.
	Directory string `yaml:"directory"`

	// AutoCreate creates the directory on startup if it does not exist.
	// Default: true
	AutoCreate bool `yaml:"auto_create"`

	// ScanEachPoll rescans the directory on every receive instead of only when
	// the buffer runs dry.
	ScanEachPoll bool `yaml:"scan_each_poll"`

	// RequeueLocked puts entries the locker rejected back into the buffer.
	RequeueLocked bool `yaml:"requeue_locked"`

	// Order is the delivery order: path, name, modified, size or insertion.
	// Default: path
	Order string `yaml:"order"`

	// Reverse inverts Order.
	Reverse bool `yaml:"reverse"`

	// Include and Exclude are glob patterns matched against file names.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// Pattern is a regular expression file names must match.
	Pattern string `yaml:"pattern"`

	// IgnoreHidden skips dot-files.
	// Default: true
	IgnoreHidden bool `yaml:"ignore_hidden"`

	// MinAge skips files modified more recently than this, so half-written files
	// are left alone.
	MinAge Duration `yaml:"min_age"`

	// MaxSeen bounds the in-memory accept-once filter. 0 means unbounded.
	// Ignored when SeenDB is set.
	MaxSeen int `yaml:"max_seen"`

	// SeenDB is the badger directory that remembers accepted files across
	// restarts. Empty means accepted files are remembered in memory only.
	SeenDB string `yaml:"seen_db"`

	// Locker is none, memory or flock.
	// Default: memory
	Locker string `yaml:"locker"`

	// Interval is the time between polls.
	// Default: 1s
	Interval Duration `yaml:"interval"`

	// MaxMessages caps the messages received per poll. -1 means no cap.
	// Default: 10
	MaxMessages int `yaml:"max_messages"`

	// PoolSize is the number of concurrent handlers.
	// Default: runtime.NumCPU() / 2, at least 1
	PoolSize int `yaml:"pool_size"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig controls how a failing handler is retried.
type RetryConfig struct {
	// MaxAttempts includes the first attempt.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// BaseDelay is the wait before the first retry. It doubles on each retry.
	// Default: 500ms
	BaseDelay Duration `yaml:"base_delay"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDirectory sets the polled directory.
func WithDirectory(dir string) ConfigOption {
	return func(c *Config) {
		c.Directory = dir
	}
}

// WithSeenDB sets the badger directory for persistent accept-once.
func WithSeenDB(path string) ConfigOption {
	return func(c *Config) {
		c.SeenDB = path
	}
}

// WithLocker sets the locker name.
func WithLocker(name string) ConfigOption {
	return func(c *Config) {
		c.Locker = name
	}
}

// WithInclude sets the include globs.
func WithInclude(patterns ...string) ConfigOption {
	return func(c *Config) {
		c.Include = patterns
	}
}

// WithExclude sets the exclude globs.
func WithExclude(patterns ...string) ConfigOption {
	return func(c *Config) {
		c.Exclude = patterns
	}
}

// WithOrder sets the delivery order and whether it is reversed.
func WithOrder(order string, reverse bool) ConfigOption {
	return func(c *Config) {
		c.Order = order
		c.Reverse = reverse
	}
}

// WithInterval sets the poll interval.
func WithInterval(interval time.Duration) ConfigOption {
	return func(c *Config) {
		c.Interval = Duration(interval)
	}
}

// WithMinAge sets the minimum file age.
func WithMinAge(age time.Duration) ConfigOption {
	return func(c *Config) {
		c.MinAge = Duration(age)
	}
}

// DefaultConfig returns a Config with defaults for everything except Directory.
func DefaultConfig() *Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &Config{
		AutoCreate:   true,
		Order:        "path",
		IgnoreHidden: true,
		Locker:       LockerMemory,
		Interval:     Duration(time.Second),
		MaxMessages:  10,
		PoolSize:     poolSize,
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   Duration(500 * time.Millisecond),
		},
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithDirectory("/var/spool/inbox"),
//	    WithInclude("*.csv"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a YAML file over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse reads YAML bytes over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Normalize puts names into canonical lower case.
func (c *Config) Normalize() {
	c.Order = strings.ToLower(strings.TrimSpace(c.Order))
	c.Locker = strings.ToLower(strings.TrimSpace(c.Locker))
	if c.Locker == "" {
		c.Locker = LockerNone
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Directory == "" {
		return ErrDirectoryRequired
	}
	if _, err := source.ComparatorByName(c.Order); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Locker {
	case LockerNone, LockerMemory, LockerFlock:
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownLocker, c.Locker)
	}
	if c.Interval <= 0 {
		return ErrInvalidInterval
	}
	if c.MaxMessages == 0 || c.MaxMessages < -1 {
		return ErrInvalidMaxMessages
	}
	if c.Retry.MaxAttempts < 1 || c.Retry.BaseDelay < 0 {
		return ErrInvalidRetry
	}
	if c.MinAge < 0 {
		return fmt.Errorf("%w: min_age", ErrNegativeValue)
	}
	if c.MaxSeen < 0 {
		return fmt.Errorf("%w: max_seen", ErrNegativeValue)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: pool_size", ErrNegativeValue)
	}
	return nil
}

// Comparator resolves Order and Reverse into a source.Comparator.
func (c *Config) Comparator() (source.Comparator, error) {
	cmp, err := source.ComparatorByName(c.Order)
	if err != nil {
		return nil, err
	}
	if c.Reverse {
		cmp = source.Reverse(cmp)
	}
	return cmp, nil
}

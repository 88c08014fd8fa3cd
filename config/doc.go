// Package config holds the YAML configuration for an inbox: which directory to
// poll, how entries are filtered, ordered and claimed, and how the poller runs.
package config

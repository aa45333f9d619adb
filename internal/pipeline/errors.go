package pipeline

import (
	"errors"
	"fmt"
)

// ErrPathNotFound is wrapped by Discover when the root is missing, not a
// directory, or unreadable.
var ErrPathNotFound = errors.New("path not found")

// ErrRunnerUsed is returned when Run is called more than once.
var ErrRunnerUsed = errors.New("runner already used")

// ConfigError is a fatal, run-wide configuration problem detected before
// discovery. Nothing is converted when it is returned.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string  { return "configuration error: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// DiscoveryError is a fatal failure to walk the root directory.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed for %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

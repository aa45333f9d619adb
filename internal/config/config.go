// Package config holds runtime configuration: defaults, CLI flag binding,
// YAML config files, and validation. Defaults convert wma to mp3 at high
// quality and leave the originals alone.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/backmassage/audioconv/internal/catalog"
)

// ErrSameFormat is returned when the input and output formats are equal.
// It is a run-wide precondition: no file is discovered or converted.
var ErrSameFormat = errors.New("input and output formats are the same, conversion not needed")

// --- Enum types for validated string fields ---

// PostAction selects what happens to an original after a successful conversion.
type PostAction string

const (
	ActionNone   PostAction = "none"   // Leave the original in place (default).
	ActionRemove PostAction = "remove" // Delete the original.
	ActionMove   PostAction = "move"   // Move it into BackupDir and log its old path.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// LogLevel is the minimum level written by the logger.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// ProvenanceFile is the name of the provenance log kept inside BackupDir.
const ProvenanceFile = "original_locations.txt"

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by a YAML file ([LoadFile]) and by explicitly set CLI
// flags, then passed by pointer to the packages that need it.
type Config struct {
	// Run inputs.
	RootDir      string          `yaml:"folder_path"`
	InputFormat  catalog.Format  `yaml:"input_format"`
	OutputFormat catalog.Format  `yaml:"output_format"`
	Quality      catalog.Quality `yaml:"audio_quality"`
	Overwrite    bool            `yaml:"overwrite"`

	// Post-conversion disposition of originals.
	Action    PostAction `yaml:"action"`
	BackupDir string     `yaml:"backup_dir"` // Default: "audio_backup"; made absolute by Validate.

	// Scheduling.
	Workers int  `yaml:"jobs"` // 0 means one worker per CPU.
	DryRun  bool `yaml:"dry_run"`

	// Display and logging.
	Verbose    bool      `yaml:"verbose"`
	ColorMode  ColorMode `yaml:"color"`
	LogLevel   LogLevel  `yaml:"log_level"`
	LogFile    string    `yaml:"log_file"`
	ReportFile string    `yaml:"report"`
	CheckOnly  bool      `yaml:"-"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		InputFormat:  catalog.FormatWMA,
		OutputFormat: catalog.FormatMP3,
		Quality:      catalog.QualityHigh,
		Overwrite:    false,
		Action:       ActionNone,
		BackupDir:    "audio_backup",
		Workers:      0,
		ColorMode:    ColorAuto,
		LogLevel:     LevelInfo,
	}
}

// Validate normalizes and checks every field. Formats and quality are
// canonicalized through the catalog, the log level is lowercased, and the
// backup directory is made absolute so moved files and the provenance log
// do not depend on the working directory of later tools.
func (c *Config) Validate() error {
	in, err := catalog.ParseFormat(string(c.InputFormat))
	if err != nil {
		return fmt.Errorf("input format: %w", err)
	}
	out, err := catalog.ParseFormat(string(c.OutputFormat))
	if err != nil {
		return fmt.Errorf("output format: %w", err)
	}
	c.InputFormat, c.OutputFormat = in, out

	q, err := catalog.ParseQuality(string(c.Quality))
	if err != nil {
		return fmt.Errorf("audio quality: %w", err)
	}
	c.Quality = q

	switch c.Action {
	case ActionNone, ActionRemove, ActionMove:
		// valid
	default:
		return fmt.Errorf("invalid action %q (use 'none', 'remove' or 'move')", c.Action)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	level, err := ParseLogLevel(string(c.LogLevel))
	if err != nil {
		return err
	}
	c.LogLevel = level

	if c.Workers < 0 {
		return fmt.Errorf("jobs must be zero (auto) or positive, got %d", c.Workers)
	}

	if c.CheckOnly {
		return nil
	}
	if c.RootDir == "" {
		return errors.New("need a folder path to scan")
	}
	c.RootDir = NormalizeDirArg(c.RootDir)
	if c.InputFormat == c.OutputFormat {
		return ErrSameFormat
	}
	if c.Action == ActionMove {
		if strings.TrimSpace(c.BackupDir) == "" {
			return errors.New("move action needs a backup directory")
		}
		abs, err := filepath.Abs(c.BackupDir)
		if err != nil {
			return fmt.Errorf("resolve backup directory: %w", err)
		}
		c.BackupDir = abs
	}
	return nil
}

// ProvenancePath returns the absolute path of the provenance log.
func (c *Config) ProvenancePath() string {
	return filepath.Join(c.BackupDir, ProvenanceFile)
}

// ParseLogLevel accepts debug, info, warn/warning and error/critical
// (case-insensitive).
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "critical":
		return LevelError, nil
	}
	return "", fmt.Errorf("invalid log level %q (use debug, info, warn or error)", s)
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

package config

// This file binds CLI flags onto a Config. Flags are grouped into conversion,
// post-action, behavior and display. Negated flags (--no-color) are applied
// after parsing so DefaultConfig values hold unless a flag is set.

import (
	"fmt"
	"strings"

	"github.com/backmassage/audioconv/internal/catalog"
	"github.com/spf13/pflag"
)

// Flags holds flag state that does not map one-to-one onto a Config field.
type Flags struct {
	ConfigFile string

	forceColor bool
	noColor    bool
}

// BindFlags registers every CLI flag on fs, writing parsed values into cfg.
// Call [Flags.Apply] after parsing.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *Flags {
	f := &Flags{}
	defineConversionFlags(fs, cfg)
	definePostActionFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg, f)
	defineDisplayFlags(fs, cfg, f)
	return f
}

// defineConversionFlags registers -f, -i, -o, -q and --overwrite.
func defineConversionFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.RootDir, "folder-path", "f", cfg.RootDir, "Folder to scan recursively (or pass it as the argument)")
	fs.VarP(&formatValue{&cfg.InputFormat}, "input-format", "i", "Input format: "+formatList())
	fs.VarP(&formatValue{&cfg.OutputFormat}, "output-format", "o", "Output format: "+formatList())
	fs.VarP(&qualityValue{&cfg.Quality}, "audio-quality", "q", "Quality tier: low | medium | high")
	fs.BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "Overwrite existing output files")
}

// definePostActionFlags registers -a/--action and -w/--backup-dir.
func definePostActionFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.VarP(&actionValue{&cfg.Action}, "action", "a", "After conversion: none | remove | move")
	fs.StringVarP(&cfg.BackupDir, "backup-dir", "w", cfg.BackupDir, "Destination for moved originals")
}

// defineBehaviorFlags registers -j/--jobs, --dry-run, --check and --config.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config, f *Flags) {
	fs.IntVarP(&cfg.Workers, "jobs", "j", cfg.Workers, "Parallel conversions (0 = one per CPU)")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", cfg.DryRun, "Preview only; do not convert or touch originals")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false, "Run system diagnostics and exit")
	fs.StringVar(&f.ConfigFile, "config", "", "YAML config file (flags override it)")
}

// defineDisplayFlags registers logging, color and report flags.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, f *Flags) {
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output (per-file stats, no progress bar)")
	fs.StringVarP(&cfg.LogFile, "log-file", "l", cfg.LogFile, "Append logs to file")
	fs.Var(&logLevelValue{&cfg.LogLevel}, "log-level", "Log level: debug | info | warn | error")
	fs.StringVar(&cfg.ReportFile, "report", cfg.ReportFile, "Write a YAML run report to this path")
	fs.BoolVar(&f.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored logs")
}

// Apply copies negated flag values into cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// flagFields maps each flag name to the Config fields it controls.
var flagFields = map[string]func(dst, src *Config){
	"folder-path":   func(d, s *Config) { d.RootDir = s.RootDir },
	"input-format":  func(d, s *Config) { d.InputFormat = s.InputFormat },
	"output-format": func(d, s *Config) { d.OutputFormat = s.OutputFormat },
	"audio-quality": func(d, s *Config) { d.Quality = s.Quality },
	"overwrite":     func(d, s *Config) { d.Overwrite = s.Overwrite },
	"action":        func(d, s *Config) { d.Action = s.Action },
	"backup-dir":    func(d, s *Config) { d.BackupDir = s.BackupDir },
	"jobs":          func(d, s *Config) { d.Workers = s.Workers },
	"dry-run":       func(d, s *Config) { d.DryRun = s.DryRun },
	"check":         func(d, s *Config) { d.CheckOnly = s.CheckOnly },
	"verbose":       func(d, s *Config) { d.Verbose = s.Verbose },
	"log-file":      func(d, s *Config) { d.LogFile = s.LogFile },
	"log-level":     func(d, s *Config) { d.LogLevel = s.LogLevel },
	"report":        func(d, s *Config) { d.ReportFile = s.ReportFile },
	"color":         func(d, s *Config) { d.ColorMode = s.ColorMode },
	"no-color":      func(d, s *Config) { d.ColorMode = s.ColorMode },
}

// Overlay copies into c every field of src whose flag was explicitly set,
// as reported by changed (normally pflag.FlagSet.Changed). It gives
// explicitly passed flags precedence over values loaded from a file.
func (c *Config) Overlay(src *Config, changed func(name string) bool) {
	for name, apply := range flagFields {
		if changed(name) {
			apply(c, src)
		}
	}
}

func formatList() string {
	names := make([]string, 0, len(catalog.Formats()))
	for _, f := range catalog.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, " | ")
}

// pflag.Value adapters so enum types can be used with fs.Var.

type formatValue struct{ p *catalog.Format }

func (v *formatValue) String() string { return string(*v.p) }
func (v *formatValue) Type() string   { return "format" }
func (v *formatValue) Set(s string) error {
	f, err := catalog.ParseFormat(s)
	if err != nil {
		return fmt.Errorf("invalid format %q (use %s)", s, formatList())
	}
	*v.p = f
	return nil
}

type qualityValue struct{ p *catalog.Quality }

func (v *qualityValue) String() string { return string(*v.p) }
func (v *qualityValue) Type() string   { return "quality" }
func (v *qualityValue) Set(s string) error {
	q, err := catalog.ParseQuality(s)
	if err != nil {
		return fmt.Errorf("invalid quality %q (use 'low', 'medium' or 'high')", s)
	}
	*v.p = q
	return nil
}

type actionValue struct{ p *PostAction }

func (v *actionValue) String() string { return string(*v.p) }
func (v *actionValue) Type() string   { return "action" }
func (v *actionValue) Set(s string) error {
	switch a := PostAction(strings.ToLower(s)); a {
	case ActionNone, ActionRemove, ActionMove:
		*v.p = a
	default:
		return fmt.Errorf("invalid action %q (use 'none', 'remove' or 'move')", s)
	}
	return nil
}

type logLevelValue struct{ p *LogLevel }

func (v *logLevelValue) String() string { return string(*v.p) }
func (v *logLevelValue) Type() string   { return "level" }
func (v *logLevelValue) Set(s string) error {
	l, err := ParseLogLevel(s)
	if err != nil {
		return err
	}
	*v.p = l
	return nil
}

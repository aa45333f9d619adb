// Package report collects a run's events into a YAML document: the run
// settings, the totals, and one entry per file in completion order.
package report

import (
	"fmt"
	"time"

	"github.com/backmassage/audioconv/internal/config"
	"github.com/backmassage/audioconv/internal/filelock"
	"github.com/backmassage/audioconv/internal/pipeline"
	"github.com/backmassage/audioconv/internal/postaction"
	"gopkg.in/yaml.v3"
)

// Report is the serialized form of one run.
type Report struct {
	RunID        string    `yaml:"run_id"`
	Started      time.Time `yaml:"started"`
	Duration     string    `yaml:"duration"`
	Root         string    `yaml:"root"`
	InputFormat  string    `yaml:"input_format"`
	OutputFormat string    `yaml:"output_format"`
	Quality      string    `yaml:"quality"`
	Action       string    `yaml:"action"`
	BackupDir    string    `yaml:"backup_dir,omitempty"`
	Workers      int       `yaml:"workers"`
	DryRun       bool      `yaml:"dry_run"`

	Totals     Totals       `yaml:"totals"`
	Collisions []Collision  `yaml:"collisions,omitempty"`
	Unreadable []string     `yaml:"unreadable,omitempty"`
	Files      []FileResult `yaml:"files"`
}

// Totals mirrors pipeline.RunSummary.
type Totals struct {
	Discovered         int   `yaml:"discovered"`
	Converted          int   `yaml:"converted"`
	Skipped            int   `yaml:"skipped"`
	Failed             int   `yaml:"failed"`
	PostActionFailures int   `yaml:"post_action_failures"`
	InputBytes         int64 `yaml:"input_bytes"`
	OutputBytes        int64 `yaml:"output_bytes"`
	SpaceSaved         int64 `yaml:"space_saved"`
}

// Collision is an output path claimed by more than one input.
type Collision struct {
	Output string   `yaml:"output"`
	Inputs []string `yaml:"inputs"`
}

// FileResult is the outcome for one discovered input.
type FileResult struct {
	Input       string `yaml:"input"`
	Output      string `yaml:"output"`
	Status      string `yaml:"status"`
	Reason      string `yaml:"reason,omitempty"`
	Error       string `yaml:"error,omitempty"`
	InputBytes  int64  `yaml:"input_bytes,omitempty"`
	OutputBytes int64  `yaml:"output_bytes,omitempty"`
	Elapsed     string `yaml:"elapsed,omitempty"`

	PostAction      string `yaml:"post_action,omitempty"`
	MovedTo         string `yaml:"moved_to,omitempty"`
	PostActionError string `yaml:"post_action_error,omitempty"`
}

// Collector is a pipeline.EventSink that builds a Report.
type Collector struct {
	pipeline.NopSink

	report Report
	byPath map[string]int
	done   bool
}

var _ pipeline.EventSink = (*Collector)(nil)

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{byPath: make(map[string]int)}
}

func (c *Collector) RunStarted(info pipeline.RunInfo) {
	c.report.RunID = info.RunID
	c.report.Root = info.Root
	c.report.InputFormat = string(info.InputFormat)
	c.report.OutputFormat = string(info.OutputFormat)
	c.report.Quality = string(info.Quality)
	c.report.Action = string(info.Action)
	if info.Action == config.ActionMove {
		c.report.BackupDir = info.BackupDir
	}
	c.report.Workers = info.Workers
	c.report.DryRun = info.DryRun
}

func (c *Collector) Unreadable(path string, _ error) {
	c.report.Unreadable = append(c.report.Unreadable, path)
}

func (c *Collector) Collision(col pipeline.Collision) {
	c.report.Collisions = append(c.report.Collisions, Collision{Output: col.Output, Inputs: col.Inputs})
}

func (c *Collector) Converted(o pipeline.Outcome) { c.add(o) }
func (c *Collector) Skipped(o pipeline.Outcome)   { c.add(o) }
func (c *Collector) Failed(o pipeline.Outcome)    { c.add(o) }

func (c *Collector) add(o pipeline.Outcome) {
	fr := FileResult{
		Input:       o.InputPath,
		Output:      o.OutputPath,
		Status:      o.Kind.String(),
		Reason:      string(o.Reason),
		InputBytes:  o.InputBytes,
		OutputBytes: o.OutputBytes,
	}
	if o.DryRun && o.Kind == pipeline.KindConverted {
		fr.Status = "would convert"
	}
	if o.Err != nil {
		fr.Error = o.Err.Error()
	}
	if o.Duration > 0 {
		fr.Elapsed = o.Duration.Round(time.Millisecond).String()
	}
	c.byPath[o.InputPath] = len(c.report.Files)
	c.report.Files = append(c.report.Files, fr)
}

func (c *Collector) PostActionApplied(res postaction.Result) {
	if fr := c.file(res.Input); fr != nil {
		fr.PostAction = string(res.Action)
		fr.MovedTo = res.Destination
	}
}

func (c *Collector) PostActionFailed(res postaction.Result, err error) {
	if fr := c.file(res.Input); fr != nil {
		fr.PostAction = string(res.Action)
		fr.MovedTo = res.Destination
		fr.PostActionError = err.Error()
	}
}

func (c *Collector) file(input string) *FileResult {
	i, ok := c.byPath[input]
	if !ok {
		return nil
	}
	return &c.report.Files[i]
}

func (c *Collector) RunFinished(sum pipeline.RunSummary) {
	c.report.Started = sum.Started
	c.report.Duration = sum.Duration.Round(time.Millisecond).String()
	c.report.Totals = Totals{
		Discovered:         sum.Total,
		Converted:          sum.Converted,
		Skipped:            sum.Skipped,
		Failed:             sum.Failed,
		PostActionFailures: sum.PostActionFailures,
		InputBytes:         sum.InputBytes,
		OutputBytes:        sum.OutputBytes,
		SpaceSaved:         sum.SpaceSaved(),
	}
	c.done = true
}

// Report returns the collected report. It is complete once RunFinished has
// been delivered.
func (c *Collector) Report() Report { return c.report }

// Finished reports whether RunFinished has been delivered.
func (c *Collector) Finished() bool { return c.done }

// Marshal encodes r as YAML.
func Marshal(r Report) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

// Write encodes r and replaces path atomically.
func Write(path string, r Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	return filelock.AtomicWrite(path, data)
}

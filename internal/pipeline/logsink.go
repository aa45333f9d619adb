package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/audioconv/internal/config"
	"github.com/backmassage/audioconv/internal/display"
	"github.com/backmassage/audioconv/internal/ffmpeg"
	"github.com/backmassage/audioconv/internal/logging"
	"github.com/backmassage/audioconv/internal/postaction"
	"github.com/backmassage/audioconv/internal/probe"
)

const inspectTimeout = 30 * time.Second

// LogSinkOptions configures a LogSink.
type LogSinkOptions struct {
	// ProgressBar, when set, is called once the total is known; progress is
	// then drawn as a bar instead of logged.
	ProgressBar func(total int) display.ProgressBar

	// Inspect, when set, is used to log the properties of each converted
	// output (verbose runs).
	Inspect func(ctx context.Context, path string) (*probe.ProbeResult, error)
}

var _ EventSink = (*LogSink)(nil)

// LogSink renders run events through the logger.
type LogSink struct {
	log  *logging.Logger
	opts LogSinkOptions
	bar  display.ProgressBar
	info RunInfo
}

// NewLogSink returns a sink writing to log.
func NewLogSink(log *logging.Logger, opts LogSinkOptions) *LogSink {
	return &LogSink{log: log, opts: opts, bar: display.NoOpProgressBar{}}
}

// rel shortens p to a path relative to the run root when possible.
func (s *LogSink) rel(p string) string {
	if s.info.Root == "" {
		return p
	}
	root, err := filepath.Abs(s.info.Root)
	if err != nil {
		return p
	}
	r, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(r, "..") {
		return p
	}
	return r
}

func (s *LogSink) RunStarted(info RunInfo) {
	s.info = info
	s.log.Info("Run %s", info.RunID)
	s.log.Info("Converting .%s -> .%s (%s quality) under %s", info.InputFormat, info.OutputFormat, info.Quality, info.Root)
	s.log.Info("Workers: %d", info.Workers)
	switch info.Action {
	case config.ActionMove:
		s.log.Info("Originals: move to %s (paths logged to %s)", info.BackupDir, config.ProvenanceFile)
	case config.ActionRemove:
		s.log.Info("Originals: remove after conversion")
	default:
		s.log.Info("Originals: keep")
	}
	if info.Overwrite {
		s.log.Info("Existing outputs: overwrite")
	}
	if info.DryRun {
		s.log.Warn("Dry run: nothing will be written, moved or removed")
	}
}

func (s *LogSink) Discovered(total int) {
	s.log.Info("Found %d .%s files", total, s.info.InputFormat)
	if total > 0 && s.opts.ProgressBar != nil {
		s.bar = s.opts.ProgressBar(total)
		bar := s.bar
		s.log.SetBeforeWrite(func() { _ = bar.Clear() })
	}
}

func (s *LogSink) Unreadable(path string, err error) {
	s.log.Warn("Skipping unreadable path %s: %v", path, err)
}

func (s *LogSink) NoInputs(root string) {
	s.log.Warn("No .%s files found under %s", s.info.InputFormat, root)
}

func (s *LogSink) Collision(c Collision) {
	rels := make([]string, len(c.Inputs))
	for i, in := range c.Inputs {
		rels[i] = s.rel(in)
	}
	s.log.Warn("Output collision: %s is the target of %d inputs (%s)", s.rel(c.Output), len(c.Inputs), strings.Join(rels, ", "))
}

func (s *LogSink) Converted(o Outcome) {
	if o.DryRun {
		s.log.Success("[DRY] Would convert: %s -> %s", s.rel(o.InputPath), filepath.Base(o.OutputPath))
		return
	}
	s.log.Success("Converted: %s -> %s (%s -> %s, %s of original) in %s",
		s.rel(o.InputPath), filepath.Base(o.OutputPath),
		display.FormatBytes(o.InputBytes), display.FormatBytes(o.OutputBytes),
		display.FormatRatio(o.InputBytes, o.OutputBytes),
		o.Duration.Round(time.Millisecond))

	if s.opts.Inspect != nil {
		s.logOutputStats(o.OutputPath)
	}
}

func (s *LogSink) logOutputStats(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
	defer cancel()

	pr, err := s.opts.Inspect(ctx, path)
	if err != nil {
		s.log.Debug("  Cannot inspect output: %v", err)
		return
	}
	if pr.Audio == nil {
		s.log.Debug("  Output has no audio stream")
		return
	}
	layout := pr.Audio.ChannelLayout
	if layout == "" {
		layout = pluralize(pr.Audio.Channels, "channel")
	}
	s.log.Debug("  Output: %s | %s | %s | %s | %s",
		pr.Audio.Codec,
		display.FormatBitrate(pr.AudioBitRate()),
		display.FormatSampleRate(pr.Audio.SampleRate),
		layout,
		pr.Duration().Round(time.Second))
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func (s *LogSink) Skipped(o Outcome) {
	s.log.Warn("Skip (%s): %s", o.Reason, s.rel(o.OutputPath))
}

func (s *LogSink) Failed(o Outcome) {
	if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
		s.log.Warn("Not converted (interrupted): %s", s.rel(o.InputPath))
		return
	}
	s.log.Error("Failed: %s: %v", s.rel(o.InputPath), o.Err)

	var ee *ffmpeg.ExecError
	if errors.As(o.Err, &ee) && ee.Stderr != "" {
		s.log.Debug("  Command: %s", ee.Command())
		for _, line := range strings.Split(ee.Stderr, "\n") {
			s.log.Debug("  ffmpeg: %s", line)
		}
	}
}

func (s *LogSink) PostActionApplied(res postaction.Result) {
	switch res.Action {
	case config.ActionRemove:
		s.log.Info("Removed original: %s", s.rel(res.Input))
	case config.ActionMove:
		s.log.Info("Moved original: %s -> %s", s.rel(res.Input), res.Destination)
	}
}

func (s *LogSink) PostActionFailed(res postaction.Result, err error) {
	s.log.Error("Post-action %s failed for %s: %v", res.Action, s.rel(res.Input), err)
}

func (s *LogSink) Progress(done, total int) {
	if _, ok := s.bar.(display.NoOpProgressBar); !ok {
		_ = s.bar.Add(1)
		return
	}
	s.log.Info("[%d/%d] processed", done, total)
}

func (s *LogSink) RunFinished(sum RunSummary) {
	_ = s.bar.Close()
	s.log.SetBeforeWrite(nil)

	s.log.Info("==============================")
	s.log.Info("Done: %d converted, %d skipped, %d failed", sum.Converted, sum.Skipped, sum.Failed)
	s.log.Info("Summary report:")
	s.log.Info("  Total files processed: %d of %d", sum.Processed(), sum.Total)
	if s.info.Action == config.ActionRemove || s.info.Action == config.ActionMove {
		if sum.PostActionFailures > 0 {
			s.log.Error("  Post-action failures: %d", sum.PostActionFailures)
		} else {
			s.log.Info("  Post-action failures: 0")
		}
	}
	s.log.Info("  Elapsed: %s", sum.Duration.Round(time.Second))

	if sum.DryRun {
		s.log.Info("  Total space saved: n/a (dry run)")
		return
	}
	if sum.Converted == 0 {
		return
	}
	saved := sum.SpaceSaved()
	if saved >= 0 {
		s.log.Success("  Total space saved: %s (input %s -> output %s)",
			display.FormatBytes(saved),
			display.FormatBytes(sum.InputBytes),
			display.FormatBytes(sum.OutputBytes))
	} else {
		s.log.Warn("  Total space saved: -%s (overall output is larger)",
			display.FormatBytes(-saved))
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/audioconv/internal/check"
	"github.com/backmassage/audioconv/internal/config"
	"github.com/backmassage/audioconv/internal/display"
	"github.com/backmassage/audioconv/internal/ffmpeg"
	"github.com/backmassage/audioconv/internal/logging"
	"github.com/backmassage/audioconv/internal/pipeline"
	"github.com/backmassage/audioconv/internal/probe"
	"github.com/backmassage/audioconv/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// errIncomplete is returned when the run finished but some file or
// post-action failed.
var errIncomplete = errors.New("run finished with failures")

func newRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "audioconv [folder]",
		Short: "Batch-convert audio files between formats with ffmpeg",
		Long: `audioconv scans a folder recursively for files of one audio format and
converts each of them next to the original with ffmpeg.

After a successful conversion the original can be left alone (none),
deleted (remove), or moved into a backup directory (move), in which case
its former location is appended to original_locations.txt there.`,
		Example: `  audioconv ~/Music
  audioconv -i flac -o mp3 -q medium -j 4 ~/Music
  audioconv -a move -w ~/wma_backup ~/Music
  audioconv --check -o ogg`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")

	flags := config.BindFlags(cmd.Flags(), &cfg)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		resolved, err := resolveConfig(cmd.Flags(), &cfg, flags, args)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return execute(ctx, resolved, cmd.OutOrStdout())
	}
	return cmd
}

// resolveConfig layers the configuration: defaults, then the --config file,
// then explicitly set flags, then the positional folder. The result is
// validated.
func resolveConfig(fs *pflag.FlagSet, parsed *config.Config, flags *config.Flags, args []string) (*config.Config, error) {
	flags.Apply(parsed)

	cfg := *parsed
	if flags.ConfigFile != "" {
		fileCfg, err := config.LoadFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		fileCfg.Overlay(parsed, fs.Changed)
		cfg = fileCfg
	}

	if len(args) == 1 {
		if fs.Changed("folder-path") && config.NormalizeDirArg(cfg.RootDir) != config.NormalizeDirArg(args[0]) {
			return nil, fmt.Errorf("folder given twice: --folder-path %s and argument %s", cfg.RootDir, args[0])
		}
		cfg.RootDir = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// execute runs --check or a conversion with a validated cfg.
func execute(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	display.PrintBanner(stdout)

	if cfg.CheckOnly {
		if !check.RunCheck(cfg, log) {
			return errIncomplete
		}
		return nil
	}

	// A dry run never starts the encoder.
	if !cfg.DryRun {
		if err := check.CheckDeps(cfg); err != nil {
			return err
		}
	}

	engine := ffmpeg.NewExecutor(cfg.Verbose)
	engine.OnRetry = func(job ffmpeg.Job, action ffmpeg.RetryAction) {
		log.Warn("Retrying %s: %s", filepath.Base(job.Input), action)
	}

	opts := pipeline.LogSinkOptions{}
	if cfg.Verbose {
		opts.Inspect = probe.Probe
	} else if logging.IsTerminal(os.Stderr) {
		colored := log.Colored()
		opts.ProgressBar = func(total int) display.ProgressBar {
			return display.NewProgressBar(total, os.Stderr, colored)
		}
	}

	collector := report.NewCollector()
	sink := pipeline.MultiSink{pipeline.NewLogSink(log, opts), collector}

	sum, runErr := pipeline.NewRunner(cfg, engine, sink).Run(ctx)

	if cfg.ReportFile != "" && collector.Finished() {
		if err := report.Write(cfg.ReportFile, collector.Report()); err != nil {
			log.Error("Could not write report: %v", err)
		} else {
			log.Info("Report written to %s", cfg.ReportFile)
		}
	}

	if runErr != nil {
		return runErr
	}
	if ctx.Err() != nil {
		log.Warn("Interrupted")
		return errIncomplete
	}
	if !sum.OK() {
		return errIncomplete
	}
	return nil
}

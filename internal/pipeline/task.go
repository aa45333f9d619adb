package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/audioconv/internal/catalog"
	"github.com/backmassage/audioconv/internal/ffmpeg"
)

// Task converts a single file. It never modifies the input.
type Task struct {
	Engine ffmpeg.Engine
}

// Execute resolves req to exactly one Outcome:
//
//  1. the output path is the input path with the output extension;
//  2. an existing output with overwrite off is Skipped (engine not run);
//  3. the encoder comes from the catalog;
//  4. the engine transcodes into a temporary file next to the output;
//  5. an engine error is Failed and the temporary file is removed, leaving
//     any earlier output untouched; success renames the temporary file
//     over the output and is Converted.
//
// In a dry run steps 1-3 run and the outcome is Converted with no output
// bytes.
func (t *Task) Execute(ctx context.Context, req Request) (out Outcome) {
	start := time.Now()
	defer func() { out.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		return failed(req, err)
	}

	outputPath := req.OutputPath()
	if !req.Overwrite {
		if _, err := os.Stat(outputPath); err == nil {
			return skipped(req, ReasonOutputExists)
		}
	}

	enc, err := catalog.Lookup(req.OutputFormat, req.Quality)
	if err != nil {
		return failed(req, err)
	}

	inInfo, err := os.Stat(req.InputPath)
	if err != nil {
		return failed(req, fmt.Errorf("stat input: %w", err))
	}

	if req.DryRun {
		return converted(req, inInfo.Size(), 0)
	}

	partial, err := partialPath(outputPath)
	if err != nil {
		return failed(req, err)
	}
	defer os.Remove(partial)

	job := ffmpeg.Job{Input: req.InputPath, Output: partial, Encoder: enc}
	if err := t.Engine.Transcode(ctx, job); err != nil {
		return failed(req, err)
	}

	outInfo, err := os.Stat(partial)
	if err != nil {
		return failed(req, fmt.Errorf("engine reported success but output is missing: %w", err))
	}
	if err := os.Rename(partial, outputPath); err != nil {
		return failed(req, fmt.Errorf("install output: %w", err))
	}
	return converted(req, inInfo.Size(), outInfo.Size())
}

// partialPath reserves a hidden file beside output that keeps output's
// extension, so ffmpeg still picks the muxer from it.
func partialPath(output string) (string, error) {
	dir, base := filepath.Dir(output), filepath.Base(output)
	ext := filepath.Ext(base)
	f, err := os.CreateTemp(dir, "."+strings.TrimSuffix(base, ext)+".*.partial"+ext)
	if err != nil {
		return "", fmt.Errorf("create temporary output: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("create temporary output: %w", err)
	}
	return name, nil
}

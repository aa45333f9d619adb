package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/audioconv/internal/catalog"
)

// Request is one unit of work, built once per discovered file.
type Request struct {
	InputPath    string
	InputFormat  catalog.Format
	OutputFormat catalog.Format
	Quality      catalog.Quality
	Overwrite    bool
	DryRun       bool
}

// OutputPath returns the path the request converts into.
func (r Request) OutputPath() string {
	return OutputPathFor(r.InputPath, r.OutputFormat)
}

// OutputPathFor replaces the extension of input with format's.
func OutputPathFor(input string, format catalog.Format) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + format.Ext()
}

// Kind tags an Outcome.
type Kind int

const (
	KindConverted Kind = iota
	KindSkipped
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindConverted:
		return "converted"
	case KindSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// SkipReason explains a KindSkipped outcome.
type SkipReason string

// ReasonOutputExists: the output was already present and overwrite was off.
const ReasonOutputExists SkipReason = "output exists"

// Outcome is the result of exactly one Request.
type Outcome struct {
	Kind       Kind
	InputPath  string
	OutputPath string

	// Byte sizes, set for converted files. OutputBytes is 0 in dry runs.
	InputBytes  int64
	OutputBytes int64

	Reason   SkipReason // KindSkipped only.
	Err      error      // KindFailed only.
	DryRun   bool
	Duration time.Duration
}

func converted(req Request, inBytes, outBytes int64) Outcome {
	return Outcome{Kind: KindConverted, InputPath: req.InputPath, OutputPath: req.OutputPath(),
		InputBytes: inBytes, OutputBytes: outBytes, DryRun: req.DryRun}
}

func skipped(req Request, reason SkipReason) Outcome {
	return Outcome{Kind: KindSkipped, InputPath: req.InputPath, OutputPath: req.OutputPath(), Reason: reason}
}

func failed(req Request, err error) Outcome {
	return Outcome{Kind: KindFailed, InputPath: req.InputPath, OutputPath: req.OutputPath(), Err: err}
}

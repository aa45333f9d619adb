package display

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar is the subset of a progress bar the run loop drives.
type ProgressBar interface {
	Add(n int) error
	Describe(description string)
	Clear() error
	Close() error
}

// NoOpProgressBar is used when output is not an interactive terminal or
// verbose logging is on.
type NoOpProgressBar struct{}

// Add implements ProgressBar.
func (NoOpProgressBar) Add(int) error { return nil }

// Describe implements ProgressBar.
func (NoOpProgressBar) Describe(string) {}

// Clear implements ProgressBar.
func (NoOpProgressBar) Clear() error { return nil }

// Close implements ProgressBar.
func (NoOpProgressBar) Close() error { return nil }

// NewProgressBar returns a bar counting to total on w.
func NewProgressBar(total int, w io.Writer, colors bool) ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionEnableColorCodes(colors),
		progressbar.OptionClearOnFinish(),
	)
}

package ffmpeg

import (
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled regexes for classifying ffmpeg stderr. The first two drive
// [RetryState.Advance]; the rest only label the final error.
var (
	rePictureStream = regexp.MustCompile(
		`(?i)Could not find tag for codec \S+ in stream #\d+|` +
			`codec not currently supported in container|` +
			`Error initializing output stream \d+:\d+ -- .*(png|mjpeg|video)|` +
			`Encoder \(codec (png|mjpeg)\) not found|` +
			`attached pic`)

	reTimestampIssue = regexp.MustCompile(
		`(?i)Non-monotonous DTS|non monotonically increasing dts|` +
			`DTS .*out of order|PTS .*out of order|` +
			`pts has no value|Timestamps are unset`)

	reUnknownEncoder = regexp.MustCompile(`(?i)Unknown encoder|Encoder .* not found`)
	reInvalidInput   = regexp.MustCompile(`(?i)Invalid data found when processing input|moov atom not found|Header missing`)
	rePermission     = regexp.MustCompile(`(?i)Permission denied|Read-only file system`)
	reNoSpace        = regexp.MustCompile(`(?i)No space left on device`)
)

// MatchPictureStreamIssue reports whether stderr shows the output container
// rejecting an embedded picture stream.
func MatchPictureStreamIssue(stderr string) bool {
	return rePictureStream.MatchString(stderr)
}

// MatchTimestampIssue reports whether stderr contains a timestamp discontinuity.
func MatchTimestampIssue(stderr string) bool {
	return reTimestampIssue.MatchString(stderr)
}

// Diagnose returns a short label for a known failure class in stderr, or "".
func Diagnose(stderr string) string {
	switch {
	case reUnknownEncoder.MatchString(stderr):
		return "encoder not available in this ffmpeg build"
	case reInvalidInput.MatchString(stderr):
		return "input is not a readable audio file"
	case rePermission.MatchString(stderr):
		return "permission denied"
	case reNoSpace.MatchString(stderr):
		return "no space left on device"
	}
	return ""
}

const stderrTailLines = 20

// ExecError is returned when ffmpeg exits unsuccessfully. Stderr holds the
// last lines ffmpeg wrote.
type ExecError struct {
	Args   []string
	Stderr string
	Err    error
}

func newExecError(args []string, stderr string, err error) *ExecError {
	return &ExecError{Args: args, Stderr: tail(stderr, stderrTailLines), Err: err}
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("ffmpeg: %v", e.Err)
	if d := Diagnose(e.Stderr); d != "" {
		return msg + ": " + d
	}
	if last := lastLine(e.Stderr); last != "" {
		return msg + ": " + last
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Err }

// Command returns the invocation as a single shell-like string.
func (e *ExecError) Command() string { return strings.Join(e.Args, " ") }

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

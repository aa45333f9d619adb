// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for ffmpeg, ffprobe and the audio
// encoders the catalog relies on.
package check

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/audioconv/internal/catalog"
	"github.com/backmassage/audioconv/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrEncoderMissing  = errors.New("encoder not available in this ffmpeg build")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// Command hooks, replaced in tests.
var (
	lookPath = exec.LookPath
	output   = func(name string, args ...string) ([]byte, error) {
		return exec.Command(name, args...).Output()
	}
)

// RunCheck runs the --check flow: prints availability of ffmpeg, ffprobe
// and every catalog encoder, then test-encodes with the configured output
// encoder. It returns false when anything needed for a run with cfg is
// missing.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkFfmpeg(log)
	if _, err := lookPath("ffprobe"); err != nil {
		log.Warn("ffprobe not found (only needed for --verbose output stats)")
	} else {
		log.Success("ffprobe: found")
	}
	if !ok {
		return false
	}

	encoders, err := ListEncoders()
	if err != nil {
		log.Error("Could not list encoders: %v", err)
		return false
	}
	log.Info("Encoders:")
	for _, f := range catalog.Formats() {
		enc, _ := catalog.Lookup(f, catalog.QualityMedium)
		if encoders[enc.Codec] {
			log.Success("  %-5s %s", f, enc.Codec)
		} else {
			log.Error("  %-5s %s (missing)", f, enc.Codec)
		}
	}

	enc, err := catalog.Lookup(cfg.OutputFormat, cfg.Quality)
	if err != nil {
		log.Error("%v", err)
		return false
	}
	log.Info("Testing %s encoder...", enc.Codec)
	if err := testEncode(enc); err != nil {
		log.Error("%s test encode failed: %v", enc.Codec, err)
		return false
	}
	log.Success("%s encoder works", enc.Codec)
	return true
}

// checkFfmpeg verifies ffmpeg is on PATH and logs its version string.
func checkFfmpeg(log Logger) bool {
	if _, err := lookPath("ffmpeg"); err != nil {
		log.Error("ffmpeg not found")
		return false
	}
	out, err := output("ffmpeg", "-version")
	if err != nil {
		log.Warn("ffmpeg found but -version failed: %v", err)
		return true
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("ffmpeg: %s", firstLine)
	return true
}

// ListEncoders returns the encoder names reported by ffmpeg -encoders.
func ListEncoders() (map[string]bool, error) {
	out, err := output("ffmpeg", "-hide_banner", "-encoders")
	if err != nil {
		return nil, err
	}
	return ParseEncoders(string(out)), nil
}

// ParseEncoders extracts encoder names from ffmpeg -encoders output. Entry
// lines start with a six-character capability column such as "A....D";
// the legend above the "------" separator is ignored.
func ParseEncoders(out string) map[string]bool {
	encoders := make(map[string]bool)
	inList := false
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.HasPrefix(fields[0], "---") {
			inList = true
			continue
		}
		if !inList || len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		encoders[fields[1]] = true
	}
	return encoders
}

// testEncode encodes a tenth of a second of a sine tone with enc to the
// null muxer.
func testEncode(enc catalog.Encoder) error {
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
	}
	args = append(args, enc.Params...)
	args = append(args, "-c:a", enc.Codec, "-f", "null", "-")
	if _, err := output("ffmpeg", args...); err != nil {
		return err
	}
	return nil
}

// CheckDeps is the pre-run validation: ffmpeg must be on PATH and support
// the encoder for cfg's output format; ffprobe is only required when
// verbose output stats are requested. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := lookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if cfg.Verbose {
		if _, err := lookPath("ffprobe"); err != nil {
			return ErrFfprobeNotFound
		}
	}

	enc, err := catalog.Lookup(cfg.OutputFormat, cfg.Quality)
	if err != nil {
		return err
	}
	encoders, err := ListEncoders()
	if err != nil {
		return fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	if !encoders[enc.Codec] {
		return fmt.Errorf("%w: %s (needed for .%s output)", ErrEncoderMissing, enc.Codec, cfg.OutputFormat)
	}
	return nil
}

// Package ffmpeg builds and runs the ffmpeg command that transcodes one audio
// file, retrying once per recognized recoverable failure.
package ffmpeg

import "github.com/backmassage/audioconv/internal/catalog"

// Job is a single transcode request: read Input, write Output with Encoder.
type Job struct {
	Input   string
	Output  string
	Encoder catalog.Encoder
}

// Build constructs the complete ffmpeg argument slice for job, starting with
// bin. The retry state decides which fallback flags are applied.
//
// Layout:
//
//	bin -hide_banner -nostdin -y -loglevel L [-fflags ...] -i IN [-vn]
//	    -map_metadata 0 <params> -acodec CODEC [-avoid_negative_ts make_zero] OUT
func Build(bin string, job Job, verbose bool, rs *RetryState) []string {
	args := make([]string, 0, 24)

	args = append(args, bin, "-hide_banner", "-nostdin", "-y")
	if verbose {
		args = append(args, "-loglevel", "warning")
	} else {
		args = append(args, "-loglevel", "error")
	}

	if rs.TimestampFix {
		args = append(args, "-fflags", "+genpts+discardcorrupt")
	}

	args = append(args, "-i", job.Input)

	// Picture streams (cover art) are kept unless the target container
	// can't hold them or a previous attempt failed on them.
	if job.Encoder.DropVideo || rs.DropVideo {
		args = append(args, "-vn")
	}

	args = append(args, "-map_metadata", "0")
	args = append(args, job.Encoder.Params...)
	args = append(args, "-acodec", job.Encoder.Codec)

	if rs.TimestampFix {
		args = append(args, "-avoid_negative_ts", "make_zero")
	}

	return append(args, job.Output)
}

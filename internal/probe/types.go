package probe

import (
	"math"
	"strings"
	"time"
)

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename       string
	FormatName     string
	FormatLongName string
	Duration       float64
	Size           int64
	BitRate        int64
	Tags           map[string]string
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index         int
	Codec         string
	Channels      int
	ChannelLayout string
	SampleRate    int
	BitRate       int64
}

// ProbeResult is the parsed output of a single ffprobe JSON call.
// Audio is the first audio stream (nil if none).
type ProbeResult struct {
	Format       FormatInfo
	Audio        *AudioStream
	AudioStreams []AudioStream

	// HasCoverArt is set when the file carries an attached picture stream.
	HasCoverArt bool
}

// AudioBitRate returns the primary audio stream bitrate in bits/sec,
// falling back to the format-level bitrate when the stream value is
// unavailable or zero (common for VBR mp3 and for flac).
func (p *ProbeResult) AudioBitRate() int64 {
	if p.Audio != nil && p.Audio.BitRate > 0 {
		return p.Audio.BitRate
	}
	return p.Format.BitRate
}

// Duration returns the container duration, rounded to the millisecond.
func (p *ProbeResult) Duration() time.Duration {
	return time.Duration(math.Round(p.Format.Duration*1000)) * time.Millisecond
}

// Title returns the title tag, matched case-insensitively since containers
// disagree on tag case ("title" vs "TITLE").
func (p *ProbeResult) Title() string {
	for k, v := range p.Format.Tags {
		if strings.EqualFold(k, "title") {
			return v
		}
	}
	return ""
}

// Package catalog maps output formats and quality tiers to the ffmpeg encoder
// and encoder parameters used to produce them. The table is fixed at build
// time; supporting a new format or tier means adding an entry here.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors returned by Lookup and the Parse helpers.
var (
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrUnsupportedQuality = errors.New("unsupported quality")
)

// Format is an audio container/codec family identified by its file extension
// (without the leading dot).
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWMA  Format = "wma"
	FormatFLAC Format = "flac"
	FormatM4A  Format = "m4a"
	FormatOGG  Format = "ogg"
	FormatWAV  Format = "wav"
)

// Ext returns the file extension for f, including the leading dot.
func (f Format) Ext() string { return "." + string(f) }

// Quality is one of the fixed quality tiers.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// Qualities lists the tiers from lowest to highest.
var Qualities = []Quality{QualityLow, QualityMedium, QualityHigh}

// Encoder is the resolved encoder identifier plus the ffmpeg output options
// for one format and tier.
type Encoder struct {
	Codec  string
	Params []string

	// DropVideo is set for containers that cannot carry embedded cover art;
	// the engine then discards picture streams instead of failing on them.
	DropVideo bool
}

type entry struct {
	codec     string
	dropVideo bool
	tiers     map[Quality][]string
}

var table = map[Format]entry{
	FormatMP3: {
		codec: "libmp3lame",
		tiers: map[Quality][]string{
			QualityLow:    {"-q:a", "5"},
			QualityMedium: {"-q:a", "2"},
			QualityHigh:   {"-b:a", "320k"},
		},
	},
	FormatWMA: {
		codec:     "wmav2",
		dropVideo: true,
		tiers: map[Quality][]string{
			QualityLow:    {"-b:a", "64k"},
			QualityMedium: {"-b:a", "128k"},
			QualityHigh:   {"-b:a", "192k"},
		},
	},
	FormatFLAC: {
		codec: "flac",
		tiers: map[Quality][]string{
			QualityLow:    {"-compression_level", "1"},
			QualityMedium: {"-compression_level", "5"},
			QualityHigh:   {"-compression_level", "8"},
		},
	},
	FormatM4A: {
		codec: "aac",
		tiers: map[Quality][]string{
			QualityLow:    {"-b:a", "64k"},
			QualityMedium: {"-b:a", "128k"},
			QualityHigh:   {"-b:a", "256k"},
		},
	},
	FormatOGG: {
		codec:     "libvorbis",
		dropVideo: true,
		tiers: map[Quality][]string{
			QualityLow:    {"-q:a", "2"},
			QualityMedium: {"-q:a", "5"},
			QualityHigh:   {"-q:a", "8"},
		},
	},
	FormatWAV: {
		codec:     "pcm_s16le",
		dropVideo: true,
		tiers: map[Quality][]string{
			QualityLow:    {"-ar", "22050"},
			QualityMedium: {"-ar", "44100"},
			QualityHigh:   {"-ar", "48000"},
		},
	},
}

// Lookup resolves the encoder for format at quality. The returned Params
// slice is a fresh copy and may be modified by the caller.
func Lookup(format Format, quality Quality) (Encoder, error) {
	e, ok := table[format]
	if !ok {
		return Encoder{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	params, ok := e.tiers[quality]
	if !ok {
		return Encoder{}, fmt.Errorf("%w: %q for format %q", ErrUnsupportedQuality, quality, format)
	}
	return Encoder{
		Codec:     e.codec,
		Params:    append([]string(nil), params...),
		DropVideo: e.dropVideo,
	}, nil
}

// Formats returns every supported format, sorted.
func Formats() []Format {
	out := make([]Format, 0, len(table))
	for f := range table {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Codecs returns the distinct encoder identifiers in the table, sorted.
func Codecs() []string {
	seen := make(map[string]bool, len(table))
	var out []string
	for _, e := range table {
		if !seen[e.codec] {
			seen[e.codec] = true
			out = append(out, e.codec)
		}
	}
	sort.Strings(out)
	return out
}

// ParseFormat normalizes s (case, surrounding spaces, a leading dot) and
// returns the matching Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if _, ok := table[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// ParseQuality normalizes s and returns the matching Quality.
func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Qualities {
		if q == known {
			return q, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedQuality, s)
}

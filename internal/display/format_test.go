package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"typical mp3 8 MiB", 8 * 1024 * 1024, "8.0 MiB"},
		{"flac album 412 MiB", 432013312, "412.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"library 1.5 TiB", 1649267441664, "1.5 TiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatBytesWithSign(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"positive", 1024 * 1024, "+ 1.0 MiB"},
		{"negative", -1024 * 1024, "- 1.0 MiB"},
		{"zero", 0, "0 B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytesWithSign(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytesWithSign(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatBitrate(t *testing.T) {
	tests := []struct {
		bps  int64
		want string
	}{
		{0, "unknown"},
		{128000, "128 kbps"},
		{319999, "320 kbps"},
		{1411200, "1411 kbps"},
	}
	for _, tt := range tests {
		if got := FormatBitrate(tt.bps); got != tt.want {
			t.Errorf("FormatBitrate(%d) = %q, want %q", tt.bps, got, tt.want)
		}
	}
}

func TestFormatSampleRate(t *testing.T) {
	tests := []struct {
		hz   int
		want string
	}{
		{0, "unknown"},
		{48000, "48 kHz"},
		{44100, "44.1 kHz"},
		{22050, "22.1 kHz"},
	}
	for _, tt := range tests {
		if got := FormatSampleRate(tt.hz); got != tt.want {
			t.Errorf("FormatSampleRate(%d) = %q, want %q", tt.hz, got, tt.want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	if got := FormatRatio(0, 10); got != "n/a" {
		t.Errorf("FormatRatio(0, 10) = %q", got)
	}
	if got := FormatRatio(1000, 420); got != "42%" {
		t.Errorf("FormatRatio(1000, 420) = %q", got)
	}
}

func TestPrintBanner(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	PrintBanner(&buf)
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("banner should be plain when colors are disabled")
	}
	if !strings.Contains(buf.String(), `\_/`) {
		t.Errorf("unexpected banner:\n%s", buf.String())
	}
}

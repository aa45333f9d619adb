// Package display formats sizes and rates for humans and draws the banner
// and progress bar.
package display

import (
	"fmt"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < len(sizeSuffixes)-1; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), sizeSuffixes[exp])
}

var sizeSuffixes = []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 MiB").
func FormatBytesWithSign(bytes int64) string {
	switch {
	case bytes > 0:
		return "+ " + FormatBytes(bytes)
	case bytes < 0:
		return "- " + FormatBytes(-bytes)
	}
	return FormatBytes(0)
}

// FormatBitrate renders a bits/sec value as kbps, or "unknown" when zero.
func FormatBitrate(bps int64) string {
	if bps <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d kbps", (bps+500)/1000)
}

// FormatSampleRate renders a sample rate in kHz ("44.1 kHz").
func FormatSampleRate(hz int) string {
	if hz <= 0 {
		return "unknown"
	}
	if hz%1000 == 0 {
		return fmt.Sprintf("%d kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f kHz", float64(hz)/1000)
}

// FormatRatio returns out as a whole percentage of in ("42%"), or "n/a"
// when in is zero.
func FormatRatio(in, out int64) string {
	if in <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", out*100/in)
}

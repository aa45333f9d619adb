package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const banner = `                  _ _
  __ _ _   _  __| (_) ___   ___ ___  _ ____   __
 / _` + "`" + ` | | | |/ _` + "`" + ` | |/ _ \ / __/ _ \| '_ \ \ / /
| (_| | |_| | (_| | | (_) | (_| (_) | | | \ V /
 \__,_|\__,_|\__,_|_|\___/ \___\___/|_| |_|\_/
`

// PrintBanner writes the ASCII art banner to w, in bold magenta when
// colors are enabled (see color.NoColor).
func PrintBanner(w io.Writer) {
	c := color.New(color.FgHiMagenta, color.Bold)
	fmt.Fprint(w, c.Sprint(banner))
}

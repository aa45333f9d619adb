// Command audioconv batch-converts every audio file of one format under a
// folder into another format by driving ffmpeg, optionally removing or
// backing up the originals afterwards.
package main

import (
	"errors"
	"fmt"
	"os"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the root command and maps its result to an exit status:
// 0 when every file converted, was skipped, or there was nothing to do;
// 1 for configuration errors, missing dependencies, or any failed file.
func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errIncomplete):
		// The summary has already been logged.
		return 1
	default:
		fmt.Fprintf(os.Stderr, "audioconv: %v\n", err)
		return 1
	}
}

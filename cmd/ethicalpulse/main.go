package main

import (
	"fmt"
	"os"

	"ethicalpulse/dashboard/internal/cmd"
)

var (
	// Populated via ldflags at release time.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	buildInfo = cmd.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
)

func main() {
	if err := cmd.Run(buildInfo, os.Args, os.Stdout, os.Stderr); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Package main is the entry point for the stationkey CLI.
package main

import (
	"os"

	"github.com/mrz1836/stationkey/internal/cli"
)

// Set by the linker: -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
//
//nolint:gochecknoglobals // ldflags targets must be package-level variables
var (
	version string
	commit  string
	date    string
)

func main() {
	err := cli.Execute(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCode(err))
}

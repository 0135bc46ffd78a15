// mockconnector CLI - validate, inspect and exercise connector fixtures
package main

import (
	"os"

	"github.com/getmockd/mockconnector/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	return cli.Execute(os.Args[1:], os.Stdout, os.Stderr)
}

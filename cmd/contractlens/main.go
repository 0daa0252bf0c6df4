// Package main is the entrypoint for the contractlens command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/kiranshivaraju/contractlens/cmd/contractlens/commands"
)

// Version information, set at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

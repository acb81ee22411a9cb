// Package main is the entry point for the pgha CLI.
//
// pgha provisions, configures and validates a two-node synchronously
// replicated PostgreSQL cluster on Hetzner Cloud.
//
// Commands: init, provision, configure, validate, failover, destroy,
// version.
//
// For detailed usage information, run:
//
//	pgha --help
package main

import (
	"fmt"
	"os"

	"github.com/larsan/pgha/cmd/pgha/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main is the entry point for the botstrap CLI.
//
// This binary bootstraps the InterPrep Telegram bot inside its container
// (directory setup, token validation, dependency installation, process
// hand-off) and manages the bot's container from the host. It delegates
// all functionality to the internal/cli package, which defines cobra
// commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// by the release pipeline. During development, they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"github.com/interprep-ai/botstrap/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
// They provide binary identification for the --version flag output.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inject build-time version info into the CLI package. This decouples
	// the build system (ldflags) from the CLI framework (cobra), keeping
	// main.go minimal.
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}

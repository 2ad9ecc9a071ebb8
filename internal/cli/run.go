// Package cli — run.go implements the "botstrap run" command.
//
// The run command is the container entrypoint: it prepares the bot's
// workspace (directories, optionally dependencies), verifies the token
// environment variable is present, and then replaces the botstrap
// process with the bot via exec. On success this function never
// returns — the bot becomes PID 1's child in botstrap's place, so
// container signals reach it directly.
//
// The token check always happens before the hand-off. A missing or
// empty token terminates the bootstrap with exit code 4 and the bot
// process is never started.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/interprep-ai/botstrap/internal/config"
	"github.com/interprep-ai/botstrap/internal/env"
	"github.com/interprep-ai/botstrap/internal/handoff"
	"github.com/interprep-ai/botstrap/internal/installer"
	"github.com/interprep-ai/botstrap/internal/model"
	"github.com/interprep-ai/botstrap/internal/workspace"
)

// runFlags holds the flag values for the run command.
// These are bound to cobra flags in NewRunCommand.
type runFlags struct {
	// configPath is an explicit launch config path. When empty, the
	// config is discovered in the project directory (or defaults apply).
	configPath string

	// install enables dependency installation before hand-off. This is
	// the "cold start" variant used when the image does not bake the
	// dependencies in.
	install bool

	// projectDir is the bot's working directory. Defaults to the
	// current directory.
	projectDir string
}

// NewRunCommand creates the "run" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Prepare the environment and exec the bot process",
		Long: `Prepare the bot's container environment and hand off to the bot.

The command creates the workspace directories if missing, optionally
installs pinned dependencies (--install), verifies the token environment
variable is set, and then execs the bot's command, replacing the
botstrap process entirely.

Examples:
  botstrap run
  botstrap run --install
  botstrap run --config /etc/botstrap/botstrap.json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to the launch config file")
	cmd.Flags().BoolVar(&flags.install, "install", false, "Install dependencies before hand-off")
	cmd.Flags().StringVar(&flags.projectDir, "project", "", "Project directory (default: current directory)")

	return cmd
}

// runRun is the main logic function for the run command. It resolves
// the launch plan and delegates to a bootstrap wired with the real
// installer and exec implementations.
func runRun(ctx context.Context, flags *runFlags) error {
	plan, configPath, err := config.LoadPlan(flags.projectDir, flags.configPath)
	if err != nil {
		return err
	}

	if configPath != "" {
		VerboseLog("Loaded launch config from %s", configPath)
	} else {
		VerboseLog("No launch config found, using built-in defaults")
	}

	b := &bootstrap{
		ws:   workspace.NewManager(flags.projectDir),
		inst: installer.New(plan.Python),
		hand: handoff.New(),
		out:  os.Stdout,
	}

	return b.execute(ctx, plan, flags.install)
}

// bootstrap bundles the collaborators of the run command so tests can
// substitute the installer's runner and the hand-off's exec function.
type bootstrap struct {
	ws   *workspace.Manager
	inst *installer.Installer
	hand *handoff.Handoff
	out  io.Writer
}

// execute performs the bootstrap sequence: directories, optional
// install with diagnostics, token check, hand-off. Any step failing
// aborts the sequence — in particular, exec is never reached without a
// present token.
func (b *bootstrap) execute(ctx context.Context, plan *model.LaunchPlan, withInstall bool) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	// Step 1: Ensure the workspace directories exist. Existing
	// directories and their contents are left untouched.
	results, err := b.ws.EnsureDirs(plan.Directories)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Created {
			fmt.Fprintf(b.out, "Created directory %s\n", r.Path)
		} else {
			VerboseLog("Directory %s already exists", r.Path)
		}
	}

	if err := b.printWorkspace(); err != nil {
		return err
	}

	// Step 2: Install pinned dependencies and report the relevant
	// packages, when requested.
	if withInstall {
		root, err := b.ws.Root()
		if err != nil {
			return err
		}
		manifest := plan.Manifest
		if !filepath.IsAbs(manifest) {
			manifest = filepath.Join(root, manifest)
		}

		fmt.Fprintf(b.out, "Installing dependencies from %s\n", manifest)
		if err := b.inst.Install(ctx, manifest); err != nil {
			return err
		}

		if err := b.printDiagnostics(ctx, plan); err != nil {
			return err
		}
	}

	// Step 3: Verify the bot token is present. Failing here is the
	// whole point of the bootstrap — the bot process must never start
	// without its credential.
	if _, err := env.RequireToken(plan.TokenVar); err != nil {
		return err
	}
	VerboseLog("Token variable %s is set", plan.TokenVar)

	// Step 4: Hand off. On success this call does not return.
	fmt.Fprintf(b.out, "Starting %s\n", plan.Name)
	return b.hand.Exec(plan.Command, plan.Env)
}

// printWorkspace reports the working directory and its top-level
// entries, confirming to the operator what the bot will see.
func (b *bootstrap) printWorkspace() error {
	root, err := b.ws.Root()
	if err != nil {
		return err
	}
	fmt.Fprintf(b.out, "Workspace: %s\n", root)

	entries, err := b.ws.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name
		if e.IsDir {
			name += "/"
		}
		fmt.Fprintf(b.out, "  %s\n", name)
	}
	return nil
}

// printDiagnostics reports the interpreter version and the installed
// packages matching the plan's filters. This mirrors what an operator
// would check by hand after an install, so it goes to stdout rather
// than behind --verbose.
func (b *bootstrap) printDiagnostics(ctx context.Context, plan *model.LaunchPlan) error {
	version, err := b.inst.PythonVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(b.out, version)

	packages, err := b.inst.InstalledPackages(ctx)
	if err != nil {
		return err
	}

	for _, pkg := range installer.FilterPackages(packages, plan.PackageFilters) {
		fmt.Fprintln(b.out, pkg.String())
	}
	return nil
}

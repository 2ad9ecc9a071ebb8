// Package cli — check.go implements the "botstrap check" command.
//
// The check command is a read-only preflight: it reports the launch
// config in effect, the token variable's status (masked), and which
// workspace directories exist, without creating anything or starting
// the bot. Operators run it inside the container to diagnose a bot
// that refuses to start.
//
// The command exits with code 4 when the token is missing, so it can
// serve as a container health probe for the credential precondition.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/interprep-ai/botstrap/internal/config"
	"github.com/interprep-ai/botstrap/internal/docker"
	"github.com/interprep-ai/botstrap/internal/env"
	"github.com/interprep-ai/botstrap/internal/installer"
	"github.com/interprep-ai/botstrap/internal/model"
	"github.com/interprep-ai/botstrap/internal/workspace"
)

// checkFlags holds the flag values for the check command.
type checkFlags struct {
	// configPath is an explicit launch config path.
	configPath string

	// projectDir is the bot's working directory.
	projectDir string
}

// checkReport collects the preflight findings for output.
type checkReport struct {
	ConfigPath  string          `json:"configPath,omitempty"`
	Name        string          `json:"name"`
	Token       env.TokenStatus `json:"token"`
	Directories []checkDirEntry `json:"directories"`
	Manifest    checkFileEntry  `json:"manifest"`
	Python      string          `json:"python,omitempty"`

	// Docker is only populated when a deploy config is present; an
	// in-container check has no business probing the host daemon.
	Docker *checkDockerEntry `json:"docker,omitempty"`
}

// checkDockerEntry reports the Docker daemon's reachability for hosts
// that carry a deploy config.
type checkDockerEntry struct {
	Reachable bool   `json:"reachable"`
	Detail    string `json:"detail,omitempty"`
}

// checkDirEntry reports a single workspace directory's existence.
type checkDirEntry struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// checkFileEntry reports the dependency manifest's existence.
type checkFileEntry struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// NewCheckCommand creates the "check" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the bot's environment without starting it",
		Long: `Check the bot's environment preconditions and report the findings.

Reports the launch config in effect, whether the token variable is set
(the value is masked), which workspace directories exist, and whether
the dependency manifest is present. Nothing is created or modified.

Exits with code 4 when the token variable is unset or empty.

Examples:
  botstrap check
  botstrap check --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to the launch config file")
	cmd.Flags().StringVar(&flags.projectDir, "project", "", "Project directory (default: current directory)")

	return cmd
}

// runCheck is the main logic function for the check command. It builds
// the full report before deciding the exit status, so a missing token
// still produces a complete diagnostic.
func runCheck(ctx context.Context, flags *checkFlags) error {
	plan, configPath, err := config.LoadPlan(flags.projectDir, flags.configPath)
	if err != nil {
		return err
	}

	ws := workspace.NewManager(flags.projectDir)
	root, err := ws.Root()
	if err != nil {
		return err
	}

	report := checkReport{
		ConfigPath: configPath,
		Name:       plan.Name,
		Token:      env.StatusFor(plan.TokenVar),
	}

	for _, dir := range plan.Directories {
		path := filepath.Join(root, dir)
		info, statErr := os.Stat(path)
		report.Directories = append(report.Directories, checkDirEntry{
			Path:   dir,
			Exists: statErr == nil && info.IsDir(),
		})
	}

	manifest := plan.Manifest
	if !filepath.IsAbs(manifest) {
		manifest = filepath.Join(root, manifest)
	}
	_, statErr := os.Stat(manifest)
	report.Manifest = checkFileEntry{Path: manifest, Exists: statErr == nil}

	// Best effort: a missing interpreter is itself a finding, not a
	// reason to abort the report.
	if version, verr := installer.New(plan.Python).PythonVersion(ctx); verr == nil {
		report.Python = version
	} else {
		report.Python = fmt.Sprintf("unavailable (%v)", verr)
	}

	// The Docker section only applies when this host has a deploy
	// config; inside the bot's container there is nothing to probe.
	if deployPath, derr := config.FindDeployConfig(root); derr == nil {
		entry := &checkDockerEntry{}
		if cli, cerr := docker.NewClient(); cerr == nil {
			if perr := cli.Ping(ctx); perr == nil {
				entry.Reachable = true
			} else {
				entry.Detail = perr.Error()
			}
			_ = cli.Close()
		} else {
			entry.Detail = cerr.Error()
		}
		report.Docker = entry
		VerboseLog("Deploy config found at %s, probed Docker daemon", deployPath)
	}

	printCheckReport(report)

	if !report.Token.Present {
		return model.NewCLIError(model.ExitMissingToken,
			fmt.Sprintf("environment variable %s is not set", plan.TokenVar))
	}
	return nil
}

// printCheckReport outputs the preflight report in text or JSON format.
func printCheckReport(report checkReport) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	if report.ConfigPath != "" {
		fmt.Printf("Config:    %s\n", report.ConfigPath)
	} else {
		fmt.Println("Config:    built-in defaults")
	}
	fmt.Printf("Bot:       %s\n", report.Name)

	if report.Token.Present {
		fmt.Printf("Token:     %s is set (%s)\n", report.Token.Var, report.Token.Masked)
	} else {
		fmt.Printf("Token:     %s is NOT set\n", report.Token.Var)
	}

	for _, dir := range report.Directories {
		if dir.Exists {
			fmt.Printf("Directory: %s exists\n", dir.Path)
		} else {
			fmt.Printf("Directory: %s missing (created on run)\n", dir.Path)
		}
	}

	if report.Manifest.Exists {
		fmt.Printf("Manifest:  %s\n", report.Manifest.Path)
	} else {
		fmt.Printf("Manifest:  %s missing\n", report.Manifest.Path)
	}

	fmt.Printf("Python:    %s\n", report.Python)

	if report.Docker != nil {
		if report.Docker.Reachable {
			fmt.Println("Docker:    reachable")
		} else {
			fmt.Printf("Docker:    unreachable (%s)\n", report.Docker.Detail)
		}
	}
}

// Package cli — install.go implements the "botstrap install" command.
//
// The install command installs the bot's pinned dependencies without
// starting the bot. It is used in image builds (RUN botstrap install)
// and for refreshing dependencies in a long-lived container. The pip
// cache is disabled so the container image stays small.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/interprep-ai/botstrap/internal/config"
	"github.com/interprep-ai/botstrap/internal/installer"
	"github.com/interprep-ai/botstrap/internal/model"
	"github.com/interprep-ai/botstrap/internal/workspace"
)

// installFlags holds the flag values for the install command.
type installFlags struct {
	// configPath is an explicit launch config path.
	configPath string

	// projectDir is the bot's working directory.
	projectDir string
}

// NewInstallCommand creates the "install" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewInstallCommand() *cobra.Command {
	flags := &installFlags{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the bot's pinned dependencies",
		Long: `Install the bot's dependencies from the pinned manifest.

Runs "<python> -m pip install --no-cache-dir -r <manifest>" and then
reports the interpreter version and the installed packages matching the
configured filters.

Examples:
  botstrap install
  botstrap install --json
  botstrap install --config /etc/botstrap/botstrap.json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to the launch config file")
	cmd.Flags().StringVar(&flags.projectDir, "project", "", "Project directory (default: current directory)")

	return cmd
}

// runInstall is the main logic function for the install command.
func runInstall(ctx context.Context, flags *installFlags) error {
	plan, configPath, err := config.LoadPlan(flags.projectDir, flags.configPath)
	if err != nil {
		return err
	}

	if configPath != "" {
		VerboseLog("Loaded launch config from %s", configPath)
	}

	ws := workspace.NewManager(flags.projectDir)
	root, err := ws.Root()
	if err != nil {
		return err
	}

	manifest := plan.Manifest
	if !filepath.IsAbs(manifest) {
		manifest = filepath.Join(root, manifest)
	}
	if _, err := os.Stat(manifest); err != nil {
		return model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("dependency manifest %s not found", manifest), err)
	}

	inst := installer.New(plan.Python)

	VerboseLog("Installing dependencies from %s", manifest)
	if err := inst.Install(ctx, manifest); err != nil {
		return err
	}

	version, err := inst.PythonVersion(ctx)
	if err != nil {
		return err
	}

	packages, err := inst.InstalledPackages(ctx)
	if err != nil {
		return err
	}
	matched := installer.FilterPackages(packages, plan.PackageFilters)

	printInstallResult(manifest, version, matched)
	return nil
}

// printInstallResult outputs the install report in text or JSON format.
func printInstallResult(manifest, version string, packages []model.PackageInfo) {
	if IsJSONOutput() {
		type packageJSON struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		}

		type resultJSON struct {
			Manifest string        `json:"manifest"`
			Python   string        `json:"python"`
			Packages []packageJSON `json:"packages"`
		}

		result := resultJSON{
			Manifest: manifest,
			Python:   version,
			Packages: make([]packageJSON, 0, len(packages)),
		}
		for _, pkg := range packages {
			result.Packages = append(result.Packages, packageJSON{
				Name:    pkg.Name,
				Version: pkg.Version,
			})
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Installed dependencies from %s\n", manifest)
	fmt.Println(version)
	for _, pkg := range packages {
		fmt.Println(pkg.String())
	}
}

// Package cli — up.go implements the "botstrap up" command.
//
// The up command runs on the host: it reads deploy.yaml, verifies the
// published host ports are free, resolves the pass-through environment
// variables from the host environment, and creates and starts the bot's
// container via the Docker SDK. All deployment metadata is stored as
// labels on the container itself, so "status" and "down" work without
// any state file.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/interprep-ai/botstrap/internal/config"
	"github.com/interprep-ai/botstrap/internal/docker"
	"github.com/interprep-ai/botstrap/internal/model"
	"github.com/interprep-ai/botstrap/internal/port"
)

// upFlags holds the flag values for the up command.
type upFlags struct {
	// configPath is an explicit deploy config path. When empty, the
	// config is discovered in the project directory.
	configPath string

	// projectDir is the directory relative volume paths resolve against.
	projectDir string
}

// NewUpCommand creates the "up" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewUpCommand() *cobra.Command {
	flags := &upFlags{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Create and start the bot's container",
		Long: `Create and start the bot's container from the deploy config.

Reads deploy.yaml, checks that the published host ports are available,
resolves the listed environment variables from the host environment,
and creates and starts a labeled container via the Docker daemon.

Fails with exit code 7 when a published port is already in use, and
refuses to create a second deployment under the same name.

Examples:
  botstrap up
  botstrap up --config deploy/production.yaml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to the deploy config file")
	cmd.Flags().StringVar(&flags.projectDir, "project", "", "Project directory (default: current directory)")

	return cmd
}

// runUp is the main logic function for the up command.
func runUp(ctx context.Context, flags *upFlags) error {
	// Step 1: Locate and load the deploy config.
	projectDir := flags.projectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		projectDir = wd
	}

	configPath := flags.configPath
	if configPath == "" {
		found, err := config.FindDeployConfig(projectDir)
		if err != nil {
			return err
		}
		configPath = found
	}

	cfg, err := config.LoadDeployConfig(configPath)
	if err != nil {
		return err
	}
	if verrs := config.ValidateDeployConfig(cfg); len(verrs) > 0 {
		return model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid deploy config at %s", configPath), verrs[0])
	}

	VerboseLog("Loaded deploy config from %s", configPath)

	// Step 2: Parse and preflight the published ports. Docker would only
	// report the conflict after creating the container, so check first.
	bindings, err := cfg.PortBindings()
	if err != nil {
		return err
	}
	if err := model.ValidatePortBindings(bindings); err != nil {
		return model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid port bindings in %s", configPath), err)
	}

	scanner := port.NewScanner()
	if conflicts := scanner.CheckBindings(bindings); len(conflicts) > 0 {
		conflictStrs := make([]string, 0, len(conflicts))
		for _, b := range conflicts {
			conflictStrs = append(conflictStrs, b.String())
		}
		return model.NewCLIError(model.ExitPortConflict,
			fmt.Sprintf("port conflict: the following ports are already in use: %s",
				strings.Join(conflictStrs, ", ")))
	}

	// Step 3: Resolve pass-through environment variables. Values come
	// from the host environment at up time; a listed variable that is
	// not set would start a broken bot, so fail instead.
	containerEnv := make([]string, 0, len(cfg.Env))
	for _, name := range cfg.Env {
		value, ok := os.LookupEnv(name)
		if !ok {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("deploy config lists environment variable %s, but it is not set on the host", name))
		}
		containerEnv = append(containerEnv, name+"="+value)
	}

	// Step 4: Resolve volume binds. Relative host paths are anchored at
	// the project directory.
	mounts, err := cfg.VolumeMounts()
	if err != nil {
		return err
	}
	binds := make([]string, 0, len(mounts))
	for _, m := range mounts {
		hostPath := m.HostPath
		if !filepath.IsAbs(hostPath) {
			hostPath = filepath.Join(projectDir, hostPath)
		}
		binds = append(binds, hostPath+":"+m.ContainerPath)
	}

	// Step 5: Connect to Docker and refuse duplicate deployments.
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	VerboseLog("Connected to Docker daemon")

	_, findErr := docker.FindDeployment(ctx, cli, cfg.Name)
	if findErr == nil {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("deployment %q already exists; run \"botstrap down --remove %s\" first", cfg.Name, cfg.Name))
	}
	var cliErr *model.CLIError
	if !errors.As(findErr, &cliErr) || cliErr.Code != model.ExitDeploymentNotFound {
		return findErr
	}

	// Step 6: Create and start the container.
	containerName := cfg.ContainerName
	if containerName == "" {
		containerName = "botstrap-" + cfg.Name
	}

	createdAt := time.Now()
	opts := docker.CreateOptions{
		ContainerName: containerName,
		Image:         cfg.Image,
		Env:           containerEnv,
		Binds:         binds,
		Ports:         bindings,
		Labels:        docker.BuildLabels(cfg.Name, cfg.Image, bindings, createdAt),
		RestartPolicy: cfg.RestartPolicy,
	}

	VerboseLog("Creating container %q from image %q", containerName, cfg.Image)
	containerID, err := docker.CreateContainer(ctx, cli, opts)
	if err != nil {
		return err
	}

	VerboseLog("Starting container %s", containerID[:12])
	if err := docker.StartContainer(ctx, cli, containerID); err != nil {
		return err
	}

	printUpResult(cfg.Name, cfg.Image, containerName, containerID, bindings)
	return nil
}

// printUpResult outputs the up command result in text or JSON format.
func printUpResult(name, image, containerName, containerID string, bindings []model.PortBinding) {
	if IsJSONOutput() {
		type resultJSON struct {
			Name      string   `json:"name"`
			Action    string   `json:"action"`
			Image     string   `json:"image"`
			Container string   `json:"container"`
			ID        string   `json:"id"`
			Ports     []string `json:"ports"`
		}

		result := resultJSON{
			Name:      name,
			Action:    "started",
			Image:     image,
			Container: containerName,
			ID:        containerID,
			Ports:     make([]string, 0, len(bindings)),
		}
		for _, b := range bindings {
			result.Ports = append(result.Ports, b.String())
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Started deployment %q\n", name)
	fmt.Printf("  Image:     %s\n", image)
	fmt.Printf("  Container: %s (%s)\n", containerName, containerID[:12])
	for _, b := range bindings {
		fmt.Printf("  Port:      %s\n", b.String())
	}
}

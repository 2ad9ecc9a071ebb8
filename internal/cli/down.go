// Package cli — down.go implements the "botstrap down" command.
//
// The down command stops a deployment's container and, with --remove,
// removes it entirely. Removing the container also removes its labels,
// which are the deployment's only persistent state — after
// "down --remove" the deployment no longer exists.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interprep-ai/botstrap/internal/config"
	"github.com/interprep-ai/botstrap/internal/docker"
	"github.com/interprep-ai/botstrap/internal/model"
)

// downFlags holds the flag values for the down command.
type downFlags struct {
	// remove deletes the container after stopping it, erasing the
	// deployment entirely.
	remove bool
}

// NewDownCommand creates the "down" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDownCommand() *cobra.Command {
	flags := &downFlags{}

	cmd := &cobra.Command{
		Use:   "down [name]",
		Short: "Stop a bot deployment",
		Long: `Stop a deployment's container, optionally removing it.

Without --remove, the container is stopped but kept, so "status" still
shows the deployment and a later "up" would conflict with its name.
With --remove, the container is deleted and the deployment ceases to
exist.

The deployment name defaults to "` + config.DefaultName + `" when omitted.

Examples:
  botstrap down
  botstrap down interprep --remove`,

		// The name is optional — most hosts run a single bot.
		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			name := config.DefaultName
			if len(args) > 0 {
				name = args[0]
			}
			return runDown(cmd.Context(), name, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.remove, "remove", false, "Remove the container after stopping it")

	return cmd
}

// runDown is the main logic function for the down command. It finds the
// named deployment, stops its container, and removes it when requested.
func runDown(ctx context.Context, name string, flags *downFlags) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	VerboseLog("Connected to Docker daemon")

	deployment, err := docker.FindDeployment(ctx, cli, name)
	if err != nil {
		return err
	}

	containerID := deployment.Container.ContainerID

	// A stopped container cannot be stopped again, so only running
	// deployments are sent the stop request.
	if deployment.Status == model.StatusRunning {
		VerboseLog("Stopping container %s", containerID[:12])
		if err := docker.StopContainer(ctx, cli, containerID); err != nil {
			return err
		}
	} else {
		VerboseLog("Deployment %q is already stopped", name)
	}

	if flags.remove {
		VerboseLog("Removing container %s", containerID[:12])
		if err := docker.RemoveContainer(ctx, cli, containerID, false); err != nil {
			return err
		}
	}

	printDownResult(deployment, flags.remove)
	return nil
}

// printDownResult outputs the down command result in text or JSON format.
func printDownResult(deployment *model.Deployment, removed bool) {
	action := "stopped"
	if removed {
		action = "removed"
	}

	if IsJSONOutput() {
		type resultJSON struct {
			Name      string `json:"name"`
			Action    string `json:"action"`
			Container string `json:"container"`
		}

		result := resultJSON{
			Name:      deployment.Name,
			Action:    action,
			Container: deployment.Container.ContainerName,
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("%s deployment %q\n", strings.ToUpper(action[:1])+action[1:], deployment.Name)
}

// Package cli — status.go implements the "botstrap status" command.
//
// The status command displays all managed deployments by querying
// Docker for containers with the "botstrap.managed-by=botstrap" label.
// Containers are grouped by deployment name and presented as a text
// table or JSON array, depending on the --json flag.
//
// An optional --status flag allows filtering by deployment state
// (running, stopped, or all).
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interprep-ai/botstrap/internal/docker"
	"github.com/interprep-ai/botstrap/internal/model"
)

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	// status filters deployments by state.
	// Valid values: "running", "stopped", "all" (default).
	status string
}

// NewStatusCommand creates the "status" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List managed bot deployments",
		Long: `List all managed bot deployments and their state.

Each deployment is shown with its name, image, container state, and
published ports, reconstructed entirely from container labels.

Examples:
  botstrap status
  botstrap status --status running
  botstrap status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.status, "status", "all",
		"Filter by status: running, stopped, all (default: all)")

	return cmd
}

// runStatus is the main logic function for the status command.
// It connects to Docker, discovers managed deployments, applies the
// status filter, and outputs results in the appropriate format.
func runStatus(ctx context.Context, flags *statusFlags) error {
	// Step 1: Validate the --status flag value.
	statusFilter := flags.status
	if statusFilter != "all" {
		if _, err := model.ParseDeployStatus(statusFilter); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("invalid status filter %q: valid values are running, stopped, all", statusFilter), nil)
		}
	}

	// Step 2: Connect to Docker and verify the daemon is available.
	cli, err := docker.NewClient()
	if err != nil {
		return err // NewClient already returns CLIError with ExitDockerNotRunning
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	VerboseLog("Connected to Docker daemon")

	// Step 3: List all containers managed by botstrap.
	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return err // ListManagedContainers already returns CLIError
	}
	VerboseLog("Found %d managed containers", len(containers))

	// Step 4: Group containers by deployment name and build domain
	// objects. A single corrupted deployment should not prevent listing
	// the others, so label errors are logged and skipped.
	groups := docker.GroupByDeployment(containers)

	var deployments []*model.Deployment
	for name, group := range groups {
		deployment, err := docker.BuildDeployment(name, group)
		if err != nil {
			VerboseLog("Warning: skipping deployment %q: %v", name, err)
			continue
		}
		deployments = append(deployments, deployment)
	}

	// Step 5: Sort alphabetically for consistent output.
	sort.Slice(deployments, func(i, j int) bool {
		return deployments[i].Name < deployments[j].Name
	})

	// Step 6: Apply the --status filter if specified.
	if statusFilter != "all" {
		filtered := make([]*model.Deployment, 0, len(deployments))
		for _, d := range deployments {
			if d.Status.String() == statusFilter {
				filtered = append(filtered, d)
			}
		}
		deployments = filtered
	}

	printStatusResult(deployments)
	return nil
}

// printStatusResult outputs the deployments in text or JSON format,
// depending on the global --json flag.
func printStatusResult(deployments []*model.Deployment) {
	if IsJSONOutput() {
		printStatusResultJSON(deployments)
	} else {
		printStatusResultText(deployments)
	}
}

// statusEntryJSON is the JSON output structure for a single deployment
// in the status command.
type statusEntryJSON struct {
	Name      string   `json:"name"`
	Image     string   `json:"image"`
	Status    string   `json:"status"`
	Container string   `json:"container"`
	Ports     []string `json:"ports"`
	CreatedAt string   `json:"createdAt"`
}

// printStatusResultJSON outputs the deployment list as structured JSON.
// The top-level key is "deployments" containing an array of objects.
func printStatusResultJSON(deployments []*model.Deployment) {
	type resultJSON struct {
		Deployments []statusEntryJSON `json:"deployments"`
	}

	result := resultJSON{
		// Use an empty slice instead of nil to ensure JSON output shows []
		// instead of null when no deployments are found.
		Deployments: make([]statusEntryJSON, 0, len(deployments)),
	}

	for _, d := range deployments {
		entry := statusEntryJSON{
			Name:      d.Name,
			Image:     d.Image,
			Status:    d.Status.String(),
			Container: d.Container.ContainerName,
			Ports:     make([]string, 0, len(d.Ports)),
			CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		for _, b := range d.Ports {
			entry.Ports = append(entry.Ports, b.String())
		}
		result.Deployments = append(result.Deployments, entry)
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printStatusResultText outputs the deployment list as a human-readable
// text table with aligned columns.
//
// The table format is:
//
//	NAME           IMAGE              STATUS    PORTS
//	interprep      interprep-bot:1.4  running   8443:8443/tcp
func printStatusResultText(deployments []*model.Deployment) {
	if len(deployments) == 0 {
		fmt.Println("No deployments found.")
		return
	}

	fmt.Printf("%-20s %-30s %-10s %s\n", "NAME", "IMAGE", "STATUS", "PORTS")

	for _, d := range deployments {
		fmt.Printf("%-20s %-30s %-10s %s\n",
			d.Name,
			d.Image,
			d.Status.String(),
			FormatPortsList(d.Ports),
		)
	}
}

// FormatPortsList converts port bindings into a comma-separated string
// of "host:container/proto" entries sorted by host port. Returns "-"
// when no ports are published.
//
// This function is exported for testing purposes (tested in status_test.go).
func FormatPortsList(bindings []model.PortBinding) string {
	if len(bindings) == 0 {
		return "-"
	}

	sorted := make([]model.PortBinding, len(bindings))
	copy(sorted, bindings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].HostPort < sorted[j].HostPort
	})

	parts := make([]string, 0, len(sorted))
	for _, b := range sorted {
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ",")
}

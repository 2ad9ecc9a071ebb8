// container.go implements the container lifecycle operations behind the
// up/status/down commands: creating the bot's container from the deploy
// config, discovering it via labels, and starting/stopping/removing it.
//
// Each deployment is a single container identified by the
// "botstrap.managed-by" label, which separates it from unrelated
// containers on the same host.
package docker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/go-connections/nat"

	"github.com/interprep-ai/botstrap/internal/model"
)

// ListManagedContainers queries the Docker daemon for all containers
// carrying the "botstrap.managed-by=botstrap" label, including stopped
// ones. This is the primary entry point for discovering what deployments
// currently exist — all state is derived from labels, not from any
// external database.
func ListManagedContainers(ctx context.Context, cli *Client) ([]model.ContainerInfo, error) {
	// Filtering server-side via the Docker API is cheaper than listing
	// everything and filtering in Go.
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	// All:true includes stopped containers — a stopped deployment still
	// needs to show up in "status" and be removable by "down".
	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	infos := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		infos = append(infos, containerToInfo(c))
	}
	return infos, nil
}

// containerToInfo converts a Docker API container struct into the
// domain ContainerInfo, decoupling the rest of the application from the
// SDK types. Docker returns names with a leading "/" that is stripped
// for display.
func containerToInfo(c types.Container) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		Status:        c.State,
		Labels:        c.Labels,
	}
}

// GroupByDeployment groups containers by their "botstrap.name" label
// value. Containers without the label are silently skipped — they cannot
// be attributed to a deployment, and ListManagedContainers should not
// produce them.
func GroupByDeployment(containers []model.ContainerInfo) map[string][]model.ContainerInfo {
	groups := make(map[string][]model.ContainerInfo)

	for _, c := range containers {
		name, ok := c.Labels[LabelName]
		if !ok || name == "" {
			continue
		}
		groups[name] = append(groups[name], c)
	}

	return groups
}

// BuildDeployment constructs a Deployment domain object from the
// containers that carry its name label. A deployment is expected to have
// exactly one container; if a stale duplicate exists (e.g., a failed
// "up" followed by a manual re-tag), the first container wins and the
// aggregate status reflects any running one.
func BuildDeployment(name string, containers []model.ContainerInfo) (*model.Deployment, error) {
	if len(containers) == 0 {
		return nil, fmt.Errorf("cannot build deployment %q: no containers provided", name)
	}

	deployment, err := ParseLabels(containers[0].Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to parse labels for deployment %q: %w", name, err)
	}

	deployment.Container = containers[0]
	deployment.Status = model.StatusStopped
	for _, c := range containers {
		if c.Status == "running" {
			deployment.Status = model.StatusRunning
			break
		}
	}

	return deployment, nil
}

// FindDeployment locates a single deployment by name. Returns a CLIError
// with ExitDeploymentNotFound when no container carries the name label.
func FindDeployment(ctx context.Context, cli *Client, name string) (*model.Deployment, error) {
	containers, err := ListManagedContainers(ctx, cli)
	if err != nil {
		return nil, err
	}

	groups := GroupByDeployment(containers)
	group, ok := groups[name]
	if !ok {
		return nil, model.NewCLIError(
			model.ExitDeploymentNotFound,
			fmt.Sprintf("deployment %q not found", name),
		)
	}

	return BuildDeployment(name, group)
}

// CreateOptions describes the container created for a deployment.
// The fields are already resolved and validated by the caller — this
// package only translates them into Docker API structures.
type CreateOptions struct {
	// ContainerName is the Docker container name.
	ContainerName string

	// Image is the container image reference.
	Image string

	// Env holds resolved KEY=VALUE environment entries for the container.
	Env []string

	// Binds lists bind mounts in Docker's "hostPath:containerPath" form
	// with absolute host paths.
	Binds []string

	// Ports lists the published port bindings.
	Ports []model.PortBinding

	// Labels is the full label map, including the botstrap.* management
	// labels from BuildLabels.
	Labels map[string]string

	// RestartPolicy is the Docker restart policy name; empty means the
	// daemon default ("no").
	RestartPolicy string
}

// CreateContainer creates (but does not start) the deployment's
// container via the Docker SDK and returns its ID.
func CreateContainer(ctx context.Context, cli *Client, opts CreateOptions) (string, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, b := range opts.Ports {
		port, err := nat.NewPort(b.Protocol, strconv.Itoa(b.ContainerPort))
		if err != nil {
			return "", fmt.Errorf("invalid port binding %s: %w", b.String(), err)
		}
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{HostPort: strconv.Itoa(b.HostPort)}}
	}

	config := &container.Config{
		Image:        opts.Image,
		Env:          opts.Env,
		Labels:       opts.Labels,
		ExposedPorts: exposed,
	}

	hostConfig := &container.HostConfig{
		Binds:        opts.Binds,
		PortBindings: bindings,
	}
	if opts.RestartPolicy != "" {
		hostConfig.RestartPolicy = container.RestartPolicy{
			Name: container.RestartPolicyMode(opts.RestartPolicy),
		}
	}

	resp, err := cli.Inner().ContainerCreate(ctx, config, hostConfig, nil, nil, opts.ContainerName)
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create container %q", opts.ContainerName),
			err,
		)
	}

	return resp.ID, nil
}

// StartContainer starts a created or stopped container by ID.
func StartContainer(ctx context.Context, cli *Client, containerID string) error {
	err := cli.Inner().ContainerStart(ctx, containerID, container.StartOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start container %q", containerID),
			err,
		)
	}
	return nil
}

// StopContainer stops a running container by ID. The container's main
// process receives SIGTERM and, after the daemon's default timeout,
// SIGKILL — the nil StopOptions timeout keeps the default grace period.
func StopContainer(ctx context.Context, cli *Client, containerID string) error {
	err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to stop container %q", containerID),
			err,
		)
	}
	return nil
}

// RemoveContainer removes a container by ID. The container must be
// stopped first unless force is true, in which case Docker kills it.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to remove container %q", containerID),
			err,
		)
	}
	return nil
}

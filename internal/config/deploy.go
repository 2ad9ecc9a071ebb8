// deploy.go handles the host-side deployment config (deploy.yaml), which
// describes how "botstrap up" creates the bot's container: image, env
// passthrough, volume mounts for the data directories, and published
// ports.
//
// The file is plain YAML (parsed with gopkg.in/yaml.v3). Ports and
// volumes use the familiar "host:container" string form and are
// normalized into typed values here, so the docker package never parses
// strings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/interprep-ai/botstrap/internal/model"
)

// DeployConfig represents the parsed deploy.yaml. Unlike the launch
// config, image is mandatory — there is nothing sensible to default a
// container image to.
type DeployConfig struct {
	// Name is the deployment identifier. Defaults to the launch config's
	// default name when omitted.
	Name string `yaml:"name"`

	// Image is the container image to run. Required.
	Image string `yaml:"image"`

	// ContainerName overrides the generated container name
	// ("botstrap-<name>") when set.
	ContainerName string `yaml:"containerName,omitempty"`

	// Env lists environment variable NAMES passed through from the host
	// environment into the container. Values are resolved at "up" time so
	// secrets never appear in the config file.
	Env []string `yaml:"env,omitempty"`

	// Volumes lists bind mounts in "hostPath:containerPath" form.
	Volumes []string `yaml:"volumes,omitempty"`

	// Ports lists published ports in "hostPort:containerPort" or
	// "hostPort:containerPort/protocol" form.
	Ports []string `yaml:"ports,omitempty"`

	// RestartPolicy is the Docker restart policy name for the container.
	// Common values: "no", "on-failure", "always", "unless-stopped".
	RestartPolicy string `yaml:"restartPolicy,omitempty"`
}

// LoadDeployConfig reads and parses a deploy.yaml file.
//
// Returns a CLIError with ExitConfigError if the file does not exist or
// fails to parse.
func LoadDeployConfig(path string) (*DeployConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("deploy config not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read deploy config: %w", err)
	}

	var cfg DeployConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to parse deploy config at %s", path),
			err,
		)
	}

	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	return &cfg, nil
}

// FindDeployConfig searches for deploy.yaml in the standard locations
// within a project directory.
//
// The search order:
//  1. <projectPath>/.botstrap/deploy.yaml (preferred)
//  2. <projectPath>/deploy.yaml
//
// Returns the absolute path to the first found file, or a CLIError with
// ExitConfigError if neither location contains the file. Unlike the
// launch config, the deploy config has no sensible defaults, so the
// host-side commands require it.
func FindDeployConfig(projectPath string) (string, error) {
	candidates := []string{
		filepath.Join(projectPath, ".botstrap", "deploy.yaml"),
		filepath.Join(projectPath, "deploy.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", model.NewCLIError(
		model.ExitConfigError,
		fmt.Sprintf("deploy config not found in %s (searched .botstrap/deploy.yaml and deploy.yaml)", projectPath),
	)
}

// PortBindings parses the config's "hostPort:containerPort[/protocol]"
// entries into typed model.PortBindings and validates them as a set.
func (c *DeployConfig) PortBindings() ([]model.PortBinding, error) {
	bindings := make([]model.PortBinding, 0, len(c.Ports))

	for _, entry := range c.Ports {
		binding, err := parsePortEntry(entry)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, *binding)
	}

	if err := model.ValidatePortBindings(bindings); err != nil {
		return nil, err
	}

	return bindings, nil
}

// parsePortEntry parses a single "hostPort:containerPort[/protocol]"
// string. The protocol suffix is optional and defaults to "tcp".
func parsePortEntry(entry string) (*model.PortBinding, error) {
	spec := entry
	protocol := "tcp"

	// Split off an optional "/protocol" suffix first, so the port part
	// can be split on ":" unambiguously.
	if idx := strings.LastIndex(spec, "/"); idx >= 0 {
		protocol = spec[idx+1:]
		spec = spec[:idx]
	}

	hostStr, containerStr, found := strings.Cut(spec, ":")
	if !found {
		return nil, fmt.Errorf("invalid port entry %q: expected \"hostPort:containerPort\"", entry)
	}

	hostPort, err := strconv.Atoi(hostStr)
	if err != nil {
		return nil, fmt.Errorf("invalid host port in entry %q: %w", entry, err)
	}
	containerPort, err := strconv.Atoi(containerStr)
	if err != nil {
		return nil, fmt.Errorf("invalid container port in entry %q: %w", entry, err)
	}

	return &model.PortBinding{
		HostPort:      hostPort,
		ContainerPort: containerPort,
		Protocol:      protocol,
	}, nil
}

// VolumeMount is a parsed "hostPath:containerPath" bind mount entry.
type VolumeMount struct {
	// HostPath is the path on the host. Relative paths are resolved
	// against the project directory by the caller.
	HostPath string

	// ContainerPath is the absolute mount target inside the container.
	ContainerPath string
}

// VolumeMounts parses the config's "hostPath:containerPath" entries.
func (c *DeployConfig) VolumeMounts() ([]VolumeMount, error) {
	mounts := make([]VolumeMount, 0, len(c.Volumes))

	for _, entry := range c.Volumes {
		host, container, found := strings.Cut(entry, ":")
		if !found || host == "" || container == "" {
			return nil, fmt.Errorf("invalid volume entry %q: expected \"hostPath:containerPath\"", entry)
		}
		mounts = append(mounts, VolumeMount{HostPath: host, ContainerPath: container})
	}

	return mounts, nil
}

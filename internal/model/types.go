// Package model defines the domain types for the botstrap CLI.
//
// The types fall into two groups: the launch plan (what the in-container
// bootstrap commands execute) and the deployment view (what the host-side
// commands reconstruct from Docker container labels). There is no state
// file on disk — deployment state lives entirely in container labels and
// is rebuilt from Docker API queries at runtime.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DeployStatus represents the lifecycle state of a bot deployment.
// The state transitions are:
//
//	[Created] → Running → Stopped ⇄ Running → [Removed]
type DeployStatus string

const (
	// StatusRunning indicates the deployment's container is running.
	StatusRunning DeployStatus = "running"

	// StatusStopped indicates the container exists but is not running.
	// Its image, labels, and volumes are preserved.
	StatusStopped DeployStatus = "stopped"
)

// String returns the string representation of DeployStatus.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands.
func (s DeployStatus) String() string {
	return string(s)
}

// IsValid checks whether the DeployStatus value is one of the
// predefined valid states.
func (s DeployStatus) IsValid() bool {
	switch s {
	case StatusRunning, StatusStopped:
		return true
	default:
		return false
	}
}

// ParseDeployStatus converts a string to a DeployStatus.
// Returns an error if the string does not match any valid status.
func ParseDeployStatus(s string) (DeployStatus, error) {
	status := DeployStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid deployment status: %q (valid: running, stopped)", s)
	}
	return status, nil
}

// LaunchPlan is the fully resolved bootstrap configuration: the launch
// config file (if any) merged with built-in defaults. Every in-container
// command (run, install, check) operates on a LaunchPlan rather than on
// raw config, so defaulting happens in exactly one place.
type LaunchPlan struct {
	// Name identifies the bot being launched. Used in diagnostics and as
	// the default deployment name.
	Name string `json:"name"`

	// Command is the argv the bootstrap hands off to, e.g.
	// ["python", "main.py"]. Must contain at least one element.
	Command []string `json:"command"`

	// TokenVar is the environment variable holding the bot's secret token.
	// The bootstrap refuses to hand off when it is unset or empty.
	TokenVar string `json:"tokenVar"`

	// Directories are the workspace paths created (if missing) before
	// hand-off. Creation is idempotent and never touches existing content.
	Directories []string `json:"directories"`

	// Manifest is the pinned dependency manifest passed to the installer.
	Manifest string `json:"manifest"`

	// PackageFilters are the name substrings used to select packages for
	// the post-install diagnostic report.
	PackageFilters []string `json:"packageFilters"`

	// Python is the interpreter executable used for dependency
	// installation and version reporting.
	Python string `json:"python"`

	// Env holds extra environment variables appended to the inherited
	// environment at hand-off time.
	Env map[string]string `json:"env,omitempty"`
}

// Validate checks that the LaunchPlan satisfies the minimum requirements
// for a hand-off: a non-empty command and a named token variable.
func (p *LaunchPlan) Validate() error {
	if len(p.Command) == 0 {
		return fmt.Errorf("launch plan: command must not be empty")
	}
	if p.Command[0] == "" {
		return fmt.Errorf("launch plan: command executable must not be empty")
	}
	if p.TokenVar == "" {
		return fmt.Errorf("launch plan: token variable name must not be empty")
	}
	return nil
}

// Deployment represents a bot deployment — a container created by
// "botstrap up" and tracked via botstrap.* Docker labels. This is the
// primary aggregate entity for the host-side commands.
//
// All fields are reconstructed at runtime from container labels; there
// is no persistent state file.
type Deployment struct {
	// Name is the unique identifier for this deployment.
	// Must contain only alphanumeric characters and hyphens.
	Name string `json:"name"`

	// Image is the container image the deployment was created from.
	Image string `json:"image"`

	// Status is the current lifecycle state of the deployment.
	Status DeployStatus `json:"status"`

	// Container holds runtime information about the deployment's
	// container, fetched from the Docker API.
	Container ContainerInfo `json:"container"`

	// Ports holds the host:container port bindings published for the
	// deployment. Empty for a polling-only bot with no webhook.
	Ports []PortBinding `json:"ports,omitempty"`

	// CreatedAt is the timestamp when this deployment was created.
	CreatedAt time.Time `json:"createdAt"`
}

// nameRegex validates deployment names: alphanumeric + hyphens only,
// must start and end with alphanumeric.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)

// ValidateName checks if the given name is a valid deployment name.
// Valid names contain only alphanumeric characters and hyphens,
// and must start/end with an alphanumeric character.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("deployment name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid deployment name %q: must contain only alphanumeric characters and hyphens, and start/end with alphanumeric", name)
	}
	return nil
}

// PortBinding represents a single published port mapping between a
// container port and a host port.
type PortBinding struct {
	// ContainerPort is the port number inside the container (1-65535).
	ContainerPort int `json:"containerPort"`

	// HostPort is the port number on the host machine (1-65535).
	HostPort int `json:"hostPort"`

	// Protocol is the network protocol for the binding.
	// Defaults to "tcp". Also supports "udp".
	Protocol string `json:"protocol"`
}

// Validate checks whether the PortBinding has valid field values.
func (b *PortBinding) Validate() error {
	if b.ContainerPort < 1 || b.ContainerPort > 65535 {
		return fmt.Errorf("port binding: container port %d out of range (1-65535)", b.ContainerPort)
	}
	if b.HostPort < 1 || b.HostPort > 65535 {
		return fmt.Errorf("port binding: host port %d out of range (1-65535)", b.HostPort)
	}
	if b.Protocol == "" {
		b.Protocol = "tcp"
	}
	if b.Protocol != "tcp" && b.Protocol != "udp" {
		return fmt.Errorf("port binding: invalid protocol %q (valid: tcp, udp)", b.Protocol)
	}
	return nil
}

// String returns a human-readable representation of the port binding.
// Format: "hostPort:containerPort/protocol".
func (b *PortBinding) String() string {
	proto := b.Protocol
	if proto == "" {
		proto = "tcp"
	}
	return fmt.Sprintf("%d:%d/%s", b.HostPort, b.ContainerPort, proto)
}

// ValidatePortBindings checks a slice of PortBindings for individual
// validity and cross-binding host port uniqueness. Duplicate host ports
// within one deployment would make the container fail to start, so they
// are rejected up front.
func ValidatePortBindings(bindings []PortBinding) error {
	// Key: "hostPort/protocol". Different protocols on the same port are
	// allowed (e.g., 8443/tcp and 8443/udp).
	seen := make(map[string]int)

	for i := range bindings {
		if err := bindings[i].Validate(); err != nil {
			return err
		}

		key := fmt.Sprintf("%d/%s", bindings[i].HostPort, bindings[i].Protocol)
		if prev, exists := seen[key]; exists {
			return fmt.Errorf("port binding: host port %s is mapped to both container port %d and %d",
				key, prev, bindings[i].ContainerPort)
		}
		seen[key] = bindings[i].ContainerPort
	}
	return nil
}

// ContainerInfo holds runtime information about a Docker container.
// This data is fetched dynamically from the Docker API, not persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// Status is the Docker container state (e.g., "running", "exited").
	Status string `json:"status"`

	// Labels is the full set of Docker labels on the container,
	// including the botstrap.* management labels.
	Labels map[string]string `json:"labels,omitempty"`
}

// PackageInfo describes a single installed package as reported by the
// package manager. The installer's diagnostic report is a filtered slice
// of these.
type PackageInfo struct {
	// Name is the distribution name, e.g. "aiogram".
	Name string `json:"name"`

	// Version is the installed version string, e.g. "3.4.1".
	Version string `json:"version"`
}

// String returns the "name version" form used in the package report,
// matching the familiar `pip list` layout.
func (p PackageInfo) String() string {
	return fmt.Sprintf("%s %s", p.Name, p.Version)
}

// ExitCode defines standard CLI exit codes. These codes allow container
// orchestrators and scripts to programmatically determine the outcome of
// a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates a config file was requested but not
	// found, or a found config failed validation.
	ExitConfigError ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitMissingToken indicates the required token environment variable
	// is unset or empty. The bootstrap never hands off in this state.
	ExitMissingToken ExitCode = 4

	// ExitInstallFailed indicates the dependency installer exited non-zero.
	ExitInstallFailed ExitCode = 5

	// ExitHandoffFailed indicates the process hand-off (exec) failed and
	// control returned to botstrap.
	ExitHandoffFailed ExitCode = 6

	// ExitPortConflict indicates a published host port is already in use.
	ExitPortConflict ExitCode = 7

	// ExitDeploymentNotFound indicates the named deployment does not exist.
	ExitDeploymentNotFound ExitCode = 8
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// Package docker wraps the Docker Engine SDK client for managing the
// bot's deployment container from the host.
//
// It provides automatic Docker socket detection, daemon connectivity
// checks, label-based deployment discovery, and the container lifecycle
// operations behind the up/status/down commands. All deployment state is
// persisted via botstrap.* container labels — there is no state file.
package docker

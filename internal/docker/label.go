package docker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/interprep-ai/botstrap/internal/model"
)

// Label key constants define the Docker label keys used to persist
// deployment metadata on the bot's container. These labels are the sole
// persistence mechanism — there is no external state file.
//
// All keys share the "botstrap." prefix to namespace them away from
// labels set by other tools.
const (
	// LabelPrefix is the common prefix for all botstrap labels.
	LabelPrefix = "botstrap."

	// LabelManagedBy identifies containers managed by botstrap. This is
	// the primary label used for filtering and discovery.
	// Key: "botstrap.managed-by", Value: always "botstrap".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelName stores the deployment's unique identifier.
	// Key: "botstrap.name", Value: deployment name (e.g., "interprep").
	LabelName = LabelPrefix + "name"

	// LabelImage stores the image the deployment was created from. The
	// container's own image reference can drift after re-tagging, so the
	// original is recorded explicitly.
	LabelImage = LabelPrefix + "image"

	// LabelPortPrefix is the prefix for per-port labels. Each published
	// port gets its own label with the container port appended:
	//
	//	"botstrap.port.8443" = "8443"
	//
	// This allows reconstructing the published port set from labels,
	// keeping them human-readable under `docker inspect`.
	LabelPortPrefix = LabelPrefix + "port."

	// LabelCreatedAt stores the RFC3339 timestamp of deployment creation.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
// Containers created by "botstrap up" are tagged with this value,
// enabling discovery via Docker API label filters.
const ManagedByValue = "botstrap"

// BuildLabels constructs the Docker label map applied to a deployment's
// container, allowing the full Deployment to be reconstructed from
// container inspection alone.
func BuildLabels(name, image string, ports []model.PortBinding, createdAt time.Time) map[string]string {
	labels := map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelName:      name,
		LabelImage:     image,
		// UTC keeps the stored timestamp independent of the host timezone.
		LabelCreatedAt: createdAt.UTC().Format(time.RFC3339),
	}

	for _, b := range ports {
		labels[BuildPortLabel(b.ContainerPort)] = strconv.Itoa(b.HostPort)
	}

	return labels
}

// ParseLabels reconstructs a Deployment from Docker container labels.
// This is the inverse of BuildLabels, used when listing or inspecting
// containers.
//
// Required labels: managed-by, name, image, created-at. Missing required
// labels cause an error that names all of them at once.
//
// Status and Container are NOT reconstructed from labels — they come
// from live Docker container state.
func ParseLabels(labels map[string]string) (*model.Deployment, error) {
	requiredKeys := []string{
		LabelManagedBy,
		LabelName,
		LabelImage,
		LabelCreatedAt,
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := labels[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required Docker labels: %s", strings.Join(missing, ", "))
	}

	if labels[LabelManagedBy] != ManagedByValue {
		return nil, fmt.Errorf(
			"label %s has unexpected value %q (expected %q)",
			LabelManagedBy, labels[LabelManagedBy], ManagedByValue,
		)
	}

	createdAt, err := time.Parse(time.RFC3339, labels[LabelCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s: %w", LabelCreatedAt, err)
	}

	ports, err := ParsePortLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("failed to parse port labels: %w", err)
	}

	return &model.Deployment{
		Name:      labels[LabelName],
		Image:     labels[LabelImage],
		Ports:     ports,
		CreatedAt: createdAt,
	}, nil
}

// BuildPortLabel generates the label key for a specific container port,
// e.g. BuildPortLabel(8443) → "botstrap.port.8443". The host port is
// stored as the label value.
func BuildPortLabel(containerPort int) string {
	return fmt.Sprintf("%s%d", LabelPortPrefix, containerPort)
}

// ParsePortLabels extracts all published port entries from a label map
// by scanning for the LabelPortPrefix.
//
// Returns an empty slice (not nil) if no port labels are found, and an
// error for malformed keys or values.
func ParsePortLabels(labels map[string]string) ([]model.PortBinding, error) {
	bindings := make([]model.PortBinding, 0, 2)

	for key, value := range labels {
		if !strings.HasPrefix(key, LabelPortPrefix) {
			continue
		}

		portStr := strings.TrimPrefix(key, LabelPortPrefix)
		containerPort, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid container port in label key %q: %w", key, err)
		}

		hostPort, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid host port in label %q=%q: %w", key, value, err)
		}

		bindings = append(bindings, model.PortBinding{
			ContainerPort: containerPort,
			HostPort:      hostPort,
			// The protocol is not stored in labels; published bot ports
			// (webhook, health) are TCP. A UDP deployment would need a
			// separate label scheme.
			Protocol: "tcp",
		})
	}

	return bindings, nil
}

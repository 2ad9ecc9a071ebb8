package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/interprep-ai/botstrap/internal/model"
)

func TestFormatPortsList(t *testing.T) {
	bindings := []model.PortBinding{
		{ContainerPort: 8080, HostPort: 18080, Protocol: "tcp"},
		{ContainerPort: 8443, HostPort: 8443, Protocol: "tcp"},
	}

	// Sorted numerically by host port: 8443 before 18080.
	assert.Equal(t, "8443:8443/tcp,18080:8080/tcp", FormatPortsList(bindings))
}

func TestFormatPortsListEmpty(t *testing.T) {
	assert.Equal(t, "-", FormatPortsList(nil))
}

func TestFormatPortsListDoesNotMutateInput(t *testing.T) {
	bindings := []model.PortBinding{
		{ContainerPort: 8080, HostPort: 18080, Protocol: "tcp"},
		{ContainerPort: 8443, HostPort: 8443, Protocol: "tcp"},
	}

	_ = FormatPortsList(bindings)

	assert.Equal(t, 18080, bindings[0].HostPort)
	assert.Equal(t, 8443, bindings[1].HostPort)
}

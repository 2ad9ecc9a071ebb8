package port

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interprep-ai/botstrap/internal/model"
)

// occupyTCPPort grabs a free TCP port from the OS and keeps it bound for
// the duration of the test, returning the port number.
func occupyTCPPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	return listener.Addr().(*net.TCPAddr).Port
}

func TestIsAvailableFreePort(t *testing.T) {
	scanner := NewScanner()

	// Find a port the OS considers free, release it, then check it.
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	freePort := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	assert.True(t, scanner.IsAvailable(freePort, "tcp"))
}

func TestIsAvailableBoundPort(t *testing.T) {
	scanner := NewScanner()
	boundPort := occupyTCPPort(t)

	assert.False(t, scanner.IsAvailable(boundPort, "tcp"))
}

func TestIsAvailableUDP(t *testing.T) {
	scanner := NewScanner()

	conn, err := net.ListenPacket("udp", ":0")
	require.NoError(t, err)
	boundPort := conn.LocalAddr().(*net.UDPAddr).Port
	t.Cleanup(func() { _ = conn.Close() })

	assert.False(t, scanner.IsAvailable(boundPort, "udp"))
}

func TestIsAvailableUnknownProtocol(t *testing.T) {
	scanner := NewScanner()
	assert.False(t, scanner.IsAvailable(8443, "sctp"))
}

func TestCheckBindingsNoConflicts(t *testing.T) {
	scanner := NewScanner()

	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	freePort := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	conflicts := scanner.CheckBindings([]model.PortBinding{
		{ContainerPort: 8443, HostPort: freePort, Protocol: "tcp"},
	})
	assert.Empty(t, conflicts)
}

func TestCheckBindingsReportsConflicts(t *testing.T) {
	scanner := NewScanner()
	boundPort := occupyTCPPort(t)

	conflicts := scanner.CheckBindings([]model.PortBinding{
		{ContainerPort: 8443, HostPort: boundPort, Protocol: "tcp"},
	})

	require.Len(t, conflicts, 1)
	assert.Equal(t, boundPort, conflicts[0].HostPort)
	assert.Equal(t, fmt.Sprintf("%d:8443/tcp", boundPort), conflicts[0].String())
}

func TestCheckBindingsEmpty(t *testing.T) {
	scanner := NewScanner()
	assert.Empty(t, scanner.CheckBindings(nil))
}

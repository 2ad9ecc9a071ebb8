package port

import (
	"fmt"
	"net"

	"github.com/interprep-ai/botstrap/internal/model"
)

// Scanner checks whether host ports are free by asking the operating
// system directly (net.Listen / net.ListenPacket). This avoids parsing
// /proc/net/* or shelling out to `ss`, both of which can require
// elevated permissions.
//
// Defined as a struct rather than bare functions so it can be injected
// as a dependency and extended with options (bind address, timeout)
// without breaking callers.
type Scanner struct{}

// NewScanner creates a Scanner. No configuration is currently needed.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsAvailable reports whether a single host port is free for the given
// protocol ("tcp" or "udp").
//
// The probe binds to all interfaces (":port" rather than "127.0.0.1:port")
// because Docker publishes ports on 0.0.0.0, so the check must cover the
// same address space. Unknown protocols are treated as unavailable.
func (s *Scanner) IsAvailable(port int, protocol string) bool {
	addr := fmt.Sprintf(":%d", port)

	switch protocol {
	case "tcp":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return false
		}
		defer func() { _ = listener.Close() }()
		return true

	case "udp":
		conn, err := net.ListenPacket("udp", addr)
		if err != nil {
			return false
		}
		defer func() { _ = conn.Close() }()
		return true

	default:
		return false
	}
}

// CheckBindings verifies that every host port in the given bindings can
// be bound. Returns the bindings that are already in use; an empty slice
// means the deployment can publish all of its ports.
func (s *Scanner) CheckBindings(bindings []model.PortBinding) []model.PortBinding {
	var conflicts []model.PortBinding
	for _, b := range bindings {
		if !s.IsAvailable(b.HostPort, b.Protocol) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

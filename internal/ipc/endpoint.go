package ipc

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

const (
	defaultEndpoint = "127.0.0.1:47864"
	messagingPath   = "/messaging"
)

// Endpoint is the loopback address the presentation channel listens on.
type Endpoint struct {
	Network string
	Address string
}

// DefaultEndpoint resolves the listening endpoint. VAULTDESK_ENDPOINT wins
// over configured, which wins over the built-in loopback port.
func DefaultEndpoint(configured string) Endpoint {
	if addr := strings.TrimSpace(os.Getenv("VAULTDESK_ENDPOINT")); addr != "" {
		return Endpoint{Network: "tcp", Address: addr}
	}
	if addr := strings.TrimSpace(configured); addr != "" {
		return Endpoint{Network: "tcp", Address: addr}
	}
	return Endpoint{Network: "tcp", Address: defaultEndpoint}
}

// Listen binds to the configured endpoint.
func (e Endpoint) Listen() (net.Listener, error) {
	return net.Listen(e.Network, e.Address)
}

// DialContext establishes a client connection with sensible timeouts.
func (e Endpoint) DialContext(ctx context.Context) (net.Conn, error) {
	d := &net.Dialer{Timeout: 5 * time.Second}
	return d.DialContext(ctx, e.Network, e.Address)
}

// URL returns the websocket URL presentation clients connect to.
func (e Endpoint) URL() string {
	return "ws://" + e.Address + messagingPath
}

// String provides a readable representation for logs.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s://%s", e.Network, e.Address)
}

package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Endpoint represents a WebSocket server found on the local network
type Endpoint struct {
	// Instance is the advertised service instance name (e.g., "wsrecv")
	Instance string

	// Hostname is the mDNS hostname (e.g., "lab-box.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the TCP port the server listens on
	Port int

	// Metadata contains the TXT record data
	// Common fields: "path=/", "version=13"
	Metadata map[string]string

	// DiscoveredAt is when the endpoint was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the endpoint
func (e *Endpoint) String() string {
	return fmt.Sprintf("%s (%s) at %s", e.Instance, e.Hostname, net.JoinHostPort(e.IP, strconv.Itoa(e.Port)))
}

// URL returns the ws:// URL clients should dial
func (e *Endpoint) URL() string {
	path := e.GetMetadata("path")
	if path == "" {
		path = "/"
	}
	return "ws://" + net.JoinHostPort(e.IP, strconv.Itoa(e.Port)) + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (e *Endpoint) GetMetadata(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}

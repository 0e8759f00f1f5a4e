package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// ServiceType is the mDNS service type advertised by Orb API servers
const ServiceType = "_orb._tcp.local."

const (
	// DefaultBudget is the total wall-clock time a discovery session browses for
	DefaultBudget = 3 * time.Second

	// DefaultPollSlice caps a single blocking receive on the subscription
	DefaultPollSlice = 500 * time.Millisecond

	// FallbackName is used when an instance name has no leading label
	FallbackName = "Orb Server"

	defaultPath    = "/"
	defaultVersion = "unknown"
)

// Fatal session errors. Both are wrapped together with the underlying cause.
var (
	ErrInit   = errors.New("mdns init")
	ErrBrowse = errors.New("mdns browse")
)

// DiscoveredServer describes one Orb server found on the local network
type DiscoveredServer struct {
	Name    string `json:"name"`    // First label of the instance name
	Host    string `json:"host"`    // Resolved address, or hostname without trailing dot
	Port    uint16 `json:"port"`    // Service port
	URL     string `json:"url"`     // http://host:port/path, used for deduplication
	Version string `json:"version"` // Advertised version, "unknown" if absent
}

// serverURL builds the HTTP endpoint for a server. IPv6 literals are bracketed.
func serverURL(host string, port uint16, path string) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(int(port))) + path
}

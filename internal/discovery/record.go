package discovery

import (
	"fmt"
	"math"
	"strings"
)

// newServer normalizes a resolved service into a DiscoveredServer
func newServer(info *ServiceInfo) (DiscoveredServer, error) {
	if info == nil {
		return DiscoveredServer{}, fmt.Errorf("resolved event without service info")
	}
	if info.Port < 0 || info.Port > math.MaxUint16 {
		return DiscoveredServer{}, fmt.Errorf("port out of range: %d", info.Port)
	}

	host := hostFor(info)
	port := uint16(info.Port)

	path, ok := txtValue(info.Text, "path")
	if !ok {
		path = defaultPath
	}
	version, ok := txtValue(info.Text, "version")
	if !ok {
		version = defaultVersion
	}

	return DiscoveredServer{
		Name:    instanceLabel(info.Fullname),
		Host:    host,
		Port:    port,
		URL:     serverURL(host, port, path),
		Version: version,
	}, nil
}

// hostFor prefers a resolved address and falls back to the advertised hostname
func hostFor(info *ServiceInfo) string {
	for _, addr := range info.Addresses {
		if addr != nil {
			return addr.String()
		}
	}
	return strings.TrimRight(info.Hostname, ".")
}

// instanceLabel returns the first label of a fully-qualified instance name
func instanceLabel(fullname string) string {
	label, _, _ := strings.Cut(fullname, ".")
	if label == "" {
		return FallbackName
	}
	return label
}

// txtValue looks up key in TXT strings. Keys are case-insensitive and the
// first occurrence wins. A bare key is present with an empty value.
func txtValue(txt []string, key string) (string, bool) {
	for _, field := range txt {
		k, v, _ := strings.Cut(field, "=")
		if k != "" && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

package discovery

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterInterfaces(t *testing.T) {
	up := net.FlagUp | net.FlagMulticast
	ifaces := []net.Interface{
		{Index: 1, Name: "lo", Flags: up | net.FlagLoopback},
		{Index: 2, Name: "eth0", Flags: up},
		{Index: 3, Name: "eth1", Flags: net.FlagMulticast},
		{Index: 4, Name: "wlan0", Flags: net.FlagUp},
		{Index: 5, Name: "docker0", Flags: up},
		{Index: 6, Name: "veth12ab", Flags: up},
		{Index: 7, Name: "en0", Flags: up},
	}

	got := filterInterfaces(ifaces)
	assert.Equal(t, []string{"eth0", "en0"}, interfaceNames(got))
}

func TestIsVirtualInterface(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"docker0", true},
		{"br-3f2a", true},
		{"VirBr0", true},
		{"cni0", true},
		{"eth0", false},
		{"en0", false},
		{"wlp2s0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isVirtualInterface(tt.name))
		})
	}
}

func interfaceNames(ifaces []net.Interface) []string {
	names := make([]string, len(ifaces))
	for i, iface := range ifaces {
		names[i] = iface.Name
	}
	return names
}

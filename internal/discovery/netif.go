package discovery

import (
	"errors"
	"net"
	"strings"
)

var errNoInterfaces = errors.New("no usable multicast network interface")

// virtualPrefixes are interface name prefixes of container and VM bridges
var virtualPrefixes = []string{
	"docker",  // Docker bridge
	"br-",     // Docker/Linux bridges
	"veth",    // Virtual ethernet (containers)
	"virbr",   // libvirt/KVM bridges
	"vboxnet", // VirtualBox
	"vmnet",   // VMware
	"flannel", // Kubernetes flannel
	"cni",     // Container Network Interface
	"calico",  // Kubernetes calico
	"weave",   // Kubernetes weave
	"podman",  // Podman
	"lxc",     // LXC containers
	"lxd",     // LXD containers
}

// usableInterfaces returns the interfaces an mDNS browse can run on
func usableInterfaces() ([]net.Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	usable := filterInterfaces(ifaces)
	if len(usable) == 0 {
		return nil, errNoInterfaces
	}
	return usable, nil
}

func filterInterfaces(ifaces []net.Interface) []net.Interface {
	var usable []net.Interface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if isVirtualInterface(iface.Name) {
			continue
		}
		usable = append(usable, iface)
	}
	return usable
}

// isVirtualInterface returns true if the interface name indicates a virtual/container network
func isVirtualInterface(name string) bool {
	nameLower := strings.ToLower(name)
	for _, prefix := range virtualPrefixes {
		if strings.HasPrefix(nameLower, prefix) {
			return true
		}
	}
	return false
}

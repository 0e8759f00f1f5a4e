package discovery

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Receive outcomes that never abort a session
var (
	ErrRecvTimeout        = errors.New("receive timed out")
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// EventKind identifies what a subscription event reports
type EventKind int

const (
	// ServiceResolved means address, port and TXT data are known
	ServiceResolved EventKind = iota
	// ServiceRemoved means the responder withdrew the instance. Neither
	// bundled backend reports removals; they drop expired records.
	ServiceRemoved
	// SearchStopped means the backend ended the browse on its own
	SearchStopped
)

func (k EventKind) String() string {
	switch k {
	case ServiceResolved:
		return "resolved"
	case ServiceRemoved:
		return "removed"
	case SearchStopped:
		return "search_stopped"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ServiceInfo is a backend-neutral view of one resolved service instance
type ServiceInfo struct {
	Fullname  string   // e.g. "orb-living-room._orb._tcp.local."
	Hostname  string   // e.g. "orb-living-room.local."
	Addresses []net.IP // IPv4 first when the backend knows both families
	Port      int
	Text      []string // raw "key=value" TXT strings
}

// Event is a single notification delivered by a Subscription
type Event struct {
	Kind    EventKind
	Service *ServiceInfo
}

// Subscription delivers browse events for one service type
type Subscription interface {
	// Recv blocks for at most timeout. It returns ErrRecvTimeout when nothing
	// arrived and ErrSubscriptionClosed once the backend has stopped delivering.
	// An error wrapping ErrInit means the querier never came up and is fatal.
	Recv(timeout time.Duration) (Event, error)
}

// Daemon is an mDNS querier owned by a single discovery session
type Daemon interface {
	Browse(serviceType string) (Subscription, error)
	StopBrowse(serviceType string) error
	Shutdown() error
}

// Backend names accepted by Config.Backend
const (
	BackendHashicorp = "hashicorp"
	BackendZeroconf  = "zeroconf"
)

// Backends lists the supported backend names
func Backends() []string {
	return []string{BackendHashicorp, BackendZeroconf}
}

// DaemonOptions is what a session hands to a backend when starting it
type DaemonOptions struct {
	Logger hclog.Logger
	// Budget is how long the session will browse for
	Budget time.Duration
}

// DaemonFactory starts a new daemon
type DaemonFactory func(opts DaemonOptions) (Daemon, error)

func factoryFor(backend string) (DaemonFactory, error) {
	switch backend {
	case "", BackendHashicorp:
		return newHashicorpDaemon, nil
	case BackendZeroconf:
		return newZeroconfDaemon, nil
	default:
		return nil, fmt.Errorf("unknown mdns backend %q (use %q or %q)", backend, BackendHashicorp, BackendZeroconf)
	}
}

// splitServiceType splits "_orb._tcp.local." into "_orb._tcp" and "local."
func splitServiceType(serviceType string) (service, domain string, err error) {
	name := serviceType
	if len(name) > 0 && name[len(name)-1] == '.' {
		name = name[:len(name)-1]
	}

	// service is "_name._proto", the rest is the domain
	dots := 0
	for i := 0; i < len(name); i++ {
		if name[i] != '.' {
			continue
		}
		dots++
		if dots == 2 {
			return name[:i], name[i+1:] + ".", nil
		}
	}
	return "", "", fmt.Errorf("invalid service type: %s", serviceType)
}

var errDaemonShutdown = errors.New("daemon is shut down")

// browseSet tracks the cancel functions of a daemon's active browses
type browseSet struct {
	mu      sync.Mutex
	cancels map[string]func()
	closed  bool
}

func newBrowseSet() *browseSet {
	return &browseSet{cancels: make(map[string]func())}
}

func (b *browseSet) add(serviceType string, cancel func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errDaemonShutdown
	}
	if _, exists := b.cancels[serviceType]; exists {
		return fmt.Errorf("already browsing %s", serviceType)
	}
	b.cancels[serviceType] = cancel
	return nil
}

// discard forgets a browse that failed to start
func (b *browseSet) discard(serviceType string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cancel, exists := b.cancels[serviceType]; exists {
		delete(b.cancels, serviceType)
		cancel()
	}
}

func (b *browseSet) stop(serviceType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cancel, exists := b.cancels[serviceType]
	if !exists {
		return fmt.Errorf("not browsing %s", serviceType)
	}
	delete(b.cancels, serviceType)
	cancel()
	return nil
}

func (b *browseSet) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errDaemonShutdown
	}
	b.closed = true
	for serviceType, cancel := range b.cancels {
		cancel()
		delete(b.cancels, serviceType)
	}
	return nil
}

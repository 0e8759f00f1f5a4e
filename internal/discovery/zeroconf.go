package discovery

import (
	"context"
	"net"
	"time"

	"github.com/grandcat/zeroconf"
)

type zeroconfDaemon struct {
	resolver *zeroconf.Resolver
	browses  *browseSet
}

func newZeroconfDaemon(opts DaemonOptions) (Daemon, error) {
	ifaces, err := usableInterfaces()
	if err != nil {
		return nil, err
	}

	resolver, err := zeroconf.NewResolver(zeroconf.SelectIfaces(ifaces))
	if err != nil {
		return nil, err
	}
	return &zeroconfDaemon{resolver: resolver, browses: newBrowseSet()}, nil
}

func (d *zeroconfDaemon) Browse(serviceType string) (Subscription, error) {
	service, domain, err := splitServiceType(serviceType)
	if err != nil {
		return nil, err
	}

	entries := make(chan *zeroconf.ServiceEntry, 32)
	ctx, cancel := context.WithCancel(context.Background())
	stop := func() {
		cancel()
		go drainEntries(entries)
	}
	if err := d.browses.add(serviceType, stop); err != nil {
		cancel()
		return nil, err
	}

	if err := d.resolver.Browse(ctx, service, domain, entries); err != nil {
		d.browses.discard(serviceType)
		return nil, err
	}
	return &zeroconfSubscription{entries: entries}, nil
}

// drainEntries keeps reading until the resolver closes entries. The
// resolver's send is blocking, so without a reader it would never observe
// the cancelled context.
func drainEntries(entries <-chan *zeroconf.ServiceEntry) {
	for range entries {
	}
}

func (d *zeroconfDaemon) StopBrowse(serviceType string) error {
	return d.browses.stop(serviceType)
}

// Shutdown cancels remaining browses; the resolver releases its sockets
// when its browse context ends.
func (d *zeroconfDaemon) Shutdown() error {
	return d.browses.close()
}

// zeroconfSubscription reads the entries channel the resolver writes to.
// The resolver closes it when the browse ends.
type zeroconfSubscription struct {
	entries chan *zeroconf.ServiceEntry
}

func (s *zeroconfSubscription) Recv(timeout time.Duration) (Event, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case entry, ok := <-s.entries:
		if ok {
			return zeroconfEvent(entry), nil
		}
	case <-timer.C:
		return Event{}, ErrRecvTimeout
	}

	<-timer.C
	return Event{}, ErrSubscriptionClosed
}

// zeroconfEvent converts a resolved entry. The resolver drops expired
// (TTL 0) records itself, so every entry it sends is a resolution.
func zeroconfEvent(entry *zeroconf.ServiceEntry) Event {
	if entry == nil {
		return Event{Kind: ServiceResolved}
	}

	addrs := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	addrs = append(addrs, entry.AddrIPv4...)
	addrs = append(addrs, entry.AddrIPv6...)

	return Event{
		Kind: ServiceResolved,
		Service: &ServiceInfo{
			Fullname:  entry.ServiceInstanceName(),
			Hostname:  entry.HostName,
			Addresses: addrs,
			Port:      entry.Port,
			Text:      entry.Text,
		},
	}
}

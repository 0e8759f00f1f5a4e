package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/mdns"
)

type hashicorpDaemon struct {
	ifaces  []net.Interface
	logger  hclog.Logger
	timeout time.Duration
	browses *browseSet
}

func newHashicorpDaemon(opts DaemonOptions) (Daemon, error) {
	ifaces, err := usableInterfaces()
	if err != nil {
		return nil, err
	}
	return newHashicorpDaemonOn(ifaces, opts), nil
}

func newHashicorpDaemonOn(ifaces []net.Interface, opts DaemonOptions) *hashicorpDaemon {
	d := &hashicorpDaemon{
		ifaces:  ifaces,
		logger:  opts.Logger,
		timeout: opts.Budget,
		browses: newBrowseSet(),
	}
	if d.logger == nil {
		d.logger = hclog.NewNullLogger()
	}
	if d.timeout <= 0 {
		d.timeout = DefaultBudget
	}
	return d
}

// queryParams builds the query for one browse. The library only leaves its
// receive loop when Timeout fires, so it is tied to the session budget.
func (d *hashicorpDaemon) queryParams(service, domain string, entries chan *mdns.ServiceEntry) *mdns.QueryParam {
	params := mdns.DefaultParams(service)
	params.Domain = strings.TrimSuffix(domain, ".")
	params.Entries = entries
	params.Timeout = d.timeout
	params.Logger = d.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})
	if len(d.ifaces) == 1 {
		params.Interface = &d.ifaces[0]
	}
	return params
}

func (d *hashicorpDaemon) Browse(serviceType string) (Subscription, error) {
	service, domain, err := splitServiceType(serviceType)
	if err != nil {
		return nil, err
	}

	entries := make(chan *mdns.ServiceEntry, 32)
	sub := &hashicorpSubscription{
		entries: entries,
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	stop := func() {
		cancel()
		<-sub.done
	}
	if err := d.browses.add(serviceType, stop); err != nil {
		cancel()
		return nil, err
	}

	params := d.queryParams(service, domain, entries)
	go func() {
		defer close(sub.done)
		if err := mdns.QueryContext(ctx, params); err != nil {
			sub.errs <- err
		}
	}()

	return sub, nil
}

// StopBrowse cancels the query and waits for it to return
func (d *hashicorpDaemon) StopBrowse(serviceType string) error {
	return d.browses.stop(serviceType)
}

func (d *hashicorpDaemon) Shutdown() error {
	return d.browses.close()
}

// hashicorpSubscription adapts the entries channel of an mdns query.
// The query never closes entries; done is closed when it returns.
type hashicorpSubscription struct {
	entries chan *mdns.ServiceEntry
	errs    chan error
	done    chan struct{}

	// delivered is set once an entry has been handed out. Receives are
	// sequential, so it needs no lock.
	delivered bool
}

func (s *hashicorpSubscription) Recv(timeout time.Duration) (Event, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case entry := <-s.entries:
		return s.event(entry), nil
	case err := <-s.errs:
		return Event{}, s.queryFailed(err)
	case <-s.done:
	case <-timer.C:
		return Event{}, ErrRecvTimeout
	}

	// Query ended; hand out what it buffered, then idle until the timeout
	select {
	case entry := <-s.entries:
		return s.event(entry), nil
	case err := <-s.errs:
		return Event{}, s.queryFailed(err)
	default:
	}
	<-timer.C
	return Event{}, ErrSubscriptionClosed
}

func (s *hashicorpSubscription) event(entry *mdns.ServiceEntry) Event {
	s.delivered = true
	return hashicorpEvent(entry)
}

// queryFailed reports socket setup failures as ErrInit. The library binds
// its sockets inside the query, so a failure before the first entry means
// the querier never came up.
func (s *hashicorpSubscription) queryFailed(err error) error {
	if s.delivered {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInit, err)
}

// hashicorpEvent converts a completed query entry. The library only emits
// entries that have an address, a port and TXT data.
func hashicorpEvent(entry *mdns.ServiceEntry) Event {
	info := &ServiceInfo{
		Fullname: entry.Name,
		Hostname: entry.Host,
		Port:     entry.Port,
		Text:     entry.InfoFields,
	}
	if entry.AddrV4 != nil {
		info.Addresses = append(info.Addresses, entry.AddrV4)
	}
	if entry.AddrV6 != nil {
		info.Addresses = append(info.Addresses, entry.AddrV6)
	}
	return Event{Kind: ServiceResolved, Service: info}
}

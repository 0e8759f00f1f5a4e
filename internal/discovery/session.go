package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Config holds discovery configuration. Zero values select the defaults.
type Config struct {
	Backend   string        // BackendHashicorp (default) or BackendZeroconf
	Budget    time.Duration // Total browse time, DefaultBudget if zero
	PollSlice time.Duration // Longest single receive, DefaultPollSlice if zero
	Logger    hclog.Logger
}

// Session runs bounded-time browses for Orb servers. Each call to Discover
// owns its own daemon and subscription; nothing is shared between calls.
type Session struct {
	newDaemon DaemonFactory
	budget    time.Duration
	slice     time.Duration
	logger    hclog.Logger
}

// NewSession creates a discovery session from config
func NewSession(config Config) (*Session, error) {
	factory, err := factoryFor(config.Backend)
	if err != nil {
		return nil, err
	}
	return newSession(config, factory), nil
}

func newSession(config Config, factory DaemonFactory) *Session {
	s := &Session{
		newDaemon: factory,
		budget:    config.Budget,
		slice:     config.PollSlice,
		logger:    config.Logger,
	}
	if s.budget <= 0 {
		s.budget = DefaultBudget
	}
	if s.slice <= 0 {
		s.slice = DefaultPollSlice
	}
	if s.logger == nil {
		s.logger = hclog.NewNullLogger()
	}
	return s
}

// Discover browses for Orb servers with the given config
func Discover(ctx context.Context, config Config) ([]DiscoveredServer, error) {
	s, err := NewSession(config)
	if err != nil {
		return nil, err
	}
	return s.Discover(ctx)
}

// Discover browses for ServiceType for the whole budget and returns the
// servers seen, deduplicated by URL with the first one kept. Only daemon
// start and browse start are fatal; a quiet network yields an empty list.
// Cancelling ctx does not shorten the browse; the budget is the only limit.
func (s *Session) Discover(ctx context.Context) ([]DiscoveredServer, error) {
	log := s.logger.With("scan_id", uuid.New().String())

	daemon, err := s.newDaemon(DaemonOptions{
		Logger: log.Named("mdns"),
		Budget: s.budget,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	sub, err := daemon.Browse(ServiceType)
	if err != nil {
		if shutdownErr := daemon.Shutdown(); shutdownErr != nil {
			log.Debug("mdns shutdown failed", "error", shutdownErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrBrowse, err)
	}

	log.Debug("browsing", "service", ServiceType, "budget", s.budget, "slice", s.slice)
	servers, err := s.collect(log, sub)

	if stopErr := daemon.StopBrowse(ServiceType); stopErr != nil {
		log.Debug("mdns stop browse failed", "error", stopErr)
	}
	if shutdownErr := daemon.Shutdown(); shutdownErr != nil {
		log.Debug("mdns shutdown failed", "error", shutdownErr)
	}

	if err != nil {
		return nil, err
	}

	log.Info("discovery finished", "servers", len(servers))
	return servers, nil
}

type recvResult struct {
	event Event
	err   error
}

// collect drains sub in slices of at most s.slice until the deadline. It
// fails only when the subscription reports that the querier never started.
func (s *Session) collect(log hclog.Logger, sub Subscription) ([]DiscoveredServer, error) {
	servers := []DiscoveredServer{}
	seen := make(map[string]struct{})
	deadline := time.Now().Add(s.budget)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return servers, nil
		}

		res := <-recvAsync(sub, min(remaining, s.slice))

		if errors.Is(res.err, ErrInit) {
			return nil, res.err
		}
		if res.err != nil {
			log.Trace("no event this slice", "error", res.err)
			continue
		}
		if res.event.Kind != ServiceResolved {
			log.Debug("ignoring event", "kind", res.event.Kind)
			continue
		}

		server, err := newServer(res.event.Service)
		if err != nil {
			log.Debug("dropping resolved service", "error", err)
			continue
		}
		if _, dup := seen[server.URL]; dup {
			continue
		}
		seen[server.URL] = struct{}{}
		servers = append(servers, server)
		log.Debug("discovered server", "name", server.Name, "url", server.URL, "version", server.Version)
	}
}

// recvAsync runs one blocking receive on its own goroutine. The result
// channel is buffered so the goroutine never leaks if nobody reads it.
func recvAsync(sub Subscription, timeout time.Duration) <-chan recvResult {
	ch := make(chan recvResult, 1)
	go func() {
		event, err := sub.Recv(timeout)
		ch <- recvResult{event: event, err: err}
	}()
	return ch
}

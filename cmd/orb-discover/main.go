// Command orb-discover browses the local network once for Orb servers and
// prints them as a JSON array.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-hclog"
	"github.com/richinsley/orb-discovery-mcp/internal/discovery"
)

func main() {
	backend := flag.String("mdns", discovery.BackendHashicorp, "mDNS backend: "+strings.Join(discovery.Backends(), ", "))
	timeout := flag.Duration("timeout", discovery.DefaultBudget, "How long to browse")
	logLevel := flag.String("log-level", "warn", "Log level: trace, debug, info, warn, error")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "orb-discover",
		Level:  hclog.LevelFromString(*logLevel),
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers, err := discovery.Discover(ctx, discovery.Config{
		Backend: *backend,
		Budget:  *timeout,
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(servers, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

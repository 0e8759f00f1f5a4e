package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/server"
	"github.com/richinsley/orb-discovery-mcp/internal/discovery"
	mcpserver "github.com/richinsley/orb-discovery-mcp/internal/server"
)

func main() {
	// Command line flags
	transport := flag.String("transport", "stdio", "Transport type: stdio, http")
	addr := flag.String("addr", ":8080", "HTTP server address (for http transport)")
	endpoint := flag.String("endpoint", "/mcp", "HTTP endpoint path (for http transport)")
	stateless := flag.Bool("stateless", false, "Run HTTP server in stateless mode")
	certFile := flag.String("tls-cert", "", "TLS certificate file (enables HTTPS)")
	keyFile := flag.String("tls-key", "", "TLS key file (enables HTTPS)")
	backend := flag.String("mdns", discovery.BackendHashicorp, "mDNS backend: "+strings.Join(discovery.Backends(), ", "))
	logLevel := flag.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	flag.Parse()

	// stdout belongs to the stdio transport
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   mcpserver.ServerName,
		Level:  hclog.LevelFromString(*logLevel),
		Output: os.Stderr,
	})

	session, err := discovery.NewSession(discovery.Config{
		Backend: *backend,
		Logger:  logger.Named("discovery"),
	})
	if err != nil {
		logger.Error("invalid discovery configuration", "error", err)
		os.Exit(1)
	}

	// Create the MCP server
	s := mcpserver.New(session)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *transport {
	case "stdio":
		go func() {
			<-sigChan
			os.Exit(0)
		}()

		if err := server.ServeStdio(s); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}

	case "http":
		// Build HTTP server options
		opts := []server.StreamableHTTPOption{
			server.WithEndpointPath(*endpoint),
			server.WithHeartbeatInterval(30 * time.Second),
		}

		if *stateless {
			opts = append(opts, server.WithStateLess(true))
		}

		if *certFile != "" && *keyFile != "" {
			opts = append(opts, server.WithTLSCert(*certFile, *keyFile))
		}

		httpServer := server.NewStreamableHTTPServer(s, opts...)

		go func() {
			<-sigChan
			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Warn("http shutdown", "error", err)
			}
			os.Exit(0)
		}()

		proto := "http"
		if *certFile != "" {
			proto = "https"
		}
		logger.Info("starting MCP server", "url", fmt.Sprintf("%s://%s%s", proto, *addr, *endpoint))

		if err := httpServer.Start(*addr); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}

	default:
		logger.Error("unknown transport (use 'stdio' or 'http')", "transport", *transport)
		os.Exit(1)
	}
}

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/richinsley/orb-discovery-mcp/internal/discovery"
)

// Discoverer runs one bounded-time browse for Orb servers
type Discoverer interface {
	Discover(ctx context.Context) ([]discovery.DiscoveredServer, error)
}

// RegisterDiscoveryTools registers the server discovery tool
func RegisterDiscoveryTools(d Discoverer) []ToolDef {
	return []ToolDef{
		{
			Tool: mcp.NewTool("discover_servers",
				mcp.WithDescription("Browse the local network for Orb servers advertising "+discovery.ServiceType+" over mDNS. Takes about 3 seconds and returns each server's name, host, port, url and version."),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: discoverServersHandler(d),
		},
	}
}

func discoverServersHandler(d Discoverer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		servers, err := d.Discover(ctx)
		if err != nil {
			return mcp.NewToolResultText(ErrorResponse(err)), nil
		}

		if servers == nil {
			servers = []discovery.DiscoveredServer{}
		}

		return mcp.NewToolResultText(SuccessResponse(servers)), nil
	}
}

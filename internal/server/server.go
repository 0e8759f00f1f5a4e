package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/richinsley/orb-discovery-mcp/internal/tools"
)

const (
	ServerName    = "orb-discovery-mcp"
	ServerVersion = "1.0.0"
)

// New creates and configures a new MCP server with all tools
func New(d tools.Discoverer) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	for _, td := range allTools(d) {
		s.AddTool(td.Tool, td.Handler)
	}

	return s
}

func allTools(d tools.Discoverer) []tools.ToolDef {
	allTools := []tools.ToolDef{}
	allTools = append(allTools, tools.RegisterDiscoveryTools(d)...)
	return allTools
}

// ServerTools returns all registered tools for inspection
func ServerTools(d tools.Discoverer) []mcp.Tool {
	defs := allTools(d)
	result := make([]mcp.Tool, len(defs))
	for i, td := range defs {
		result[i] = td.Tool
	}
	return result
}

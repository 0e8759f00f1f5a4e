package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolDef pairs a tool with its handler
type ToolDef struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

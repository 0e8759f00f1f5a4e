package server

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/richinsley/orb-discovery-mcp/internal/discovery"
	"github.com/richinsley/orb-discovery-mcp/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDiscoverer struct {
	servers []discovery.DiscoveredServer
}

func (s stubDiscoverer) Discover(ctx context.Context) ([]discovery.DiscoveredServer, error) {
	return s.servers, nil
}

func TestServerTools(t *testing.T) {
	got := ServerTools(stubDiscoverer{})
	require.Len(t, got, 1)
	assert.Equal(t, "discover_servers", got[0].Name)
	assert.Empty(t, got[0].InputSchema.Required)
}

func TestDiscoverServersOverMCP(t *testing.T) {
	s := New(stubDiscoverer{servers: []discovery.DiscoveredServer{{
		Name:    "orb-living-room",
		Host:    "192.168.1.50",
		Port:    9000,
		URL:     "http://192.168.1.50:9000/api",
		Version: "1.2.0",
	}}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.NewInProcessClient(s)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "orb-discovery-test",
		Version: "1.0.0",
	}
	initResult, err := c.Initialize(ctx, initReq)
	require.NoError(t, err)
	assert.Equal(t, ServerName, initResult.ServerInfo.Name)

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, listed.Tools, 1)
	assert.Equal(t, "discover_servers", listed.Tools[0].Name)

	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = "discover_servers"
	result, err := c.CallTool(ctx, callReq)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])

	var resp struct {
		Success bool                         `json:"success"`
		Data    []discovery.DiscoveredServer `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "http://192.168.1.50:9000/api", resp.Data[0].URL)
}

var _ tools.Discoverer = stubDiscoverer{}

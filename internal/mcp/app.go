// Package mcp hosts the timetable tools on an MCP server.
package mcp

import (
	mcpgo "github.com/felixgeelhaar/mcp-go"

	mcplocal "github.com/felixgeelhaar/timetable/adapter/mcp"
)

// ServerName identifies the server to MCP clients.
const ServerName = "timetable-mcp"

// NewServer builds an MCP server with the timetable tools, resources and
// prompts registered. Tools are mandatory; resources and prompts are logged
// and skipped when they fail to register.
func NewServer(deps mcplocal.ToolDependencies) (*mcpgo.Server, error) {
	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:    ServerName,
		Version: "1.0.0",
		Capabilities: mcpgo.Capabilities{
			Tools:     true,
			Resources: true,
			Prompts:   true,
		},
	})

	if err := mcplocal.RegisterTools(srv, deps); err != nil {
		return nil, err
	}
	if err := mcplocal.RegisterResources(srv, deps); err != nil && deps.Logger != nil {
		deps.Logger.Warn("failed to register MCP resources", "error", err)
	}
	if err := mcplocal.RegisterPrompts(srv, deps); err != nil && deps.Logger != nil {
		deps.Logger.Warn("failed to register MCP prompts", "error", err)
	}
	return srv, nil
}

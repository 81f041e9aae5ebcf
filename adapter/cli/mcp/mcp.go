// Package mcp holds the "timetable mcp" commands.
package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/timetable/internal/mcp"
)

// Cmd groups the agent-facing commands.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the timetable to LLM agents over MCP",
}

var serveFlags struct {
	addr  string
	token string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server exposing the timetable tools, resources and prompt.

Requests must carry "Authorization: Bearer <token>" when MCP_AUTH_TOKEN or
--token is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}

		cfg := *a.Config
		if serveFlags.addr != "" {
			cfg.MCPAddr = serveFlags.addr
		}
		if serveFlags.token != "" {
			cfg.MCPAuthToken = serveFlags.token
		}

		if err := mcpinternal.Serve(cmd.Context(), &cfg, a.Engine, a.Metrics, cli.Logger()); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (overrides MCP_ADDR)")
	serveCmd.Flags().StringVar(&serveFlags.token, "token", "", "bearer token agents must present (overrides MCP_AUTH_TOKEN)")
	Cmd.AddCommand(serveCmd)
}

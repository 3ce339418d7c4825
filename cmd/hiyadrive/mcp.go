package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Myangsun/HiyaDrive"
	"github.com/Myangsun/HiyaDrive/internal/cli"
	"github.com/Myangsun/HiyaDrive/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the agent as an MCP server so assistants can book reservations as a tool.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		ctx, stop := cli.WithInterrupt(cmd.Context())
		defer stop()

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		app, err := cli.Build(ctx, cfg, cli.Options{})
		if err != nil {
			return err
		}
		defer app.Close()
		logger := app.Logger

		srv := mcp.NewServer(app.Agent, hiyadrive.Version, cfg.RequesterID)

		switch transport {
		case "stdio":
			logger.Info("starting MCP server", "transport", transport)
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting MCP server", "transport", transport, "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped")
			return nil
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}

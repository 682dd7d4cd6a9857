package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/policy-reader/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing the read-document and
list-documents tools.

By default, the server communicates over stdio using JSON-RPC. Logs go to
stderr so they never interleave with the protocol.

Use --port, or --http to take server.host and server.port from the config
file, to start a streamable HTTP server instead. HTTP mode also serves
/health and, when metrics are enabled, /metrics.

Examples:
  # Stdio mode (default)
  policy-reader mcp serve

  # HTTP mode
  policy-reader mcp serve --port 8000`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("http", false, "serve HTTP on the configured server.host and server.port")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	useHTTP, err := cmd.Flags().GetBool("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Tools:   svc.Tools,
		Catalog: svc.Catalog,
		Metrics: svc.Metrics,
	}, mcp.Options{
		RatePerMinute: svc.Settings.RateLimit.PerMinute,
		Burst:         svc.Settings.RateLimit.Burst,
		Logger:        svc.Logger,
	})
	if err != nil {
		return err
	}

	host := svc.Settings.Server.Host
	if useHTTP && port == 0 {
		port = svc.Settings.Server.Port
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	for _, run := range svc.Background {
		g.Go(func() error { return run(ctx) })
	}

	g.Go(func() error {
		// Stop background work once the server returns.
		defer cancel()
		if port > 0 {
			addr := fmt.Sprintf("%s:%d", host, port)
			fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
			return server.RunHTTP(ctx, addr)
		}
		return server.Run(ctx)
	})

	err = g.Wait()
	if svc.Logger != nil {
		svc.Logger.Info("MCP server stopped", zap.Error(err))
	}
	return err
}

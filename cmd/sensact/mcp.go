package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/sensact/internal/cli"
	"github.com/aretw0/sensact/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the rule sets as MCP tools so agents can list them, run goals and
read the resulting snapshots.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFromFlags(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		model, _ := cmd.Flags().GetString("model")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger := cli.CreateLogger(opts.Debug, opts.LogFormat)
		slog.SetDefault(logger)
		log.SetOutput(os.Stderr)

		// 1. Initialize Engine
		engine, closeAll, err := cli.NewEngine(opts, logger)
		if err != nil {
			log.Fatalf("Error initializing sensact: %v", err)
		}
		defer closeAll()

		// 2. Initialize MCP Server Adapter
		serverOpts := []mcp.Option{mcp.WithLogger(logger)}
		if model != "" {
			serverOpts = append(serverOpts, mcp.WithRoot(modelRoot(model)))
		}
		srv := mcp.NewServer(engine, serverOpts...)

		// 3. Start Server based on Transport
		switch transport {
		case "stdio":
			slog.Info("Starting Sensact MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("MCP Server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("Starting Sensact MCP Server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("MCP Server execution failed", "err", err)
				os.Exit(1)
			}
			slog.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().StringP("model", "m", "", "GUI model document runs use when the call carries none")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/aretw0/itemtree"
	"github.com/aretw0/itemtree/pkg/adapters/mcp"
	"github.com/aretw0/itemtree/pkg/workspace"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [layout...]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Serves a workspace of named trees as an MCP server, so agents can build and query trees
as tools. Every layout given as argument is opened as a tree named after its file.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		ws := itemtree.NewWorkspace(nil, workspace.WithLogger(logger))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		for _, path := range args {
			spec, err := loadLayout(path)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if err := ws.OpenLayout(ctx, name, spec); err != nil {
				return fmt.Errorf("open %s: %w", name, err)
			}
		}

		srv := mcp.NewServer(ws, logger)

		switch transport {
		case "stdio":
			// Keep stray log output off the JSON-RPC stream.
			log.SetOutput(os.Stderr)
			logger.Info("starting itemtree MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting itemtree MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}

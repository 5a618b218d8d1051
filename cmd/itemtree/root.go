package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/itemtree/internal/logging"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/layout"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "itemtree",
	Short: "itemtree keeps ordered trees of named items in sync with a document view",
	Long: `itemtree builds ordered trees of named items from YAML or JSON layouts and projects them
onto an HTML document. Use it to render and inspect layouts locally, or serve live trees over
HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}

// newLogger builds the stderr logger from the --log-level flag.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)
	slog.SetDefault(logger)
	return logger, nil
}

func loadLayout(path string) (domain.NodeSpec, error) {
	spec, err := layout.Load(path)
	if err != nil {
		return domain.NodeSpec{}, fmt.Errorf("load layout %s: %w", path, err)
	}
	return spec, nil
}

package main

import (
	"fmt"

	"github.com/aretw0/itemtree"
	"github.com/aretw0/itemtree/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <layout>",
	Short: "Print a layout as a nested outline",
	Long:  `Builds a layout and prints its items as a nested list, styled when the output is a terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := loadLayout(args[0])
		if err != nil {
			return err
		}
		root, err := itemtree.Build(spec)
		if err != nil {
			return err
		}
		snapshot, err := root.Snapshot()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if tui.IsTerminal(out) {
			tui.PrintBanner(out)
		}
		rendered, err := tui.NewRenderer(out)(tui.Outline(snapshot))
		if err != nil {
			return fmt.Errorf("render outline: %w", err)
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

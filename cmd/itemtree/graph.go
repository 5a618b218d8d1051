package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree"
	"github.com/aretw0/itemtree/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <layout>",
	Short: "Export the tree visualization",
	Long: `Builds a layout and outputs a Mermaid diagram (graph TD) of its items.
With --select, the items matching the CSS selector are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, _ := cmd.Flags().GetString("select")

		spec, err := loadLayout(args[0])
		if err != nil {
			return err
		}
		root, err := itemtree.Build(spec)
		if err != nil {
			return err
		}
		// Items without an id in the layout carry auto ids from here on.
		snapshot, err := root.Snapshot()
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if selector != "" {
			matches, err := root.FindAll(selector)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{}
			for _, m := range matches {
				overlay.Matches = append(overlay.Matches, strings.Join(m.Path(), "/"))
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(snapshot, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("select", "", "CSS selector of the items to highlight")
}

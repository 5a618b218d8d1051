package main

import (
	"fmt"

	"github.com/aretw0/itemtree"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <layout>",
	Short: "Render a layout as HTML",
	Long:  `Builds the tree described by a YAML or JSON layout in memory and prints the HTML of its root element.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := loadLayout(args[0])
		if err != nil {
			return err
		}
		out, err := itemtree.Render(spec)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

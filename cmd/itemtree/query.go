package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <layout> <selector>",
	Short: "List the items of a layout matching a CSS selector",
	Long:  `Builds a layout and prints the id path of every item matching the selector, in document order.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := loadLayout(args[0])
		if err != nil {
			return err
		}
		root, err := itemtree.Build(spec)
		if err != nil {
			return err
		}
		matches, err := root.FindAll(args[1])
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(m.Path(), "/"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

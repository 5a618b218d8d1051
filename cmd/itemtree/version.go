package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/itemtree"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of itemtree",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "itemtree version %s\n", strings.TrimSpace(itemtree.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

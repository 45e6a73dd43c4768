package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the rapid-mcp version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version of the rapid-mcp binary.",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("rapid-mcp %s\n", Version)
	},
}

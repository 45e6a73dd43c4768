package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	rapidlog "github.com/macjunkins/rapid-mcp-server/internal/log"
)

// Global flag values.
var (
	verbose    bool
	quiet      bool
	noColor    bool
	configPath string
)

// rootCmd is the base command for rapid-mcp.
var rootCmd = &cobra.Command{
	Use:   "rapid-mcp",
	Short: "Serve a YAML command catalog over the Model Context Protocol",
	Long: `Rapid-mcp turns a directory of YAML command definitions into MCP tools.
Each definition declares typed parameters and a prompt template; the server
validates tool arguments against the declared schema and returns the rendered
prompt, so agents receive precise, reviewable instructions instead of
free-form text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		rapidlog.Setup(verbose, quiet)
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to rapid-mcp.toml (default: ./rapid-mcp.toml, then the user config dir)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(versionCmd)
}

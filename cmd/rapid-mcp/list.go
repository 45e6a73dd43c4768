// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// List-specific flag values.
var (
	listJSON bool
)

// listCmd prints the loaded command catalog.
var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the commands in a catalog",
	Long: `List every command the server would expose, with its version, category,
and parameters. Required parameters are marked with *.

With --json, print the tools/list descriptor array instead: the exact
tool names and JSON Schemas an MCP client would see.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the tools/list descriptor array")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return exitError(ExitInvalidArgs, "rapid-mcp: %v", err)
	}

	_, reg, err := buildCatalog(cmd.Context(), commandsDir(cfg, args), cfg)
	if err != nil {
		return exitError(ExitInvalidArgs, "rapid-mcp: %v", err)
	}

	w := cmd.OutOrStdout()

	if listJSON {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(reg.Tools())
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)
	star := color.New(color.FgRed).Sprint("*")

	_, _ = fmt.Fprintln(tw, bold.Sprint("NAME")+"\t"+bold.Sprint("VERSION")+"\t"+
		bold.Sprint("CATEGORY")+"\t"+bold.Sprint("PARAMETERS"))

	for _, name := range reg.Names() {
		entry, _ := reg.Get(name)
		def := entry.Def

		version := def.Version
		if version == "" {
			version = "-"
		}
		category := def.Category
		if category == "" {
			category = "-"
		}

		cols := make([]string, 0, len(def.Parameters))
		for _, p := range def.Parameters {
			mark := ""
			if p.Required {
				mark = star
			}
			cols = append(cols, fmt.Sprintf("%s%s (%s)", p.Name, mark, p.Type))
		}
		paramCol := strings.Join(cols, ", ")
		if paramCol == "" {
			paramCol = "-"
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, version, category, paramCol)
	}

	return tw.Flush()
}

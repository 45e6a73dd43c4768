// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macjunkins/rapid-mcp-server/internal/params"
)

// Render-specific flag values.
var (
	renderArgs     []string
	renderCommands string
)

// renderCmd renders one command offline, without a client attached.
var renderCmd = &cobra.Command{
	Use:   "render <name>",
	Short: "Render a command's prompt from the command line",
	Long: `Run one command through the full validate-and-render pipeline and print
the prompt a tools/call would return.

Arguments are passed as repeated --arg key=value flags. Values parse as
JSON first, so numbers, booleans, arrays, and objects arrive typed; values
that are not valid JSON are taken as plain strings:

  rapid-mcp render gh-work --arg issue_number=42
  rapid-mcp render create-issue --arg title="fix the build" --arg labels='["bug"]'`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringArrayVar(&renderArgs, "arg", nil, "command argument as key=value (repeatable)")
	renderCmd.Flags().StringVar(&renderCommands, "commands", "", "command directory (overrides commands_dir from config)")
}

func runRender(cmd *cobra.Command, posArgs []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return exitError(ExitInvalidArgs, "rapid-mcp: %v", err)
	}
	if renderCommands != "" {
		cfg.CommandsDir = renderCommands
	}

	_, reg, err := buildCatalog(cmd.Context(), cfg.CommandsDir, cfg)
	if err != nil {
		return exitError(ExitInvalidArgs, "rapid-mcp: %v", err)
	}

	name := posArgs[0]
	entry, ok := reg.Get(name)
	if !ok {
		return exitError(ExitInvalidArgs, "rapid-mcp: unknown command %q (have: %s)",
			name, strings.Join(reg.Names(), ", "))
	}

	args, err := parseArgFlags(renderArgs)
	if err != nil {
		return exitError(ExitInvalidArgs, "rapid-mcp: %v", err)
	}

	validated, ferrs := params.Validate(entry.Def.Parameters, args, params.Options{
		Patterns: entry.Patterns,
	})
	if len(ferrs) > 0 {
		for _, fe := range ferrs {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", fe.Field, fe.Message)
		}
		return exitError(ExitValidation, "")
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), entry.Template.Render(validated))
	return nil
}

// parseArgFlags turns repeated key=value flags into an argument map. Values
// decode as JSON when they can, so "42" is a number and "true" a boolean;
// anything that does not parse stays a string.
func parseArgFlags(flags []string) (map[string]any, error) {
	args := make(map[string]any, len(flags))
	for _, f := range flags {
		key, raw, found := strings.Cut(f, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("--arg %q is not key=value", f)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		args[key] = v
	}
	return args, nil
}

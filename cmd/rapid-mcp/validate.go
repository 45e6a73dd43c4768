// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/macjunkins/rapid-mcp-server/internal/loader"
	"github.com/macjunkins/rapid-mcp-server/internal/registry"
)

// validateCmd checks a command directory without serving it.
var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate a command directory",
	Long: `Validate every YAML command definition in a directory.

Structural errors (unparseable YAML, missing fields, rules that contradict
the declared type) make a file unservable and fail validation. Lint
warnings (non-semantic versions, patterns that do not compile, prompt
placeholders with no matching parameter, examples that fail their own
rules) are reported with fix suggestions but do not fail it.

Defaults to the configured commands_dir:
  rapid-mcp validate
  rapid-mcp validate ./commands`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return exitError(ExitInvalidArgs, "rapid-mcp: %v", err)
	}
	dir := commandsDir(cfg, args)

	res, err := loader.Dir(cmd.Context(), dir)
	var loadErr *loader.LoadError
	if err != nil && !errors.As(err, &loadErr) {
		// Unreadable directory or canceled context, not a content defect.
		return exitError(ExitInvalidArgs, "rapid-mcp: %v", err)
	}

	errLabel := color.New(color.FgRed).Sprint("error")
	warnLabel := color.New(color.FgYellow).Sprint("warning")
	out := cmd.ErrOrStderr()

	errorCount := 0
	fileCount := 0
	if loadErr != nil {
		fileCount = len(loadErr.Files)
		for _, fe := range loadErr.Files {
			for _, defect := range defects(fe.Err) {
				errorCount++
				_, _ = fmt.Fprintf(out, "%s %s: %v\n", errLabel, fe.File, defect)
				if fix := suggestFix(defect.Error()); fix != "" {
					_, _ = fmt.Fprintf(out, "  fix: %s\n", fix)
				}
			}
		}
	}

	warningCount := 0
	if res != nil {
		fileCount += len(res.Definitions)

		// The registry re-vets the surviving definitions with the
		// configured capabilities; with pattern enforcement on, an
		// uncompilable pattern is an error here rather than a lint.
		if _, rerr := registry.New(res.Definitions, registry.Options{
			EnforcePatterns: cfg.Capabilities.EnforcePatterns,
		}); rerr != nil {
			errorCount++
			_, _ = fmt.Fprintf(out, "%s %v\n", errLabel, rerr)
		}

		warningCount = len(res.Warnings)
		for _, w := range res.Warnings {
			_, _ = fmt.Fprintf(out, "%s %s: %s\n", warnLabel, w.File, w.Message)
			if fix := suggestFix(w.Message); fix != "" {
				_, _ = fmt.Fprintf(out, "  fix: %s\n", fix)
			}
		}
	}

	if errorCount == 0 && warningCount == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "valid: %d commands\n", len(res.Definitions))
		return nil
	}

	_, _ = fmt.Fprintf(out, "\n%d error(s), %d warning(s) in %d command file(s)\n",
		errorCount, warningCount, fileCount)

	if errorCount > 0 {
		return exitError(ExitValidation, "")
	}
	return nil
}

// defects splits a file's joined structural errors back into one finding
// per line.
func defects(err error) []error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		return u.Unwrap()
	}
	return []error{err}
}

// suggestFix returns a hint for well-known findings, or "".
func suggestFix(msg string) string {
	switch {
	case strings.Contains(msg, "not semantic"):
		return `use MAJOR.MINOR.PATCH, for example "1.0.0"`
	case strings.Contains(msg, "pattern does not compile"):
		return "patterns use RE2 syntax"
	case strings.Contains(msg, "no such parameter is declared"):
		return "declare the parameter or remove the placeholder"
	case strings.Contains(msg, "more than one YAML document"):
		return "split each command into its own file"
	case strings.Contains(msg, "does not validate"):
		return "update the example arguments to satisfy the parameter rules"
	case strings.Contains(msg, "not found in type"):
		return "remove or rename the unknown key"
	}
	return ""
}

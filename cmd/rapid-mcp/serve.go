// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/macjunkins/rapid-mcp-server/internal/ghcli"
	"github.com/macjunkins/rapid-mcp-server/internal/server"
)

// Serve-specific flag values.
var (
	serveCommands string
)

// serveCmd runs the MCP server over stdio.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Start an MCP server on stdin/stdout serving the loaded command catalog.

Every command definition becomes one tool: tools/call validates the
arguments against the declared parameters and returns the rendered prompt.
Commands with gh executor metadata additionally run the gh CLI and append
its output as a second content block.

The protocol is line-oriented JSON-RPC 2.0: one request per line in, one
response per line out. Logs go to stderr so stdout stays clean for the
wire. The server runs until stdin closes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveCommands, "commands", "", "command directory (overrides commands_dir from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return exitError(ExitInvalidArgs, "rapid-mcp: %v", err)
	}
	if serveCommands != "" {
		cfg.CommandsDir = serveCommands
	}

	res, reg, err := buildCatalog(cmd.Context(), cfg.CommandsDir, cfg)
	if err != nil {
		return exitError(ExitInvalidArgs, "rapid-mcp: %v", err)
	}
	for _, w := range res.Warnings {
		slog.Warn("command file lint", "file", w.File, "finding", w.Message)
	}
	slog.Info("command catalog loaded", "commands", reg.Len(), "dir", cfg.CommandsDir)

	timeout := time.Duration(cfg.GH.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = -1 // config zero means unbounded
	}
	invoker := ghcli.NewInvoker(ghcli.New(cfg.GH.Binary, timeout))

	srv := server.New(reg, server.Options{
		Version: Version,
		Invoker: invoker,
	})
	if err := srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return exitError(ExitServe, "rapid-mcp: %v", err)
	}
	return nil
}

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError. If msg is empty, the error message is
// set to a generic description of the exit code.
func exitError(code int, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		switch code {
		case ExitValidation:
			msg = "rapid-mcp: validation failed"
		case ExitServe:
			msg = "rapid-mcp: serve failed"
		default:
			msg = "rapid-mcp: error"
		}
	}
	return &exitCodeError{code: code, msg: msg}
}

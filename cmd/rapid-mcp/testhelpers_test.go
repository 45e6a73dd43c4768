// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/macjunkins/rapid-mcp-server/internal/config"
)

// echoDoc is a minimal valid command definition used across cmd tests.
const echoDoc = `name: echo-note
version: 1.0.0
description: Echo a note back as a prompt.
category: demo
parameters:
  - name: note
    type: string
    description: Text to reply to.
    required: true
    validation:
      max_length: 40
  - name: tone
    type: string
    description: Reply tone.
    default: neutral
prompt: |
  Write a {{tone}} reply to: {{note}}
`

// resetCLI isolates a test from ambient config and restores global command
// state afterwards so invocations do not leak flag values into each other.
func resetCLI(t *testing.T) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvCommandsDir, "")
	t.Setenv(config.EnvGHBinary, "")

	prevNoColor := color.NoColor
	color.NoColor = true

	t.Cleanup(func() {
		color.NoColor = prevNoColor

		reset := func(f *pflag.Flag) {
			f.Changed = false
			_ = f.Value.Set(f.DefValue)
		}
		rootCmd.PersistentFlags().VisitAll(reset)
		for _, c := range rootCmd.Commands() {
			c.Flags().VisitAll(reset)
		}

		// Array flags cannot round-trip through DefValue.
		renderArgs = nil

		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})
}

// writeCommand writes one YAML command definition into dir.
func writeCommand(t *testing.T, dir, file, doc string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, file), []byte(doc), 0o644); err != nil {
		t.Fatalf("write %s: %v", file, err)
	}
}

// catalogDir creates a temp directory holding the echo-note command.
func catalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeCommand(t, dir, "echo-note.yaml", echoDoc)
	return dir
}

// runCLI executes the root command with args, feeding in on stdin, and
// returns stdout, stderr, and the execution error.
func runCLI(t *testing.T, in string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(in))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// exitCode maps an Execute error to the code main would exit with.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ece *exitCodeError
	if errors.As(err, &ece) {
		return ece.code
	}
	return ExitInvalidArgs
}

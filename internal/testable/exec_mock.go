package testable

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// MockCommandExecutor is a test double for CommandExecutor.
// It can simulate gh not found, command failures with specific exit codes,
// and predetermined outputs.
type MockCommandExecutor struct {
	// LookPathErr, when non-nil, is returned by LookPath for any file.
	LookPathErr error

	// LookPathResult is returned as the path when LookPathErr is nil.
	LookPathResult string

	// CommandOutputs maps a command key (e.g., "gh api repos/o/r") to the
	// stdout that the resulting exec.Cmd should produce. The key is built
	// from the command name and all arguments joined by spaces.
	CommandOutputs map[string]string

	// CommandErrors maps a command key to an error message. When set, the
	// resulting exec.Cmd will fail with that message written to stderr.
	CommandErrors map[string]string

	// CommandExitCodes maps a command key to the exit code used when the
	// key also appears in CommandErrors. Unset keys exit 1.
	CommandExitCodes map[string]int

	// DefaultOutput is returned when no key matches in CommandOutputs.
	DefaultOutput string

	// DefaultError, when non-empty, makes every unmatched command fail.
	DefaultError string

	// Calls records the command keys that were invoked, for assertion purposes.
	Calls []string
}

// LookPath returns the configured result or error.
func (m *MockCommandExecutor) LookPath(_ string) (string, error) {
	if m.LookPathErr != nil {
		return "", m.LookPathErr
	}
	if m.LookPathResult != "" {
		return m.LookPathResult, nil
	}
	return "/usr/bin/gh", nil
}

// CommandContext returns an *exec.Cmd that, when executed, produces the
// pre-configured output or error. Payloads travel through the child's
// stdin rather than a shell string, so multi-line JSON survives intact.
func (m *MockCommandExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	key := name + " " + strings.Join(args, " ")
	m.Calls = append(m.Calls, key)

	// Check for a matching error first.
	if m.CommandErrors != nil {
		if errMsg, ok := m.CommandErrors[key]; ok {
			code := 1
			if c, ok := m.CommandExitCodes[key]; ok {
				code = c
			}
			cmd := exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("cat >&2; exit %d", code)) //nolint:gosec // test helper
			cmd.Stdin = strings.NewReader(errMsg)
			return cmd
		}
	}

	// Check for a matching output.
	if m.CommandOutputs != nil {
		if out, ok := m.CommandOutputs[key]; ok {
			cmd := exec.CommandContext(ctx, "cat")
			cmd.Stdin = strings.NewReader(out)
			return cmd
		}
	}

	// Fall back to defaults.
	if m.DefaultError != "" {
		cmd := exec.CommandContext(ctx, "sh", "-c", "cat >&2; exit 1")
		cmd.Stdin = strings.NewReader(m.DefaultError)
		return cmd
	}

	cmd := exec.CommandContext(ctx, "cat")
	cmd.Stdin = strings.NewReader(m.DefaultOutput)
	return cmd
}

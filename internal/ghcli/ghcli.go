// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

// Package ghcli executes the GitHub CLI for commands whose metadata opts
// into execution. Invocations are argv-only: no shell ever sees an
// argument, so rendered parameter values cannot be reinterpreted.
package ghcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"

	"github.com/macjunkins/rapid-mcp-server/internal/redact"
	"github.com/macjunkins/rapid-mcp-server/internal/testable"
)

// Failure categories, reported to clients alongside execution errors.
const (
	CategoryNotFound  = "not_found" // gh binary missing from PATH
	CategoryAuth      = "auth"      // gh exited with its auth failure code
	CategoryExit      = "exit"      // any other non-zero exit
	CategoryMalformed = "malformed" // output or executor metadata undecodable
)

// authExitCode is gh's documented exit status for authentication failures.
const authExitCode = 4

// DefaultTimeout bounds one gh invocation unless the client is configured
// otherwise.
const DefaultTimeout = 30 * time.Second

// Error describes a failed gh invocation or result decode. Stderr is
// already redacted.
type Error struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error

	category string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "gh"
	if len(e.Args) > 0 {
		msg += " " + strings.Join(e.Args, " ")
	}
	switch {
	case e.category == CategoryNotFound:
		return fmt.Sprintf("%s: executable not found: %v", msg, e.Err)
	case e.Stderr != "":
		return fmt.Sprintf("%s: %v: %s", msg, e.Err, e.Stderr)
	default:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Category names the failure class: not_found, auth, exit, or malformed.
func (e *Error) Category() string { return e.category }

// Client runs gh commands with a configurable binary and timeout.
type Client struct {
	bin     string
	timeout time.Duration
	exec    testable.CommandExecutor
}

// New builds a Client. An empty bin means "gh"; a zero timeout means
// DefaultTimeout; a negative timeout disables the bound.
func New(bin string, timeout time.Duration) *Client {
	if bin == "" {
		bin = "gh"
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{bin: bin, timeout: timeout, exec: testable.DefaultExecutor()}
}

// SetExecutor replaces the command executor. Tests use this to avoid
// requiring a real gh binary.
func (c *Client) SetExecutor(e testable.CommandExecutor) { c.exec = e }

// Available reports whether the configured gh binary is on PATH.
func (c *Client) Available() bool {
	_, err := c.exec.LookPath(c.bin)
	return err == nil
}

// Run executes gh with args and returns its stdout. Failures come back as
// *Error with the category filled in.
func (c *Client) Run(ctx context.Context, args ...string) ([]byte, error) {
	if _, err := c.exec.LookPath(c.bin); err != nil {
		return nil, &Error{Args: args, Err: err, category: CategoryNotFound}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := c.exec.CommandContext(ctx, c.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		ghErr := &Error{
			Args:     args,
			Stderr:   redact.String(strings.TrimSpace(stderr.String())),
			Err:      err,
			category: CategoryExit,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ghErr.ExitCode = exitErr.ExitCode()
			if ghErr.ExitCode == authExitCode {
				ghErr.category = CategoryAuth
			}
		}
		return nil, ghErr
	}

	return stdout.Bytes(), nil
}

// Issue fetches one issue through the REST API and decodes gh's output
// into the canonical GitHub type. repo is "owner/name".
func (c *Client) Issue(ctx context.Context, repo string, number int64) (*github.Issue, error) {
	args := []string{"api", fmt.Sprintf("repos/%s/issues/%d", repo, number)}
	out, err := c.Run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var issue github.Issue
	if err := json.Unmarshal(out, &issue); err != nil {
		return nil, &Error{
			Args:     args,
			Err:      fmt.Errorf("decoding issue response: %w", err),
			category: CategoryMalformed,
		}
	}
	return &issue, nil
}

// Repo fetches repository metadata through the REST API. repo is
// "owner/name".
func (c *Client) Repo(ctx context.Context, repo string) (*github.Repository, error) {
	args := []string{"api", "repos/" + repo}
	out, err := c.Run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var repository github.Repository
	if err := json.Unmarshal(out, &repository); err != nil {
		return nil, &Error{
			Args:     args,
			Err:      fmt.Errorf("decoding repository response: %w", err),
			category: CategoryMalformed,
		}
	}
	return &repository, nil
}

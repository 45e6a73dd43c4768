// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

// Package server runs the stdio wire loop: one JSON-RPC request per input
// line, one response per output line, requests handled strictly in order.
// Nothing but protocol frames touches the output stream; diagnostics go to
// the structured logger, which writes to stderr.
package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/macjunkins/rapid-mcp-server/internal/command"
	"github.com/macjunkins/rapid-mcp-server/internal/params"
	"github.com/macjunkins/rapid-mcp-server/internal/redact"
	"github.com/macjunkins/rapid-mcp-server/internal/registry"
	"github.com/macjunkins/rapid-mcp-server/internal/rpc"
)

// protocolVersion is the MCP revision this server implements.
const protocolVersion = "2024-11-05"

// maxLineBytes caps a single request line. A frame past this kills the
// session: there is no way to resynchronize a line protocol mid-line.
const maxLineBytes = 10 * 1024 * 1024

// Invoker runs a command's external executor after validation and
// rendering succeed. Supports inspects the definition's metadata; Invoke
// returns the executor's textual output for the result's second content
// block.
type Invoker interface {
	Supports(def *command.Definition) bool
	Invoke(ctx context.Context, def *command.Definition, args map[string]any) (string, error)
}

// Options configures a Server.
type Options struct {
	Name    string // serverInfo.name; defaults to "rapid-mcp-server"
	Version string // serverInfo.version; defaults to "dev"
	Invoker Invoker
}

// Server answers MCP requests from a single client over a byte stream.
// All catalog state lives in the Registry; the server itself keeps nothing
// between requests.
type Server struct {
	reg     *registry.Registry
	name    string
	version string
	invoker Invoker
	session string
}

// New builds a Server over an already-constructed registry.
func New(reg *registry.Registry, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "rapid-mcp-server"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{
		reg:     reg,
		name:    opts.Name,
		version: opts.Version,
		invoker: opts.Invoker,
		session: uuid.NewString(),
	}
}

// Wire shapes. Field order is marshal order.

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    capabilities `json:"capabilities"`
	ServerInfo      serverInfo   `json:"serverInfo"`
}

type capabilities struct {
	Tools toolsCapability `json:"tools"`
}

type toolsCapability struct{}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type listResult struct {
	Tools []registry.Tool `json:"tools"`
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callResult struct {
	Content []textContent `json:"content"`
}

type validationData struct {
	ValidationErrors []params.FieldError `json:"validation_errors"`
}

// Serve reads requests from in until end-of-input, writing each response
// to out as a single line. End-of-input is a clean shutdown, not an error.
// Blank lines are skipped. ctx cancellation is honored between requests.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	slog.Info("session started",
		"session_id", s.session, "server", s.name, "version", s.version,
		"commands", s.reg.Len())

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.dispatch(ctx, line)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("request exceeds %d byte frame limit: %w", maxLineBytes, err)
		}
		return fmt.Errorf("reading request: %w", err)
	}

	slog.Info("session ended", "session_id", s.session)
	return nil
}

// dispatch turns one input line into at most one response. A nil return
// means nothing is written: the line was a notification, or malformed
// beyond recovering an id to respond against.
func (s *Server) dispatch(ctx context.Context, line []byte) *rpc.Response {
	var req rpc.Request
	if err := json.Unmarshal(line, &req); err != nil {
		if id := recoverID(line); id != nil {
			return rpc.NewError(id, rpc.CodeParseError, "parse error: "+err.Error(), nil)
		}
		slog.Warn("dropping undecodable input", "session_id", s.session, "error", err)
		return nil
	}
	return s.route(ctx, &req)
}

// recoverID pulls the id out of a line that failed to decode as a request,
// so a parse error can still be addressed to it. Only a JSON object can
// yield one.
func recoverID(line []byte) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil
	}
	return probe.ID
}

func (s *Server) route(ctx context.Context, req *rpc.Request) (resp *rpc.Response) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from handler panic",
				"session_id", s.session, "method", req.Method, "panic", r)
			resp = nil
			if !req.IsNotification() {
				resp = rpc.NewError(req.ID, rpc.CodeInternal, "internal error", nil)
			}
		}
	}()

	// Notifications are fire-and-forget: no response, ever, even when
	// handling fails.
	if req.IsNotification() {
		switch req.Method {
		case "notifications/initialized":
			slog.Debug("client initialized", "session_id", s.session)
		default:
			slog.Debug("ignoring notification", "session_id", s.session, "method", req.Method)
		}
		return nil
	}

	slog.Debug("request", "session_id", s.session, "method", req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return rpc.NewError(req.ID, rpc.CodeMethodNotFound,
			fmt.Sprintf("method not found: %s", req.Method),
			map[string]any{"method": req.Method})
	}
}

// handleInitialize answers the handshake. Client params carry a proposed
// protocol version, but this server speaks exactly one revision, so they
// are ignored. Works with an empty registry.
func (s *Server) handleInitialize(req *rpc.Request) *rpc.Response {
	return rpc.NewResult(req.ID, initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    capabilities{Tools: toolsCapability{}},
		ServerInfo:      serverInfo{Name: s.name, Version: s.version},
	})
}

func (s *Server) handleToolsList(req *rpc.Request) *rpc.Response {
	return rpc.NewResult(req.ID, listResult{Tools: s.reg.Tools()})
}

func (s *Server) handleToolsCall(ctx context.Context, req *rpc.Request) *rpc.Response {
	if len(req.Params) == 0 {
		return rpc.NewError(req.ID, rpc.CodeInvalidParams,
			"tools/call requires params with a tool name", nil)
	}

	var call callParams
	if err := json.Unmarshal(req.Params, &call); err != nil {
		return rpc.NewError(req.ID, rpc.CodeInvalidParams,
			"malformed tools/call params: "+err.Error(), nil)
	}
	if call.Name == "" {
		return rpc.NewError(req.ID, rpc.CodeInvalidParams,
			"tools/call requires a tool name", nil)
	}

	entry, ok := s.reg.Get(call.Name)
	if !ok {
		return rpc.NewError(req.ID, rpc.CodeMethodNotFound,
			fmt.Sprintf("tool not found: %s", call.Name),
			map[string]any{"tool": call.Name})
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}

	validated, fieldErrs := params.Validate(entry.Def.Parameters, args,
		params.Options{Patterns: entry.Patterns})
	if len(fieldErrs) > 0 {
		slog.Debug("arguments rejected",
			"session_id", s.session, "tool", call.Name, "errors", len(fieldErrs))
		return rpc.NewError(req.ID, rpc.CodeInvalidParams,
			fmt.Sprintf("invalid arguments for tool %q", call.Name),
			validationData{ValidationErrors: fieldErrs})
	}

	content := []textContent{{Type: "text", Text: entry.Template.Render(validated)}}

	if s.invoker != nil && s.invoker.Supports(entry.Def) {
		out, err := s.invoker.Invoke(ctx, entry.Def, validated)
		if err != nil {
			slog.Error("executor failed",
				"session_id", s.session, "tool", call.Name, "error", redact.Error(err))
			var categorized interface{ Category() string }
			var data any
			if errors.As(err, &categorized) {
				data = map[string]any{"category": categorized.Category()}
			}
			return rpc.NewError(req.ID, rpc.CodeInternal,
				fmt.Sprintf("tool %q execution failed: %s", call.Name, redact.Error(err)),
				data)
		}
		content = append(content, textContent{Type: "text", Text: out})
	}

	slog.Info("tool call", "session_id", s.session, "tool", call.Name)
	return rpc.NewResult(req.ID, callResult{Content: content})
}

// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

// Package registry holds the immutable command catalog a server session
// works from. A Registry is built once from parsed definitions; any
// defect in the set fails the whole build rather than silently skipping
// the offending command.
package registry

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/macjunkins/rapid-mcp-server/internal/command"
	"github.com/macjunkins/rapid-mcp-server/internal/render"
)

// Tool is the wire-facing projection of a command definition, shaped for
// a tools/list result.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the object schema describing a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property is one inputSchema property. Validation rules fold into the
// matching JSON-Schema keywords; pattern is carried as documentation and
// only enforced when the server enables that capability.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Enum        []any    `json:"enum,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
}

// Entry is one registered command with everything precomputed at build
// time: its descriptor, its compiled prompt template, and (when pattern
// enforcement is on) its compiled pattern expressions.
type Entry struct {
	Def      *command.Definition
	Tool     Tool
	Template *render.Template
	Patterns map[string]*regexp.Regexp
}

// Options controls optional registry capabilities.
type Options struct {
	// EnforcePatterns compiles each parameter's pattern rule so the
	// validator rejects non-matching strings. Off, patterns remain
	// documentation-only.
	EnforcePatterns bool
}

// Registry is an immutable name-to-command index preserving load order.
type Registry struct {
	entries map[string]*Entry
	order   []string
}

// New builds a Registry from definitions in load order. It fails on the
// first structural defect: an empty or duplicate command name, a duplicate
// parameter name within a command, a parameter name unusable as a
// placeholder key, or (when enforcing) an uncompilable pattern.
func New(defs []*command.Definition, opts Options) (*Registry, error) {
	r := &Registry{
		entries: make(map[string]*Entry, len(defs)),
		order:   make([]string, 0, len(defs)),
	}

	for i, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("command %d has no name", i)
		}
		if _, dup := r.entries[def.Name]; dup {
			return nil, fmt.Errorf("duplicate command name %q", def.Name)
		}

		entry, err := build(def, opts)
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", def.Name, err)
		}

		r.entries[def.Name] = entry
		r.order = append(r.order, def.Name)
	}

	return r, nil
}

func build(def *command.Definition, opts Options) (*Entry, error) {
	schema := InputSchema{
		Type:       "object",
		Properties: make(map[string]Property, len(def.Parameters)),
		Required:   make([]string, 0),
	}

	var patterns map[string]*regexp.Regexp
	seen := make(map[string]bool, len(def.Parameters))

	for _, p := range def.Parameters {
		if !command.ValidName(p.Name) {
			return nil, fmt.Errorf("parameter name %q is not a valid placeholder key", p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true

		prop := Property{
			Type:        p.Type.String(),
			Description: p.Description,
		}

		if p.Required {
			schema.Required = append(schema.Required, p.Name)
			if p.Default != nil {
				slog.Debug("ignoring default on required parameter",
					"command", def.Name, "parameter", p.Name)
			}
		} else {
			prop.Default = p.Default
		}

		if rule := p.Validation; !rule.Empty() {
			prop.Minimum = rule.Min
			prop.Maximum = rule.Max
			prop.MinLength = rule.MinLength
			prop.MaxLength = rule.MaxLength
			prop.Enum = rule.AllowedValues
			prop.Pattern = rule.Pattern

			if opts.EnforcePatterns && rule.Pattern != "" {
				re, err := regexp.Compile(rule.Pattern)
				if err != nil {
					return nil, fmt.Errorf("parameter %q: invalid pattern: %w", p.Name, err)
				}
				if patterns == nil {
					patterns = make(map[string]*regexp.Regexp)
				}
				patterns[p.Name] = re
			}
		}

		schema.Properties[p.Name] = prop
	}

	return &Entry{
		Def: def,
		Tool: Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: schema,
		},
		Template: render.Parse(def.Prompt),
		Patterns: patterns,
	}, nil
}

// Get looks up a command by exact, case-sensitive name.
func (r *Registry) Get(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns the registered command names in load order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Tools returns one descriptor per command, in load order.
func (r *Registry) Tools() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].Tool)
	}
	return tools
}

// Len reports the number of registered commands.
func (r *Registry) Len() int {
	return len(r.order)
}

// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

// Package command defines the declarative command documents that rapid-mcp
// loads from YAML and serves as MCP tools: a name, typed parameters with
// validation rules, usage examples, and a prompt template.
package command

import (
	"fmt"
	"regexp"
)

// Kind is the closed set of types a parameter may declare. The zero value
// is KindString, so a parameter that omits "type" defaults to string.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindBoolean
	KindArray
	KindObject
)

// kindNames maps each Kind to its YAML keyword, which is also the JSON
// Schema type keyword for every kind.
var kindNames = [...]string{
	KindString:  "string",
	KindInteger: "integer",
	KindNumber:  "number",
	KindBoolean: "boolean",
	KindArray:   "array",
	KindObject:  "object",
}

// String returns the YAML/JSON Schema keyword for k.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Numeric reports whether k is integer or number.
func (k Kind) Numeric() bool {
	return k == KindInteger || k == KindNumber
}

// HasLength reports whether min_length/max_length rules apply to k.
func (k Kind) HasLength() bool {
	return k == KindString || k == KindArray
}

// ParseKind maps a YAML type keyword to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if s == name {
			return Kind(k), nil
		}
	}
	return KindString, fmt.Errorf("unknown parameter type %q (must be string, integer, number, boolean, array, or object)", s)
}

// paramNameRE is the shape a parameter name must have so it can double as a
// template placeholder key.
var paramNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether s is usable as a parameter name.
func ValidName(s string) bool {
	return paramNameRE.MatchString(s)
}

// Rule holds the optional constraints attached to a parameter. Pattern is a
// documentation string unless pattern enforcement is enabled at load time.
type Rule struct {
	Pattern       string   `yaml:"pattern,omitempty"`
	Min           *float64 `yaml:"min,omitempty"`
	Max           *float64 `yaml:"max,omitempty"`
	MinLength     *int     `yaml:"min_length,omitempty"`
	MaxLength     *int     `yaml:"max_length,omitempty"`
	AllowedValues []any    `yaml:"allowed_values,omitempty"`
}

// Empty reports whether the rule carries no constraints at all.
func (r *Rule) Empty() bool {
	return r == nil || (r.Pattern == "" && r.Min == nil && r.Max == nil &&
		r.MinLength == nil && r.MaxLength == nil && len(r.AllowedValues) == 0)
}

// Parameter describes one input field of a command.
type Parameter struct {
	Name        string `yaml:"name"`
	Type        Kind   `yaml:"type"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     any    `yaml:"default"`
	Validation  *Rule  `yaml:"validation"`
}

// Example documents one invocation of a command. Arguments should satisfy
// the command's own parameter rules; `rapid-mcp validate` checks that.
type Example struct {
	Description string         `yaml:"description"`
	Arguments   map[string]any `yaml:"arguments"`
}

// Definition is one loaded command. Metadata is an opaque pass-through map
// for external collaborators (for instance the gh invoker); the registry,
// validator, and renderer never interpret it.
type Definition struct {
	Name        string         `yaml:"name"`
	Version     string         `yaml:"version"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	Parameters  []Parameter    `yaml:"parameters"`
	Examples    []Example      `yaml:"examples"`
	Prompt      string         `yaml:"prompt"`
	Metadata    map[string]any `yaml:"metadata"`
}

// Parameter returns the parameter with the given name, or nil.
func (d *Definition) Parameter(name string) *Parameter {
	for i := range d.Parameters {
		if d.Parameters[i].Name == name {
			return &d.Parameters[i]
		}
	}
	return nil
}

// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

// Package params validates client-supplied tool arguments against a
// command's parameter specs. Validation is exhaustive: every applicable
// error for a request is collected and returned together so a client sees
// all problems in one round-trip.
package params

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/macjunkins/rapid-mcp-server/internal/command"
)

// ErrorType classifies a single field error.
type ErrorType string

const (
	ErrMissingRequired  ErrorType = "missing_required"
	ErrUnknownParameter ErrorType = "unknown_parameter"
	ErrTypeMismatch     ErrorType = "type_mismatch"
	ErrConstraint       ErrorType = "constraint_violation"
)

// FieldError is one validation problem on one field. It marshals directly
// into the error response's data.validation_errors entries.
type FieldError struct {
	Field   string    `json:"field"`
	Type    ErrorType `json:"error_type"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Options carries optional validation capabilities.
type Options struct {
	// Patterns maps parameter names to compiled pattern expressions.
	// When nil or missing an entry, that parameter's pattern rule is
	// documentation-only and never rejects input.
	Patterns map[string]*regexp.Regexp
}

// Validate checks args against specs and returns the validated argument
// map alongside every field error found. The map is complete only when the
// error list is empty: it holds each supplied value (normalized, e.g.
// integers as int64) plus defaults for absent optional parameters.
func Validate(specs []command.Parameter, args map[string]any, opts Options) (map[string]any, []FieldError) {
	var errs []FieldError
	validated := make(map[string]any, len(specs))

	// Required parameters must be supplied.
	for _, spec := range specs {
		if _, ok := args[spec.Name]; spec.Required && !ok {
			errs = append(errs, FieldError{
				Field:   spec.Name,
				Type:    ErrMissingRequired,
				Message: fmt.Sprintf("missing required parameter %q", spec.Name),
			})
		}
	}

	// Arguments are a closed set: anything not declared is an error.
	known := make(map[string]bool, len(specs))
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		known[spec.Name] = true
		names = append(names, spec.Name)
	}
	unknown := make([]string, 0)
	for key := range args {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		msg := fmt.Sprintf("unknown parameter %q", key)
		if hint := closestMatch(strings.ToLower(key), names, 3); hint != "" {
			msg = fmt.Sprintf("unknown parameter %q (did you mean %q?)", key, hint)
		}
		errs = append(errs, FieldError{Field: key, Type: ErrUnknownParameter, Message: msg})
	}

	// Type-check and constrain each supplied value, then fill defaults.
	for _, spec := range specs {
		raw, ok := args[spec.Name]
		if !ok {
			if !spec.Required && spec.Default != nil {
				if norm, kindErr := coerce(spec.Type, spec.Default); kindErr == "" {
					validated[spec.Name] = norm
				} else {
					validated[spec.Name] = spec.Default
				}
			}
			continue
		}

		value, got := coerce(spec.Type, raw)
		if got != "" {
			errs = append(errs, FieldError{
				Field:   spec.Name,
				Type:    ErrTypeMismatch,
				Message: fmt.Sprintf("expected %s, got %s", spec.Type, got),
			})
			continue
		}

		errs = append(errs, checkRules(spec, value, opts)...)
		validated[spec.Name] = value
	}

	return validated, errs
}

// MatchesKind reports whether a decoded YAML or JSON value satisfies the
// declared kind. Used by the loader to vet defaults and allowed_values
// against their parameter's kind.
func MatchesKind(kind command.Kind, v any) bool {
	_, mismatch := coerce(kind, v)
	return mismatch == ""
}

// coerce checks raw against the declared kind. On success it returns the
// normalized value (integers as int64, numbers as float64) and "". On
// mismatch it returns the name of the kind actually seen.
func coerce(kind command.Kind, raw any) (any, string) {
	switch kind {
	case command.KindString:
		if s, ok := raw.(string); ok {
			return s, ""
		}
	case command.KindBoolean:
		if b, ok := raw.(bool); ok {
			return b, ""
		}
	case command.KindInteger:
		switch n := raw.(type) {
		case int:
			return int64(n), ""
		case int64:
			return n, ""
		case float64:
			if n == float64(int64(n)) {
				return int64(n), ""
			}
			return nil, "number"
		}
	case command.KindNumber:
		switch n := raw.(type) {
		case int:
			return float64(n), ""
		case int64:
			return float64(n), ""
		case float64:
			return n, ""
		}
	case command.KindArray:
		if a, ok := raw.([]any); ok {
			return a, ""
		}
	case command.KindObject:
		if m, ok := raw.(map[string]any); ok {
			return m, ""
		}
	}
	return nil, jsonKind(raw)
}

// jsonKind names the JSON kind of a decoded value for error messages.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// checkRules applies the parameter's validation rule to a value whose kind
// already matched. Every violated constraint produces its own error naming
// the rule that failed.
func checkRules(spec command.Parameter, value any, opts Options) []FieldError {
	rule := spec.Validation
	if rule.Empty() {
		return nil
	}

	var errs []FieldError
	violation := func(format string, a ...any) {
		errs = append(errs, FieldError{
			Field:   spec.Name,
			Type:    ErrConstraint,
			Message: fmt.Sprintf(format, a...),
		})
	}

	if spec.Type.Numeric() {
		n := toFloat(value)
		if rule.Min != nil && n < *rule.Min {
			violation("value %s below min %s", trimFloat(n), trimFloat(*rule.Min))
		}
		if rule.Max != nil && n > *rule.Max {
			violation("value %s above max %s", trimFloat(n), trimFloat(*rule.Max))
		}
	}

	if spec.Type.HasLength() {
		length := -1
		switch v := value.(type) {
		case string:
			length = utf8.RuneCountInString(v)
		case []any:
			length = len(v)
		}
		if length >= 0 {
			if rule.MinLength != nil && length < *rule.MinLength {
				violation("length %d below min_length %d", length, *rule.MinLength)
			}
			if rule.MaxLength != nil && length > *rule.MaxLength {
				violation("length %d exceeds max_length %d", length, *rule.MaxLength)
			}
		}
	}

	if len(rule.AllowedValues) > 0 && !isAllowed(value, rule.AllowedValues) {
		violation("value not in allowed_values (%s)", joinAllowed(rule.AllowedValues))
	}

	if re := opts.Patterns[spec.Name]; re != nil {
		if s, ok := value.(string); ok && !re.MatchString(s) {
			violation("value does not match pattern %q", rule.Pattern)
		}
	}

	return errs
}

// isAllowed reports membership of value in the rule's closed set. Numbers
// compare numerically so a YAML 1 matches a JSON 1.0.
func isAllowed(value any, allowed []any) bool {
	for _, a := range allowed {
		switch v := value.(type) {
		case string:
			if s, ok := a.(string); ok && s == v {
				return true
			}
		case bool:
			if b, ok := a.(bool); ok && b == v {
				return true
			}
		case int64, float64, int:
			if isNumeric(a) && toFloat(a) == toFloat(v) {
				return true
			}
		default:
			if reflect.DeepEqual(a, value) {
				return true
			}
		}
	}
	return false
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	}
	return false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// trimFloat prints a bound or value without a trailing ".0" for integral
// numbers, keeping messages readable.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func joinAllowed(allowed []any) string {
	parts := make([]string, 0, len(allowed))
	for _, a := range allowed {
		parts = append(parts, fmt.Sprintf("%v", a))
	}
	return strings.Join(parts, ", ")
}

// closestMatch finds the candidate closest to input by Levenshtein
// distance, or "" when nothing is within maxDist edits.
func closestMatch(input string, candidates []string, maxDist int) string {
	best := ""
	bestDist := maxDist + 1

	for _, c := range candidates {
		d := levenshtein(input, strings.ToLower(c))
		if d < bestDist {
			bestDist = d
			best = c
		}
	}

	if bestDist <= maxDist {
		return best
	}
	return ""
}

// levenshtein computes edit distance with a two-row DP table.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[lb]
}

// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

// Package render implements flat placeholder substitution for command
// prompt templates. A template is compiled once into literal and
// placeholder spans; rendering is a single linear pass with no failure
// path. Conditionals and iteration are deliberately out of scope: any
// {{...}} sequence that is not a plain parameter name passes through as
// literal text.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/macjunkins/rapid-mcp-server/internal/command"
)

type span struct {
	literal bool
	// text is the literal content, or the placeholder's parameter name.
	text string
}

// Template is a compiled prompt template. Compile once with Parse, render
// any number of times.
type Template struct {
	spans []span
}

// Parse compiles template text. It never fails: malformed or unrecognized
// brace sequences stay literal.
func Parse(text string) *Template {
	var spans []span
	var lit strings.Builder

	i := 0
	for i < len(text) {
		open := strings.Index(text[i:], "{{")
		if open < 0 {
			lit.WriteString(text[i:])
			break
		}
		open += i

		end := strings.Index(text[open+2:], "}}")
		if end < 0 {
			lit.WriteString(text[i:])
			break
		}
		end += open + 2

		name := strings.TrimSpace(text[open+2 : end])
		if !command.ValidName(name) {
			// Not a placeholder. Keep one brace and rescan from the next
			// byte so nested openings like "{{{x}}" still resolve.
			lit.WriteString(text[i : open+1])
			i = open + 1
			continue
		}

		lit.WriteString(text[i:open])
		if lit.Len() > 0 {
			spans = append(spans, span{literal: true, text: lit.String()})
			lit.Reset()
		}
		spans = append(spans, span{text: name})
		i = end + 2
	}

	if lit.Len() > 0 {
		spans = append(spans, span{literal: true, text: lit.String()})
	}
	return &Template{spans: spans}
}

// Render substitutes values from args into the template. A placeholder
// whose parameter is absent from args renders as an explicit
// "<missing:name>" marker instead of failing.
func (t *Template) Render(args map[string]any) string {
	var b strings.Builder
	for _, s := range t.spans {
		if s.literal {
			b.WriteString(s.text)
			continue
		}
		v, ok := args[s.text]
		if !ok {
			b.WriteString("<missing:")
			b.WriteString(s.text)
			b.WriteString(">")
			continue
		}
		b.WriteString(FormatValue(v))
	}
	return b.String()
}

// Placeholders returns the distinct parameter names the template
// references, in first-occurrence order.
func (t *Template) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)
	for _, s := range t.spans {
		if s.literal || seen[s.text] {
			continue
		}
		seen[s.text] = true
		names = append(names, s.text)
	}
	return names
}

// Text is a convenience for one-shot rendering.
func Text(text string, args map[string]any) string {
	return Parse(text).Render(args)
}

// FormatValue stringifies a validated argument value for insertion into a
// prompt: strings verbatim, booleans and numbers in canonical form, arrays
// and objects as compact JSON. No escaping is applied — the output is a
// prompt for a language model, not markup.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		// json.Marshal picks the shortest round-trip form and prints
		// integral floats without an exponent.
		b, err := json.Marshal(x)
		if err != nil {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
		return string(b)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	}
}

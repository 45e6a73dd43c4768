// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_FlatSubstitution(t *testing.T) {
	tpl := Parse("Work on issue {{issue_number}} in {{repo}}.")
	out := tpl.Render(map[string]any{
		"issue_number": int64(42),
		"repo":         "macjunkins/rapid",
	})
	assert.Equal(t, "Work on issue 42 in macjunkins/rapid.", out)
}

func TestRender_RepeatedPlaceholder(t *testing.T) {
	out := Text("{{x}} and {{x}} again", map[string]any{"x": "twice"})
	assert.Equal(t, "twice and twice again", out)
}

func TestRender_AdjacentPlaceholders(t *testing.T) {
	out := Text("{{a}}{{b}}", map[string]any{"a": "1", "b": "2"})
	assert.Equal(t, "12", out)
}

func TestRender_SpacedPlaceholder(t *testing.T) {
	out := Text("hello {{ name }}", map[string]any{"name": "world"})
	assert.Equal(t, "hello world", out)
}

func TestRender_MissingValueMarker(t *testing.T) {
	out := Text("value: {{gone}}", map[string]any{})
	assert.Equal(t, "value: <missing:gone>", out)
}

func TestRender_ValueStringification(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want string
	}{
		{"string verbatim", `a "quoted" <string>`, `a "quoted" <string>`},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"int64", int64(-7), "-7"},
		{"int", 12, "12"},
		{"integral float", float64(5), "5"},
		{"fractional float", 3.25, "3.25"},
		{"large float", 1e21, "1e+21"},
		{"array", []any{"a", float64(2)}, `["a",2]`},
		{"object", map[string]any{"k": "v"}, `{"k":"v"}`},
		{"nil", nil, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Text("{{v}}", map[string]any{"v": tt.val})
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRender_NonPlaceholderBracesPreserved(t *testing.T) {
	tests := []string{
		"{{#if admin}}secret{{/if}}",
		"{{bad-name}}",
		"{{two words}}",
		"{{}}",
		"unterminated {{tail",
		"stray }} braces {{",
		"{{.dotted}}",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			out := Text(text, map[string]any{"admin": true, "tail": "x"})
			assert.Equal(t, text, out)
		})
	}
}

func TestRender_NestedOpenResolves(t *testing.T) {
	// The inner "{{name}}" renders; the extra brace survives.
	out := Text("{{{name}}", map[string]any{"name": "v"})
	assert.Equal(t, "{v", out)
}

func TestRender_IdempotentOnRenderedOutput(t *testing.T) {
	args := map[string]any{"issue_number": int64(42), "gone_too": "x"}
	first := Text("issue {{issue_number}}, missing {{gone}}", args)
	second := Text(first, args)
	assert.Equal(t, first, second)
}

func TestRender_RoundTripContainsAllValues(t *testing.T) {
	args := map[string]any{
		"title": "Fix flaky test",
		"count": int64(3),
		"force": true,
	}
	out := Text("t={{title}} c={{count}} f={{force}}", args)
	for name, v := range args {
		assert.Contains(t, out, FormatValue(v), "value for %s not present", name)
	}
}

func TestPlaceholders(t *testing.T) {
	tpl := Parse("{{a}} {{b}} {{a}} {{#not}} {{c}}")
	assert.Equal(t, []string{"a", "b", "c"}, tpl.Placeholders())
}

func TestPlaceholders_None(t *testing.T) {
	assert.Empty(t, Parse("plain text").Placeholders())
}

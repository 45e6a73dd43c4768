// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind_AllKeywords(t *testing.T) {
	tests := []struct {
		keyword string
		want    Kind
	}{
		{"string", KindString},
		{"integer", KindInteger},
		{"number", KindNumber},
		{"boolean", KindBoolean},
		{"array", KindArray},
		{"object", KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got, err := ParseKind(tt.keyword)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.keyword, got.String())
		})
	}
}

func TestParseKind_Unknown(t *testing.T) {
	_, err := ParseKind("int")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown parameter type "int"`)
}

func TestKind_Numeric(t *testing.T) {
	assert.True(t, KindInteger.Numeric())
	assert.True(t, KindNumber.Numeric())
	assert.False(t, KindString.Numeric())
	assert.False(t, KindBoolean.Numeric())
}

func TestKind_HasLength(t *testing.T) {
	assert.True(t, KindString.HasLength())
	assert.True(t, KindArray.HasLength())
	assert.False(t, KindInteger.HasLength())
	assert.False(t, KindObject.HasLength())
}

func TestValidName(t *testing.T) {
	valid := []string{"a", "issue_number", "_private", "Repo2", "snake_case_name"}
	for _, name := range valid {
		assert.True(t, ValidName(name), "expected %q to be valid", name)
	}

	invalid := []string{"", "2fast", "dash-name", "dot.name", "with space", "ümlaut"}
	for _, name := range invalid {
		assert.False(t, ValidName(name), "expected %q to be invalid", name)
	}
}

func TestRule_Empty(t *testing.T) {
	var nilRule *Rule
	assert.True(t, nilRule.Empty())
	assert.True(t, (&Rule{}).Empty())

	n := 3
	assert.False(t, (&Rule{MinLength: &n}).Empty())
	assert.False(t, (&Rule{Pattern: "^x$"}).Empty())
	assert.False(t, (&Rule{AllowedValues: []any{"a"}}).Empty())
}

func TestDefinition_Parameter(t *testing.T) {
	def := &Definition{
		Parameters: []Parameter{
			{Name: "first"},
			{Name: "second", Required: true},
		},
	}

	p := def.Parameter("second")
	require.NotNil(t, p)
	assert.True(t, p.Required)

	assert.Nil(t, def.Parameter("third"))
}

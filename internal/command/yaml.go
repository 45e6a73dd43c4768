package command

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a type keyword into a Kind.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("parameter type must be a string: %w", err)
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML encodes a Kind as its keyword.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Decode parses exactly one command definition from YAML source. Unknown
// keys are rejected so typos in command files surface at load time rather
// than as silently ignored fields.
func Decode(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}

	// A second document in the same file is a mistake: each file defines
	// one command.
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("file contains more than one YAML document")
	}

	return &def, nil
}

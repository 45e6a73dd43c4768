// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

// Package loader reads a directory of YAML command definitions into the
// ordered set the registry is built from. Files parse concurrently, but the
// resulting order is always the filename sort, so catalogs load
// deterministically. Structural defects across all files are aggregated
// into a single error: authors fix the whole catalog in one pass instead of
// replaying the server once per mistake.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"

	"github.com/macjunkins/rapid-mcp-server/internal/command"
	"github.com/macjunkins/rapid-mcp-server/internal/params"
	"github.com/macjunkins/rapid-mcp-server/internal/render"
)

// parseLimit bounds concurrent file parses.
const parseLimit = 8

// Result is a loaded catalog: definitions in filename order plus any
// non-fatal lint findings.
type Result struct {
	Definitions []*command.Definition
	Warnings    []Warning
}

// Warning is a non-fatal finding about one command file. The catalog still
// loads; the `validate` command surfaces these to authors.
type Warning struct {
	File    string
	Message string
}

func (w Warning) String() string {
	return w.File + ": " + w.Message
}

// FileError is every structural defect found in one file, joined.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return e.File + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

// LoadError aggregates FileErrors across the whole directory.
type LoadError struct {
	Files []*FileError
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d command file(s) failed to load:", len(e.Files))
	for _, fe := range e.Files {
		b.WriteString("\n  ")
		b.WriteString(fe.Error())
	}
	return b.String()
}

// Dir loads every *.yaml and *.yml file directly under dir. On structural
// errors it returns a *LoadError covering every bad file; the Result is
// still returned so callers can surface lint warnings from the files that
// did parse. An empty directory yields an empty, valid catalog.
func Dir(ctx context.Context, dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading command directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	type slot struct {
		def      *command.Definition
		warnings []Warning
		err      *FileError
	}
	slots := make([]slot, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parseLimit)

	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				slots[i].err = &FileError{File: name, Err: err}
				return nil
			}

			def, err := command.Decode(data)
			if err != nil {
				slots[i].err = &FileError{File: name, Err: err}
				return nil
			}

			if errs := check(def); len(errs) > 0 {
				slots[i].err = &FileError{File: name, Err: errors.Join(errs...)}
				return nil
			}

			slots[i].def = def
			slots[i].warnings = lint(name, def)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	var failed []*FileError
	byName := make(map[string]string, len(files))

	for i, name := range files {
		if slots[i].err != nil {
			failed = append(failed, slots[i].err)
			continue
		}
		def := slots[i].def
		if prev, dup := byName[def.Name]; dup {
			failed = append(failed, &FileError{
				File: name,
				Err:  fmt.Errorf("command %q already defined in %s", def.Name, prev),
			})
			continue
		}
		byName[def.Name] = name
		result.Definitions = append(result.Definitions, def)
		result.Warnings = append(result.Warnings, slots[i].warnings...)
	}

	if len(failed) > 0 {
		return result, &LoadError{Files: failed}
	}
	return result, nil
}

// check returns every structural defect in one definition. These are the
// conditions that make a definition unservable, so any hit fails the load.
func check(def *command.Definition) []error {
	var errs []error
	fail := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf(format, a...))
	}

	if def.Name == "" {
		fail("missing name")
	}
	if def.Description == "" {
		fail("missing description")
	}
	if def.Prompt == "" {
		fail("missing prompt")
	}

	seen := make(map[string]bool, len(def.Parameters))
	for _, p := range def.Parameters {
		if !command.ValidName(p.Name) {
			fail("parameter %q: name is not usable as a placeholder key", p.Name)
			continue
		}
		if seen[p.Name] {
			fail("parameter %q: declared twice", p.Name)
			continue
		}
		seen[p.Name] = true

		if p.Default != nil && !params.MatchesKind(p.Type, p.Default) {
			fail("parameter %q: default does not match declared type %s", p.Name, p.Type)
		}

		errs = append(errs, checkRule(p)...)
	}

	return errs
}

// checkRule vets one parameter's validation rule against its kind.
func checkRule(p command.Parameter) []error {
	rule := p.Validation
	if rule.Empty() {
		return nil
	}

	var errs []error
	fail := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf("parameter %q: "+format, append([]any{p.Name}, a...)...))
	}

	if (rule.Min != nil || rule.Max != nil) && !p.Type.Numeric() {
		fail("min/max apply only to integer and number parameters")
	}
	if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
		fail("min %g exceeds max %g", *rule.Min, *rule.Max)
	}

	if (rule.MinLength != nil || rule.MaxLength != nil) && !p.Type.HasLength() {
		fail("min_length/max_length apply only to string and array parameters")
	}
	if rule.MinLength != nil && *rule.MinLength < 0 {
		fail("min_length must not be negative")
	}
	if rule.MaxLength != nil && *rule.MaxLength < 0 {
		fail("max_length must not be negative")
	}
	if rule.MinLength != nil && rule.MaxLength != nil && *rule.MinLength > *rule.MaxLength {
		fail("min_length %d exceeds max_length %d", *rule.MinLength, *rule.MaxLength)
	}

	if rule.Pattern != "" && p.Type != command.KindString {
		fail("pattern applies only to string parameters")
	}

	for _, v := range rule.AllowedValues {
		if !params.MatchesKind(p.Type, v) {
			fail("allowed value %v does not match declared type %s", v, p.Type)
		}
	}

	return errs
}

// lint returns non-fatal findings: things an author probably wants to fix
// but that do not stop the catalog from serving.
func lint(file string, def *command.Definition) []Warning {
	var warnings []Warning
	warn := func(format string, a ...any) {
		warnings = append(warnings, Warning{File: file, Message: fmt.Sprintf(format, a...)})
	}

	// IsValid alone admits shortened forms like "1.0"; require the full
	// MAJOR.MINOR.PATCH spelling.
	if v := "v" + def.Version; def.Version != "" &&
		(!semver.IsValid(v) || semver.Canonical(v) != v) {
		warn("version %q is not semantic (want MAJOR.MINOR.PATCH)", def.Version)
	}

	declared := make(map[string]bool, len(def.Parameters))
	for _, p := range def.Parameters {
		declared[p.Name] = true

		// A pattern that cannot compile is harmless while patterns are
		// documentation, and fatal the day enforcement is switched on.
		if p.Validation != nil && p.Validation.Pattern != "" {
			if _, err := regexp.Compile(p.Validation.Pattern); err != nil {
				warn("parameter %q: pattern does not compile: %v", p.Name, err)
			}
		}
	}

	for _, name := range render.Parse(def.Prompt).Placeholders() {
		if !declared[name] {
			warn("prompt references {{%s}} but no such parameter is declared", name)
		}
	}

	for i, ex := range def.Examples {
		args := ex.Arguments
		if args == nil {
			args = map[string]any{}
		}
		_, ferrs := params.Validate(def.Parameters, args, params.Options{})
		for _, fe := range ferrs {
			warn("example %d does not validate: %s", i+1, fe.Error())
		}
	}

	return warnings
}

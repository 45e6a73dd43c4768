// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

package ghcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"

	"github.com/macjunkins/rapid-mcp-server/internal/command"
	"github.com/macjunkins/rapid-mcp-server/internal/render"
)

// Invoker adapts a Client to the server's executor seam. A command opts in
// through metadata, which the core treats as opaque:
//
//	metadata:
//	  executor: gh
//	  gh_args: ["api", "repos/{{repo}}/issues/{{issue_number}}"]
//	  gh_parse: issue
//
// Each gh_args element is rendered against the validated argument map and
// passed as one argv element. gh_parse is optional; "issue" and "repo"
// decode REST output from gh api paths into a short typed summary, absent
// means raw output.
type Invoker struct {
	client *Client
}

// NewInvoker wraps a Client for use as a server executor.
func NewInvoker(client *Client) *Invoker {
	return &Invoker{client: client}
}

// Supports reports whether the definition asks for gh execution.
func (inv *Invoker) Supports(def *command.Definition) bool {
	return def.Metadata["executor"] == "gh"
}

// Invoke renders the definition's gh_args, runs gh, and returns the output
// text. args must already be validated and default-filled.
func (inv *Invoker) Invoke(ctx context.Context, def *command.Definition, args map[string]any) (string, error) {
	templates, err := argvTemplates(def)
	if err != nil {
		return "", err
	}

	argv := make([]string, len(templates))
	for i, tpl := range templates {
		parsed := render.Parse(tpl)
		for _, name := range parsed.Placeholders() {
			if _, ok := args[name]; !ok {
				return "", &Error{
					Err:      fmt.Errorf("gh_args references parameter %q with no value", name),
					category: CategoryMalformed,
				}
			}
		}
		argv[i] = parsed.Render(args)
	}

	out, err := inv.client.Run(ctx, argv...)
	if err != nil {
		return "", err
	}

	switch mode := def.Metadata["gh_parse"]; mode {
	case nil, "":
		return string(out), nil
	case "issue":
		return summarizeIssue(argv, out)
	case "repo":
		return summarizeRepo(argv, out)
	default:
		return "", &Error{
			Args:     argv,
			Err:      fmt.Errorf("unknown gh_parse mode %v", mode),
			category: CategoryMalformed,
		}
	}
}

// argvTemplates extracts and shape-checks the gh_args metadata list.
func argvTemplates(def *command.Definition) ([]string, error) {
	raw, ok := def.Metadata["gh_args"]
	if !ok {
		return nil, &Error{
			Err:      errors.New("metadata gh_args is required when executor is gh"),
			category: CategoryMalformed,
		}
	}

	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, &Error{
			Err:      errors.New("metadata gh_args must be a non-empty list of strings"),
			category: CategoryMalformed,
		}
	}

	templates := make([]string, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, &Error{
				Err:      fmt.Errorf("metadata gh_args[%d] is not a string", i),
				category: CategoryMalformed,
			}
		}
		templates[i] = s
	}
	return templates, nil
}

func summarizeIssue(args []string, out []byte) (string, error) {
	var issue github.Issue
	if err := decodeInto(args, out, &issue); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s [%s]", issue.GetNumber(), issue.GetTitle(), issue.GetState())
	if login := issue.GetUser().GetLogin(); login != "" {
		fmt.Fprintf(&b, " by %s", login)
	}
	if len(issue.Labels) > 0 {
		names := make([]string, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			names = append(names, l.GetName())
		}
		fmt.Fprintf(&b, " (labels: %s)", strings.Join(names, ", "))
	}
	if body := strings.TrimSpace(issue.GetBody()); body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	return b.String(), nil
}

func summarizeRepo(args []string, out []byte) (string, error) {
	var repo github.Repository
	if err := decodeInto(args, out, &repo); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (default branch %s, %d stars, %d open issues)",
		repo.GetFullName(), repo.GetDefaultBranch(),
		repo.GetStargazersCount(), repo.GetOpenIssuesCount())
	if desc := strings.TrimSpace(repo.GetDescription()); desc != "" {
		b.WriteString("\n")
		b.WriteString(desc)
	}
	return b.String(), nil
}

func decodeInto(args []string, out []byte, v any) error {
	if err := json.Unmarshal(out, v); err != nil {
		return &Error{
			Args:     args,
			Err:      fmt.Errorf("decoding gh output: %w", err),
			category: CategoryMalformed,
		}
	}
	return nil
}

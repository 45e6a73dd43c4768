// Package integration contains end-to-end tests for rapid-mcp.
//
// These tests build the rapid-mcp binary and drive it over real pipes,
// verifying the stdio protocol against the shipped command catalog: framing,
// the tools/list golden descriptor, validation error ordering, and CLI exit
// codes.
package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repoRoot returns the rapid-mcp repository root directory.
func repoRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	// test/integration/serve_test.go -> repo root
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

// buildBinary compiles rapid-mcp into a temp directory.
func buildBinary(t *testing.T) string {
	t.Helper()
	binary := filepath.Join(t.TempDir(), "rapid-mcp-test")
	cmd := exec.Command("go", "build", "-o", binary, "./cmd/rapid-mcp") //nolint:gosec // test helper
	cmd.Dir = repoRoot(t)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "go build failed:\n%s", out)
	return binary
}

// catalogDir returns the shipped command catalog.
func catalogDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(repoRoot(t), "commands")
	_, err := os.Stat(dir)
	require.NoError(t, err, "shipped catalog not found")
	return dir
}

// goldenFile returns the path to a named golden file.
func goldenFile(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(repoRoot(t), "testdata", "golden", name)
}

// envelope is the decoded shape of one response line.
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"error"`
}

// runSession pipes request lines into `rapid-mcp serve` against the shipped
// catalog and returns one decoded envelope per response line. env, when
// non-nil, replaces the subprocess environment.
func runSession(t *testing.T, binary string, env []string, lines ...string) []envelope {
	t.Helper()

	cmd := exec.Command(binary, "serve", "--commands", catalogDir(t), "--quiet") //nolint:gosec // test helper
	if env != nil {
		cmd.Env = env
	}
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "serve failed:\n%s", stderr.String())

	raw := strings.TrimSpace(stdout.String())
	if raw == "" {
		return nil
	}
	var envelopes []envelope
	for _, line := range strings.Split(raw, "\n") {
		var e envelope
		require.NoError(t, json.Unmarshal([]byte(line), &e), "invalid response line: %s", line)
		envelopes = append(envelopes, e)
	}
	return envelopes
}

func TestServe_Handshake(t *testing.T) {
	binary := buildBinary(t)

	responses := runSession(t, binary, nil,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"it","version":"0"}}}`,
	)
	require.Len(t, responses, 1)

	resp := responses[0]
	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Equal(t, "1", string(resp.ID))
	require.Nil(t, resp.Error)

	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
	assert.Equal(t, "rapid-mcp-server", result.ServerInfo.Name)
}

func TestServe_ToolsListGolden(t *testing.T) {
	binary := buildBinary(t)

	responses := runSession(t, binary, nil,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
	)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	var result struct {
		Tools json.RawMessage `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(responses[0].Result, &result))

	golden, err := os.ReadFile(goldenFile(t, "tools.json")) //nolint:gosec // test fixture
	require.NoError(t, err, "reading golden file")

	assert.JSONEq(t, string(golden), string(result.Tools))
}

func TestServe_CallRendersPrompt(t *testing.T) {
	binary := buildBinary(t)

	responses := runSession(t, binary, nil,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"sanity-check","arguments":{}}}`,
	)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(responses[0].Result, &result))
	require.Len(t, result.Content, 1, "prompt-only command should produce one content block")
	assert.Equal(t, "text", result.Content[0].Type)
	assert.Contains(t, result.Content[0].Text, "scoped to: everything")
	assert.Contains(t, result.Content[0].Text, "at most 5 findings")
}

func TestServe_ValidationErrorsOrdered(t *testing.T) {
	binary := buildBinary(t)

	responses := runSession(t, binary, nil,
		`{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"create-issue","arguments":{"bogus":1,"labels":"not-a-list","priority":"p9"}}}`,
	)
	require.Len(t, responses, 1)

	resp := responses[0]
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, `invalid arguments for tool "create-issue"`)

	var data struct {
		ValidationErrors []struct {
			Field string `json:"field"`
			Type  string `json:"error_type"`
		} `json:"validation_errors"`
	}
	require.NoError(t, json.Unmarshal(resp.Error.Data, &data))

	want := []struct{ field, kind string }{
		{"title", "missing_required"},
		{"body", "missing_required"},
		{"bogus", "unknown_parameter"},
		{"labels", "type_mismatch"},
		{"priority", "constraint_violation"},
	}
	require.Len(t, data.ValidationErrors, len(want), "errors: %+v", data.ValidationErrors)
	for i, w := range want {
		assert.Equal(t, w.field, data.ValidationErrors[i].Field, "error %d field", i)
		assert.Equal(t, w.kind, data.ValidationErrors[i].Type, "error %d type", i)
	}
}

func TestServe_NotificationsProduceNoOutput(t *testing.T) {
	binary := buildBinary(t)

	responses := runSession(t, binary, nil,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"no-such-tool"}}`,
	)
	assert.Empty(t, responses, "notifications must never be answered")
}

func TestServe_ParseErrorRecoversID(t *testing.T) {
	binary := buildBinary(t)

	// Valid JSON object, invalid request shape: the id is still usable.
	responses := runSession(t, binary, nil,
		`{"id":7,"method":123}`,
	)
	require.Len(t, responses, 1)

	resp := responses[0]
	assert.Equal(t, "7", string(resp.ID))
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32700, resp.Error.Code)
}

func TestServe_UnknownTool(t *testing.T) {
	binary := buildBinary(t)

	responses := runSession(t, binary, nil,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"nope"}}`,
	)
	require.Len(t, responses, 1)

	resp := responses[0]
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "tool not found: nope")
}

func TestServe_GhExecutorMissing(t *testing.T) {
	binary := buildBinary(t)

	// An empty PATH makes the gh binary unresolvable, so the executor
	// fails before running anything.
	env := []string{"PATH=" + t.TempDir(), "HOME=" + t.TempDir()}
	responses := runSession(t, binary, env,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"gh-work","arguments":{"issue_number":1}}}`,
	)
	require.Len(t, responses, 1)

	resp := responses[0]
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32603, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, `tool "gh-work" execution failed`)

	var data struct {
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal(resp.Error.Data, &data))
	assert.Equal(t, "not_found", data.Category)
}

func TestServe_CleanEOF(t *testing.T) {
	binary := buildBinary(t)

	cmd := exec.Command(binary, "serve", "--commands", catalogDir(t), "--quiet") //nolint:gosec // test helper
	cmd.Stdin = strings.NewReader("")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "EOF should be a clean shutdown:\n%s", out)
}

func TestValidate_ShippedCatalog(t *testing.T) {
	binary := buildBinary(t)

	// No config file in the repo root: the default commands_dir resolves
	// to the shipped catalog.
	cmd := exec.Command(binary, "validate", "--quiet") //nolint:gosec // test helper
	cmd.Dir = repoRoot(t)
	stdout, err := cmd.Output()
	require.NoError(t, err, "shipped catalog must validate")
	assert.Contains(t, string(stdout), "valid: 4 commands")
}

func TestValidate_ExitCodeOnErrors(t *testing.T) {
	binary := buildBinary(t)

	dir := t.TempDir()
	broken := "name: broken\ndescription: no prompt\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(broken), 0o644))

	cmd := exec.Command(binary, "validate", dir, "--quiet") //nolint:gosec // test helper
	err := cmd.Run()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "validate should fail on a broken catalog")
	assert.Equal(t, 2, exitErr.ExitCode())
}

func TestRender_MatchesServeOutput(t *testing.T) {
	binary := buildBinary(t)

	// Offline render and a served tools/call must produce the same prompt.
	render := exec.Command(binary, "render", "sanity-check", //nolint:gosec // test helper
		"--commands", catalogDir(t), "--quiet")
	rendered, err := render.Output()
	require.NoError(t, err, "render failed")

	responses := runSession(t, binary, nil,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"sanity-check","arguments":{}}}`,
	)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(responses[0].Result, &result))
	require.Len(t, result.Content, 1)

	assert.Equal(t, strings.TrimSpace(string(rendered)), strings.TrimSpace(result.Content[0].Text))
}

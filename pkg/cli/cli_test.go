package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersFixture = `
version: "1"
cases:
  - name: get-user
    times: 1
    match:
      method: GET
      uri: https://api.example.com/users/7
    response:
      status: 200
      json: {id: 7, name: ada}
  - name: create-user
    match:
      method: POST
      uri: https://api.example.com/users
    response:
      status: 201
      body: created
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestValidate_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	code, stdout, stderr := execute(t, "validate", path)
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Fixtures are valid: 2 case(s) in 1 file(s).")
}

func TestValidate_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/users.yaml", usersFixture)
	writeFile(t, dir, "b/more.yaml", usersFixture)

	code, stdout, stderr := execute(t, "validate", "--verbose", filepath.Join(dir, "**", "*.yaml"))
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Loaded "+filepath.Join(dir, "a", "users.yaml"))
	assert.Contains(t, stdout, "4 case(s) in 2 file(s)")
}

func TestValidate_InvalidPredicate(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", `
cases:
  - name: broken
    match:
      uriRegex: "("
    response:
      status: 200
`)

	code, stdout, _ := execute(t, "validate", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Validation failed:")
	assert.Contains(t, stdout, "cases[0] (broken)")
}

func TestValidate_InvalidSchemaIsAnError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", `
cases:
  - response:
      status: 700
`)

	code, stdout, stderr := execute(t, "validate", path)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: ")
	assert.Contains(t, stderr, "cases[0].response.status")
}

func TestValidate_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	code, stdout, _ := execute(t, "validate", "--json", path)
	require.Equal(t, 0, code)

	var out ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.Valid)
	assert.Equal(t, 2, out.Cases)
	assert.Equal(t, []string{path}, out.Files)
}

func TestList_Table(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	code, stdout, stderr := execute(t, "list", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "INDEX")
	assert.Contains(t, stdout, "get-user")
	assert.Contains(t, stdout, "times(1)")
	assert.Contains(t, stdout, "method: GET; uri: https://api.example.com/users/7")
	assert.Contains(t, stdout, "create-user")
	assert.Contains(t, stdout, "any")
}

func TestList_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	code, stdout, _ := execute(t, "list", "--json", path)
	require.Equal(t, 0, code)

	var cases []CaseSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &cases))
	require.Len(t, cases, 2)
	assert.Equal(t, 1, cases[1].Index)
	assert.Equal(t, "create-user", cases[1].Name)
	assert.Equal(t, []string{"method: POST", "uri: https://api.example.com/users"}, cases[1].Predicates)
}

func TestMatch_Hit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	code, stdout, stderr := execute(t, "match", path, "--uri", "https://api.example.com/users/7")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Matched case 0 (get-user)")
	assert.Contains(t, stdout, "HTTP 200 OK")
	assert.Contains(t, stdout, "Content-Type: application/json")
	assert.Contains(t, stdout, `{"id":7,"name":"ada"}`)
}

func TestMatch_PostWithBody(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	code, stdout, stderr := execute(t, "match", path,
		"-X", "POST", "--uri", "https://api.example.com/users",
		"-H", "Content-Type: application/json", "-d", `{"name":"ada"}`)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Matched case 1 (create-user)")
	assert.Contains(t, stdout, "HTTP 201 Created")
	assert.Contains(t, stdout, "created")
}

func TestMatch_DataFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "users.yaml", `
cases:
  - match:
      method: PUT
      body: hello
    response:
      body: ok
`)
	body := writeFile(t, dir, "body.txt", "hello")

	code, stdout, stderr := execute(t, "match", path, "-X", "PUT", "--uri", "https://x.test/", "--data-file", body)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Matched case 0\n")
}

func TestMatch_Miss(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	code, stdout, stderr := execute(t, "match", path, "-X", "DELETE", "--uri", "https://api.example.com/users/7")
	assert.Equal(t, 1, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "no case matched the request")
	assert.Contains(t, stdout, "the request did not match any of 2 cases")
}

func TestMatch_MissJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	code, stdout, _ := execute(t, "match", "--json", path, "-X", "DELETE", "--uri", "https://api.example.com/users/7")
	assert.Equal(t, 1, code)

	var out MatchOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.False(t, out.Matched)
	assert.Equal(t, -1, out.Case)
	require.Len(t, out.NearMisses, 2)
	assert.Equal(t, []string{"method"}, out.NearMisses[0].Attributes)
}

func TestMatch_Errors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing uri", []string{"match", path}, `required flag(s) "uri" not set`},
		{"bad header", []string{"match", path, "--uri", "https://x.test/", "-H", "nocolon"}, "invalid header"},
		{"bad method", []string{"match", path, "-X", "GET /", "--uri", "https://x.test/"}, "invalid method"},
		{"data and file", []string{"match", path, "--uri", "https://x.test/", "-d", "a", "--data-file", "b"}, "mutually exclusive"},
		{"unknown report level", []string{"match", "--report", "loud", path, "--uri", "https://x.test/"}, "loud"},
		{"missing fixture", []string{"match", filepath.Join(t.TempDir(), "nope.yaml"), "--uri", "https://x.test/"}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestVerify_Satisfied(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "users.yaml", usersFixture)
	script := writeFile(t, dir, "requests.yaml", `
requests:
  - uri: https://api.example.com/users/7
  - method: POST
    uri: https://api.example.com/users
    json: {name: ada}
`)

	code, stdout, stderr := execute(t, "verify", path, "--requests", script)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "1. GET https://api.example.com/users/7 -> case 0 (get-user): 200")
	assert.Contains(t, stdout, "2. POST https://api.example.com/users -> case 1 (create-user): 201")
	assert.Contains(t, stdout, "All 2 request(s) matched")
}

func TestVerify_CountNotMet(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "users.yaml", usersFixture)
	script := writeFile(t, dir, "requests.yaml", `
requests:
  - method: POST
    uri: https://api.example.com/users
`)

	code, stdout, _ := execute(t, "verify", path, "-r", script)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "checkpoint failed")
	assert.Contains(t, stdout, "expected 1, got 0")
}

func TestVerify_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "users.yaml", usersFixture)
	script := writeFile(t, dir, "requests.json", `{"requests": [
		{"uri": "https://api.example.com/users/7"},
		{"uri": "https://api.example.com/users/7"}
	]}`)

	code, stdout, _ := execute(t, "verify", "--json", path, "-r", script)
	assert.Equal(t, 1, code)

	var out VerifyOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.False(t, out.Satisfied)
	require.Len(t, out.Requests, 2)
	assert.True(t, out.Requests[0].Matched)
	assert.False(t, out.Requests[1].Matched, "get-user is exhausted after one call")
	assert.Empty(t, out.Violations)
}

func TestVerify_InvalidScript(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "users.yaml", usersFixture)
	script := writeFile(t, dir, "requests.yaml", "requests: []\n")

	code, _, stderr := execute(t, "verify", path, "-r", script)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid requests file")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "mockconnector ")
	assert.Contains(t, stdout, runtime.Version())

	code, stdout, _ = execute(t, "version", "--json")
	require.Equal(t, 0, code)
	var out VersionOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, runtime.GOOS, out.OS)
}

func TestDebugLogging(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)

	code, _, stderr := execute(t, "--log-level", "debug", "--log-format", "json", "match", path, "--uri", "https://api.example.com/users/7")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, `"msg":"request dispatched"`)
}

func TestReportLevelLogsMisses(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersFixture)
	args := []string{"match", path, "-X", "DELETE", "--uri", "https://api.example.com/users/7"}

	code, _, stderr := execute(t, args...)
	assert.Equal(t, 1, code)
	assert.Empty(t, stderr, "connector diagnostics are off by default")

	code, _, stderr = execute(t, append([]string{"--report", "missing", "--log-level", "warn"}, args...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no case matched the request")
	assert.Contains(t, stderr, "level=WARN")
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/dx/internal/config"
	"github.com/fentz26/dx/internal/gateway"
	"github.com/fentz26/dx/internal/ident"
)

var testPayloads = map[string]string{
	"file-AAAA": `{"id":"file-AAAA","class":"file","name":"a.txt","state":"closed","project":"project-P1","size":2048}`,
	"job-BBBB":  `{"id":"job-BBBB","class":"job","state":"done","created":1700000000000,"project":"project-P1"}`,
}

// useGateway swaps in an in-memory gateway for one test and counts calls.
func useGateway(t *testing.T, fn func(id ident.ObjectID) (*gateway.Response, error)) *int64 {
	t.Helper()
	var calls int64
	orig := newGateway
	newGateway = func(env config.Env, logger *slog.Logger, opts ...gateway.Option) gateway.Gateway {
		return gateway.Func(func(ctx context.Context, id ident.ObjectID) (*gateway.Response, error) {
			atomic.AddInt64(&calls, 1)
			return fn(id)
		})
	}
	t.Cleanup(func() { newGateway = orig })
	return &calls
}

func servePayloads(id ident.ObjectID) (*gateway.Response, error) {
	body, ok := testPayloads[id.Unscoped().String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", gateway.ErrNotFound, id)
	}
	return &gateway.Response{Payload: []byte(body), Status: 200, RequestID: "req-" + id.String()}, nil
}

// loggedIn returns a config dir holding a session.
func loggedIn(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"DX_AUTH_TOKEN", "DX_APISERVER_HOST", "DX_APISERVER_PORT", "DX_APISERVER_PROTOCOL", "DX_AUTH_TOKEN_TYPE", "DX_PROJECT_CONTEXT_ID"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	env := config.DefaultEnv()
	env.AuthToken = "secret"
	require.NoError(t, config.SaveEnv(dir, env))
	return dir
}

func execute(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestDescribe_MixedBatch(t *testing.T) {
	dir := loggedIn(t)
	useGateway(t, servePayloads)

	code, stdout, stderr := execute("--config", dir, "describe", "file-AAAA", "bogus-id", "job-BBBB")
	assert.Equal(t, 2, code)

	blocks := strings.Split(stdout, "\n\n")
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], "file-AAAA")
	assert.Contains(t, blocks[0], "2048 (2.0 KiB)")
	assert.Contains(t, blocks[1], "job-BBBB")
	assert.Contains(t, stderr, "bogus-id: ParseError: ")
}

func TestDescribe_JSON(t *testing.T) {
	dir := loggedIn(t)
	useGateway(t, servePayloads)

	code, stdout, _ := execute("--config", dir, "describe", "--json", "project-P1:file-AAAA")
	assert.Equal(t, 0, code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "file-AAAA", got["id"])
	assert.Equal(t, "file", got["class"])
	assert.Equal(t, "project-P1", got["context"])
}

func TestDescribe_DebugKeepsBody(t *testing.T) {
	dir := loggedIn(t)
	useGateway(t, servePayloads)

	_, plain, _ := execute("--config", dir, "describe", "--json", "job-BBBB")
	code, debug, stderr := execute("--config", dir, "describe", "--json", "-d", "job-BBBB")
	assert.Equal(t, 0, code)
	assert.Equal(t, plain, debug)
	assert.Contains(t, stderr, "-- debug job-BBBB")
	assert.Contains(t, stderr, "req-job-BBBB")
}

func TestDescribe_AllFailed(t *testing.T) {
	dir := loggedIn(t)
	useGateway(t, servePayloads)

	code, stdout, stderr := execute("--config", dir, "describe", "file-MISSING", "nope")
	assert.Equal(t, 3, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "file-MISSING: GatewayError: ")
	assert.Contains(t, stderr, "nope: ParseError: ")
}

func TestDescribe_UnauthorizedAborts(t *testing.T) {
	dir := loggedIn(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("describe:\n  workers: 1\n"), 0o600))
	calls := useGateway(t, func(id ident.ObjectID) (*gateway.Response, error) {
		return nil, fmt.Errorf("%w: token expired", gateway.ErrUnauthorized)
	})

	code, stdout, stderr := execute("--config", dir, "describe", "file-AAAA", "file-BBBB", "file-CCCC")
	assert.Equal(t, 4, code)
	assert.Empty(t, stdout)
	assert.Equal(t, int64(1), atomic.LoadInt64(calls))
	assert.Contains(t, stderr, "session error while describing file-AAAA")
}

func TestDescribe_NoSession(t *testing.T) {
	dir := loggedIn(t)
	require.NoError(t, os.Remove(filepath.Join(dir, config.EnvFile)))
	calls := useGateway(t, servePayloads)

	code, _, stderr := execute("--config", dir, "describe", "file-AAAA")
	assert.Equal(t, 4, code)
	assert.Contains(t, stderr, "not logged in")
	assert.Zero(t, atomic.LoadInt64(calls))
}

func TestDescribe_Usage(t *testing.T) {
	code, _, _ := execute("describe")
	assert.Equal(t, 1, code)

	code, _, stderr := execute("--config", t.TempDir(), "describe", "--try", "-1", "job-BBBB")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--try")
}

func TestDescribe_History(t *testing.T) {
	dir := loggedIn(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("history:\n  enabled: true\n"), 0o600))
	useGateway(t, servePayloads)

	code, _, _ := execute("--config", dir, "describe", "file-AAAA", "bogus-id")
	assert.Equal(t, 2, code)

	code, stdout, _ := execute("--config", dir, "history")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "file-AAAA")
	assert.Contains(t, stdout, "ParseError")

	code, stdout, _ = execute("--config", dir, "history", "--clear")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Removed 2 entries")
}

func TestHistory_NotEnabled(t *testing.T) {
	code, stdout, _ := execute("--config", t.TempDir(), "history")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "No history recorded")
}

func TestSession_LoginEnvLogout(t *testing.T) {
	dir := loggedIn(t)
	require.NoError(t, os.Remove(filepath.Join(dir, config.EnvFile)))

	code, stdout, _ := execute("--config", dir, "login", "--token", "tok", "--host", "localhost", "--port", "8124", "--protocol", "http", "--user", "alice")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "http://localhost:8124")

	code, stdout, _ = execute("--config", dir, "env")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "localhost")
	assert.Contains(t, stdout, "alice")

	code, _, _ = execute("--config", dir, "logout")
	assert.Equal(t, 0, code)

	_, stdout, _ = execute("--config", dir, "env")
	assert.Contains(t, stdout, "(not logged in)")
}

func TestLogin_RequiresToken(t *testing.T) {
	code, _, stderr := execute("--config", t.TempDir(), "login")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "token")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute("version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "dx version dev")
}

func TestDescribe_JSONObjectsAreSeparated(t *testing.T) {
	dir := loggedIn(t)
	useGateway(t, servePayloads)

	code, stdout, _ := execute("--config", dir, "describe", "--json", "file-AAAA", "job-BBBB")
	assert.Equal(t, 0, code)

	parts := strings.Split(stdout, "\n\n")
	require.Len(t, parts, 2)
	for i, want := range []string{"file-AAAA", "job-BBBB"} {
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(parts[i]), &got))
		assert.Equal(t, want, got["id"])
	}
}

func TestDescribe_UnauthorizedMidBatch(t *testing.T) {
	dir := loggedIn(t)
	useGateway(t, func(id ident.ObjectID) (*gateway.Response, error) {
		if id.LocalID() == "BBBB" {
			return nil, fmt.Errorf("%w: token expired", gateway.ErrUnauthorized)
		}
		return servePayloads(id)
	})

	code, stdout, stderr := execute("--config", dir, "describe", "file-AAAA", "job-BBBB", "file-AAAA")
	assert.Equal(t, 4, code)
	assert.Equal(t, 1, strings.Count(stdout, "file-AAAA"))
	assert.Contains(t, stderr, "session error while describing job-BBBB")
	assert.Contains(t, stderr, "file-AAAA: skipped")
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	code, stdout, _ := execute("--config", dir, "config", "init", "--history")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, config.SettingsFile)

	settings, err := config.LoadSettings(filepath.Join(dir, config.SettingsFile))
	require.NoError(t, err)
	assert.True(t, settings.History.Enabled)
	assert.Equal(t, 4, settings.Describe.Workers)

	code, _, stderr := execute("--config", dir, "config", "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already exists")

	code, _, _ = execute("--config", dir, "config", "init", "--force")
	assert.Equal(t, 0, code)
	settings, err = config.LoadSettings(filepath.Join(dir, config.SettingsFile))
	require.NoError(t, err)
	assert.False(t, settings.History.Enabled)
}

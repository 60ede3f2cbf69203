package auth

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/dx/internal/config"
)

func unsetTokenEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DX_AUTH_TOKEN", "DX_AUTH_TOKEN_TYPE", "DX_APISERVER_HOST", "DX_APISERVER_PORT", "DX_APISERVER_PROTOCOL", "DX_PROJECT_CONTEXT_ID"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestManager_LoginLogout(t *testing.T) {
	unsetTokenEnv(t)
	dir := t.TempDir()

	m, err := NewManager(dir)
	require.NoError(t, err)
	assert.False(t, m.IsAuthenticated())

	_, err = m.RequireSession()
	assert.True(t, errors.Is(err, config.ErrNoSession))

	env, err := m.Login(LoginOptions{Token: " tok ", Host: "localhost", Port: 8124, Protocol: "http", Project: "project-P1"})
	require.NoError(t, err)
	assert.Equal(t, "tok", env.AuthToken)
	assert.Equal(t, "Bearer", env.AuthTokenType)
	assert.Equal(t, "http://localhost:8124", env.APIServerURL())
	assert.True(t, m.IsAuthenticated())

	// A fresh manager sees the saved session.
	again, err := NewManager(dir)
	require.NoError(t, err)
	got, err := again.RequireSession()
	require.NoError(t, err)
	assert.Equal(t, "project-P1", got.ProjectContextID)

	require.NoError(t, again.Logout())
	assert.False(t, again.IsAuthenticated())

	after, err := NewManager(dir)
	require.NoError(t, err)
	assert.False(t, after.IsAuthenticated())
	assert.Equal(t, "localhost", after.GetEnv().APIServerHost)
}

func TestManager_LoginValidation(t *testing.T) {
	unsetTokenEnv(t)
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = m.Login(LoginOptions{})
	assert.Error(t, err)

	_, err = m.Login(LoginOptions{Token: "t", Project: "file-F1"})
	assert.Error(t, err)

	_, err = m.Login(LoginOptions{Token: "t", Project: "nonsense"})
	assert.Error(t, err)
	assert.False(t, m.IsAuthenticated())
}

func TestManager_EnvTokenOverride(t *testing.T) {
	unsetTokenEnv(t)
	t.Setenv("DX_AUTH_TOKEN", "from-env")
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	env, err := m.RequireSession()
	require.NoError(t, err)
	assert.Equal(t, "from-env", env.AuthToken)
}

func TestManager_OverridesAreNotSaved(t *testing.T) {
	unsetTokenEnv(t)
	t.Setenv("DX_APISERVER_HOST", "override.example")
	t.Setenv("DX_PROJECT_CONTEXT_ID", "project-OVR")
	dir := t.TempDir()

	m, err := NewManager(dir)
	require.NoError(t, err)
	env, err := m.Login(LoginOptions{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "override.example", env.APIServerHost)
	assert.Equal(t, "project-OVR", env.ProjectContextID)

	stored, err := config.LoadEnvFile(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultHost, stored.APIServerHost)
	assert.Empty(t, stored.ProjectContextID)
	assert.Equal(t, "tok", stored.AuthToken)

	require.NoError(t, m.Logout())
	stored, err = config.LoadEnvFile(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultHost, stored.APIServerHost)
	assert.Empty(t, stored.AuthToken)
}

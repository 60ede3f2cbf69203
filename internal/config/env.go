// Package config loads the session environment (dx_env.json) and the
// client settings (dx.yaml) from the user's configuration directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaypipes/envutil"
	"github.com/tidwall/jsonc"
)

const (
	// EnvFile is the session environment file name.
	EnvFile = "dx_env.json"
	// SettingsFile is the client settings file name.
	SettingsFile = "dx.yaml"

	DefaultProtocol  = "https"
	DefaultHost      = "api.dnanexus.com"
	DefaultPort      = 443
	DefaultTokenType = "Bearer"
)

// ErrNoSession is returned when no usable session environment exists.
var ErrNoSession = errors.New("not logged in")

// Env is the session environment shared with the other platform tools.
type Env struct {
	APIServerProtocol  string `json:"apiserver_protocol"`
	Username           string `json:"username"`
	CLIWorkingDir      string `json:"cli_wd"`
	APIServerHost      string `json:"apiserver_host"`
	ProjectContextID   string `json:"project_context_id"`
	ProjectContextName string `json:"project_context_name"`
	APIServerPort      int    `json:"apiserver_port"`
	AuthTokenType      string `json:"auth_token_type"`
	AuthToken          string `json:"auth_token"`
}

// DefaultEnv returns an environment for the public API server with no token.
func DefaultEnv() *Env {
	return &Env{
		APIServerProtocol: DefaultProtocol,
		CLIWorkingDir:     "/",
		APIServerHost:     DefaultHost,
		APIServerPort:     DefaultPort,
		AuthTokenType:     DefaultTokenType,
	}
}

// Dir returns the configuration directory: $DX_USER_CONF_DIR, or
// ~/.dnanexus_config.
func Dir() (string, error) {
	if dir := os.Getenv("DX_USER_CONF_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot find $DX_USER_CONF_DIR or $HOME: %w", err)
	}
	return filepath.Join(home, ".dnanexus_config"), nil
}

// LoadEnv reads dir/dx_env.json and applies DX_* environment overrides. A
// missing file yields the defaults plus overrides. Comments and trailing
// commas are accepted.
func LoadEnv(dir string) (*Env, error) {
	env, err := LoadEnvFile(dir)
	if err != nil {
		return nil, err
	}
	env.ApplyOverrides()
	return env, nil
}

// LoadEnvFile reads dir/dx_env.json without applying overrides. This is the
// form to modify and pass back to SaveEnv.
func LoadEnvFile(dir string) (*Env, error) {
	env := DefaultEnv()

	data, err := os.ReadFile(filepath.Join(dir, EnvFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(jsonc.ToJSON(data), env); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvFile, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading %s: %w", EnvFile, err)
	}
	return env, nil
}

// ApplyOverrides lets DX_* variables take precedence over the file.
func (e *Env) ApplyOverrides() {
	e.APIServerHost = envutil.WithDefault("DX_APISERVER_HOST", e.APIServerHost)
	e.APIServerPort = envutil.WithDefaultInt("DX_APISERVER_PORT", e.APIServerPort)
	e.APIServerProtocol = envutil.WithDefault("DX_APISERVER_PROTOCOL", e.APIServerProtocol)
	e.AuthToken = envutil.WithDefault("DX_AUTH_TOKEN", e.AuthToken)
	e.AuthTokenType = envutil.WithDefault("DX_AUTH_TOKEN_TYPE", e.AuthTokenType)
	e.ProjectContextID = envutil.WithDefault("DX_PROJECT_CONTEXT_ID", e.ProjectContextID)
}

// SaveEnv writes env to dir/dx_env.json, creating dir if needed.
func SaveEnv(dir string, env *Env) error {
	if env == nil {
		return fmt.Errorf("env cannot be nil")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", EnvFile, err)
	}
	if err := os.WriteFile(filepath.Join(dir, EnvFile), append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", EnvFile, err)
	}
	return nil
}

// Authenticated reports whether the environment holds a token.
func (e *Env) Authenticated() bool {
	return e.AuthToken != ""
}

// APIServerURL returns the base URL of the API server.
func (e *Env) APIServerURL() string {
	protocol := e.APIServerProtocol
	if protocol == "" {
		protocol = DefaultProtocol
	}
	host := e.APIServerHost
	if host == "" {
		host = DefaultHost
	}
	port := e.APIServerPort
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s://%s:%d", protocol, host, port)
}

// Package auth manages the dx session stored in dx_env.json.
package auth

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fentz26/dx/internal/config"
	"github.com/fentz26/dx/internal/ident"
)

// LoginOptions describes a new session. Empty fields keep their current
// values.
type LoginOptions struct {
	Token     string
	TokenType string
	Host      string
	Port      int
	Protocol  string
	Project   string
	Username  string
}

// Manager handles session operations for one configuration directory.
type Manager struct {
	configDir string
	// stored is dx_env.json as on disk; DX_* overrides are never saved.
	stored *config.Env
	mu     sync.RWMutex
}

// NewManager creates a session manager for configDir.
func NewManager(configDir string) (*Manager, error) {
	stored, err := config.LoadEnvFile(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &Manager{configDir: configDir, stored: stored}, nil
}

// IsAuthenticated checks if a token is available.
func (m *Manager) IsAuthenticated() bool {
	env := m.GetEnv()
	return env.Authenticated()
}

// GetEnv returns the effective session environment, with DX_* overrides
// applied.
func (m *Manager) GetEnv() config.Env {
	m.mu.RLock()
	env := *m.stored
	m.mu.RUnlock()
	env.ApplyOverrides()
	return env
}

// RequireSession returns the environment, or config.ErrNoSession when no
// token is available.
func (m *Manager) RequireSession() (config.Env, error) {
	env := m.GetEnv()
	if !env.Authenticated() {
		return env, fmt.Errorf("%w: run 'dx login --token <token>' or set DX_AUTH_TOKEN", config.ErrNoSession)
	}
	return env, nil
}

// Login stores a pre-issued API token and the server it belongs to, and
// returns the effective environment.
func (m *Manager) Login(opts LoginOptions) (config.Env, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return config.Env{}, fmt.Errorf("a token is required")
	}
	if opts.Project != "" {
		id, err := ident.Parse(opts.Project)
		if err != nil {
			return config.Env{}, fmt.Errorf("invalid project: %w", err)
		}
		if id.Class() != ident.ClassProject {
			return config.Env{}, fmt.Errorf("invalid project: %s is a %s", opts.Project, id.Class())
		}
	}

	m.mu.Lock()
	env := *m.stored
	env.AuthToken = token
	env.AuthTokenType = config.DefaultTokenType
	if opts.TokenType != "" {
		env.AuthTokenType = opts.TokenType
	}
	if opts.Host != "" {
		env.APIServerHost = opts.Host
	}
	if opts.Port != 0 {
		env.APIServerPort = opts.Port
	}
	if opts.Protocol != "" {
		env.APIServerProtocol = opts.Protocol
	}
	if opts.Project != "" {
		env.ProjectContextID = opts.Project
	}
	if opts.Username != "" {
		env.Username = opts.Username
	}
	err := m.save(&env)
	m.mu.Unlock()
	if err != nil {
		return config.Env{}, fmt.Errorf("failed to save session: %w", err)
	}
	return m.GetEnv(), nil
}

// Logout clears the stored token. Server, project and user are kept so the
// next login only needs a token.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	env := *m.stored
	env.AuthToken = ""
	env.AuthTokenType = ""
	if err := m.save(&env); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// save writes env and makes it the stored environment. Callers hold mu.
func (m *Manager) save(env *config.Env) error {
	if err := config.SaveEnv(m.configDir, env); err != nil {
		return err
	}
	m.stored = env
	return nil
}

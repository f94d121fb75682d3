package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.NotZero(t, cfg.Port, "a free port is picked when none is configured")
	assert.Equal(t, "claude", cfg.DefaultEngine)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "claude", cfg.EngineCommand("claude"))
	assert.Equal(t, "iflow", cfg.EngineCommand("iflow"))
}

func TestLoadOverrides(t *testing.T) {
	v := New()
	v.Set("port", 9321)
	v.Set("host", "0.0.0.0")
	v.Set("engines.claude.command", "/opt/bin/claude")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 9321, cfg.Port)
	assert.Equal(t, "0.0.0.0:9321", cfg.Addr())
	assert.Equal(t, "http://0.0.0.0:9321", cfg.URL())
	assert.Equal(t, "/opt/bin/claude", cfg.EngineCommand("claude"))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("POLARIS_PORT", "9455")
	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 9455, cfg.Port)
}

func TestEngineCommandFallback(t *testing.T) {
	cfg := &Config{Engines: map[string]EngineConfig{}}
	assert.Equal(t, "codex", cfg.EngineCommand("codex"))
}

func TestWorkspaceIsAbsolute(t *testing.T) {
	v := New()
	v.Set("workspace", ".")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.True(t, len(cfg.Workspace) > 0 && cfg.Workspace[0] == '/', "workspace resolved to absolute path")
}

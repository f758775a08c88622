package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.Equal(t, "synthetic", cfg.Provider.Mode)
	assert.Equal(t, "stub", cfg.Compression.Engine)
	assert.Equal(t, 4, cfg.Runner.Workers)
	assert.Equal(t, 500, cfg.Runner.MaxFrames)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, time.Minute, cfg.RunBudget())
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090

[provider]
mode = "local"
root = "/data/fixtures"

[runner]
budget = "30s"
workers = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "local", cfg.Provider.Mode)
	assert.Equal(t, "/data/fixtures", cfg.Provider.Root)
	assert.Equal(t, 30*time.Second, cfg.RunBudget())
	assert.Equal(t, 2, cfg.Runner.Workers)
	// Untouched sections keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "stub", cfg.Compression.Engine)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9090\n"), 0o644))

	t.Setenv("MG_SERVER_PORT", "7070")
	t.Setenv("MG_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEmptyEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"warn\"\n"), 0o644))

	t.Setenv("MG_LOGGING_LEVEL", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestDatabaseURLConvenienceVar(t *testing.T) {
	t.Setenv("MG_DATABASE_URL", "postgres://mg:mg@localhost:5432/mechgen")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://mg:mg@localhost:5432/mechgen", cfg.Database.URL)
}

func TestRunBudgetFallback(t *testing.T) {
	cfg := &Config{Runner: RunnerConfig{Budget: "not-a-duration"}}
	assert.Equal(t, time.Minute, cfg.RunBudget())

	cfg.Runner.Budget = "-5s"
	assert.Equal(t, time.Minute, cfg.RunBudget())

	cfg.Runner.Budget = "90s"
	assert.Equal(t, 90*time.Second, cfg.RunBudget())
}

func TestFrameDelay(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, time.Duration(0), cfg.FrameDelay())

	cfg.Compression.FrameDelay = "250ms"
	assert.Equal(t, 250*time.Millisecond, cfg.FrameDelay())
}

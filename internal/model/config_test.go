package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "taskboard.db", cfg.Store.Path)
	assert.Equal(t, 1024, cfg.AI.MaxTokens)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "http://localhost:3000", cfg.Client.BaseURL)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  addr: ":8080"
store:
  path: /var/lib/taskboard/boards.db
redis:
  addr: localhost:6379
  ttl_sec: 60
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("TASKBOARD_SERVER_ADDR", ":9090")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr, "environment wins over the file")
	assert.Equal(t, "/var/lib/taskboard/boards.db", cfg.Store.Path)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 60, cfg.Redis.TTLSec)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Server.ShutdownTimeoutSec)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Store.Path = "/tmp/boards.db"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Log.File = "/tmp/tui.log"

	require.NoError(t, SaveConfig(path, cfg))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestPatchHelpers(t *testing.T) {
	col := "c1"
	assert.True(t, TaskPatch{}.IsEmpty())
	assert.True(t, TaskPatch{ColumnID: &col}.IsMove())
	assert.False(t, TaskPatch{Title: &col}.IsMove())
	assert.True(t, ProjectPatch{}.IsEmpty())
}

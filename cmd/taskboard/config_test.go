package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func TestWriteConfigKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard", "config.yaml")
	c, err := model.LoadConfig(path)
	require.NoError(t, err)
	c.Server.Addr = ":4000"

	require.NoError(t, writeConfig(path, c, false))

	c.Server.Addr = ":5000"
	err = writeConfig(path, c, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	reloaded, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":4000", reloaded.Server.Addr)

	require.NoError(t, writeConfig(path, c, true))
	reloaded, err = model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":5000", reloaded.Server.Addr)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

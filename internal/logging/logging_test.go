package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func TestNewDefaults(t *testing.T) {
	logger, closer, err := New(model.LogConfig{})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskboard.log")
	logger, closer, err := New(model.LogConfig{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	logger.WithField("task_id", "t1").Debug("moved")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task_id":"t1"`)
	assert.Contains(t, string(data), `"msg":"moved"`)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, _, err := New(model.LogConfig{Level: "loud"})
	assert.Error(t, err)

	_, _, err = New(model.LogConfig{Format: "xml"})
	assert.Error(t, err)
}

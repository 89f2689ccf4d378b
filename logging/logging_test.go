package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voxd/logging"
)

func TestNew_WritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "voxd.log")
	logger, err := logging.New(path, false)
	require.NoError(t, err)

	logger.Info("session started", zap.String("session_id", "session_abc123"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session started")
	assert.Contains(t, string(data), "session_abc123")
}

func TestNew_DebugLevel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "voxd.log")
	logger, err := logging.New(path, true)
	require.NoError(t, err)

	logger.Debug("classification result")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "classification result")
}

func TestNew_InfoSuppressesDebug(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "voxd.log")
	logger, err := logging.New(path, false)
	require.NoError(t, err)

	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_EmptyPathIsNop(t *testing.T) {
	t.Parallel()

	logger, err := logging.New("", true)
	require.NoError(t, err)
	assert.NotPanics(t, func() { logger.Info("discarded") })
}

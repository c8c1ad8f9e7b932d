package observability_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/corvidworks/automata/observability"
)

func TestLogger_rotateFileReceivesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger := observability.New("agent-1", observability.LogConfig{Level: "debug", RotateFile: path})

	logger.Info("hello", observability.FieldNode("n1"), observability.FieldReason("because"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "hello")
	assert.Contains(t, content, "agent-1")
	assert.Contains(t, content, "n1")
	assert.Contains(t, content, "because")
}

func TestLogger_SetLevel_suppressesBelowThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger := observability.New("agent-2", observability.LogConfig{Level: "warn", RotateFile: path})

	logger.Debug("should not appear")
	logger.Info("also should not appear")
	logger.Warn("this one should appear")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.NotContains(t, content, "should not appear")
	assert.Contains(t, content, "this one should appear")

	// SetLevel changes the level live, without rebuilding the core.
	logger.SetLevel("debug")
	logger.Debug("now visible")
	require.NoError(t, logger.Sync())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "now visible")
}

func TestLogger_formattedHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger := observability.New("agent-3", observability.LogConfig{Level: "debug", RotateFile: path})

	logger.Infof("count=%d", 42)
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "count=42")
}

func TestLogger_fieldHelpers(t *testing.T) {
	f := observability.FieldDurationMS(150)
	assert.Equal(t, zapcore.Int64Type, f.Type)
	assert.Equal(t, int64(150), f.Integer)
}

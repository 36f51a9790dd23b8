package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aledsdavies/ecsgen/pkgs/config"
)

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("ecsgen", config.LogConfig{Level: zapcore.WarnLevel}, &buf)

	log.Info("hidden")
	log.Warn("shown", zap.String("system", "MoveSystem"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "MoveSystem")
}

func TestFileOutputIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecsgen.log")
	log := New("ecsgen", config.LogConfig{Level: zapcore.DebugLevel, File: path}, nil)

	log.Debug("walked", zap.Int("nodes", 3))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "walked", entry["msg"])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "ecsgen", entry["logger"])
	assert.EqualValues(t, 3, entry["nodes"])
}

func TestNoOutputsIsNop(t *testing.T) {
	log := New("ecsgen", config.LogConfig{}, nil)
	assert.NotPanics(t, func() { log.Info("nothing") })
}

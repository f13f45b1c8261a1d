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

	"staredown/internal/config"
)

func TestJSONConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(config.LogConfig{Level: "info", JSON: true}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("room created", zap.String("room", "ABC123"))
	require.NoError(t, l.Close())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "room created", entry["msg"])
	assert.Equal(t, "ABC123", entry["room"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(config.LogConfig{Level: "warn"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Info("dropped")
	require.NoError(t, l.SetLevel("debug"))
	l.Debug("kept")
	_ = l.Sync()

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	l, err := build(config.LogConfig{Level: "info", Directory: dir, Filename: "test.log", MaxSizeMB: 1}, zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)

	l.Info("to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "staredown.yaml", `
server:
  addr: ":8080"
  allowed_origins: ["https://example.com"]
expiry:
  started_idle: 30m
  session_ttl: 90s
log:
  level: debug
  json: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Expiry.StartedIdle)
	assert.Equal(t, 90*time.Second, cfg.Expiry.SessionTTL)
	assert.Equal(t, time.Hour, cfg.Expiry.UnstartedIdle, "untouched fields keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 64, cfg.Push.PoolSize)
}

func TestLoadAcceptsJSON(t *testing.T) {
	path := writeFile(t, "staredown.json", `{"server": {"addr": ":9000"}, "push": {"pool_size": 8}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Push.PoolSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "server: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "invalid.yaml", "push:\n  pool_size: 0\n"))
	assert.ErrorContains(t, err, "pool_size")
}

func TestEmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

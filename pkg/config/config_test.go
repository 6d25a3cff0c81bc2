package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, 50, cfg.EventLogCapacity)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "godesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://trade.example.com
ws_url: wss://trade.example.com/ws/
event_log_capacity: 10
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://trade.example.com", cfg.APIBaseURL)
	assert.Equal(t, 10, cfg.EventLogCapacity)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("GODESK_API_URL", "http://env-wins:9000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env-wins:9000", cfg.APIBaseURL)
}

func TestValidateRejectsZeroCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "godesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("event_log_capacity: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

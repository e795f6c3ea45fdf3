package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodeboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "nodeboard:diagrams", cfg.Storage.Key)
	assert.Equal(t, 0.2, cfg.View.ZoomStep)
	assert.Equal(t, 16*time.Millisecond, cfg.View.FrameInterval)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: file
  path: /tmp/boards
log:
  level: debug
  development: true
view:
  zoom_step: 0.5
  frame_interval: 40ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/boards", cfg.Storage.Path)
	assert.Equal(t, "nodeboard:diagrams", cfg.Storage.Key, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, 0.5, cfg.View.ZoomStep)
	assert.Equal(t, 1.0, cfg.View.PixelRatio)
	assert.Equal(t, 40*time.Millisecond, cfg.View.FrameInterval)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "storage:\n  path: from-file.db\nlog:\n  level: warn\n")
	t.Setenv(EnvDB, "from-env.db")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogFile, "/tmp/nodeboard.log")
	t.Setenv(EnvZoomStep, "0.1")
	t.Setenv(EnvStorage, "Memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Storage.Path)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/tmp/nodeboard.log", cfg.Log.File)
	assert.Equal(t, 0.1, cfg.View.ZoomStep)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "malformed yaml", yaml: "storage: [nope"},
		{name: "unknown backend", yaml: "storage:\n  backend: s3\n"},
		{name: "unknown level", yaml: "log:\n  level: loud\n"},
		{name: "zoom step too large", yaml: "view:\n  zoom_step: 2\n"},
		{name: "zoom step zero", yaml: "view:\n  zoom_step: 0\n"},
		{name: "no path for sqlite", yaml: "storage:\n  path: \"\"\n"},
		{name: "empty key", yaml: "storage:\n  key: \"\"\n"},
		{name: "bad zoom env", env: map[string]string{EnvZoomStep: "fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeConfig(t, tt.yaml)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestMemoryBackendNeedsNoPath(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: memory\n  path: \"\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

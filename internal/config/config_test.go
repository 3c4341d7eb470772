package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "./templates", cfg.Templates.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Report.Cache)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := `
templates:
  dir: /srv/roadmaps
log:
  level: debug
  format: text
report:
  cache: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/roadmaps", cfg.Templates.Dir)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Report.Cache)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ROADMAP_TEMPLATES_DIR", "/env/roadmaps")
	t.Setenv("ROADMAP_LOG_LEVEL", "warn")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/env/roadmaps", cfg.Templates.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "log level", env: map[string]string{"ROADMAP_LOG_LEVEL": "loud"}},
		{name: "log format", env: map[string]string{"ROADMAP_LOG_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [oops"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Templates: TemplatesConfig{Dir: ""},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Templates.Dir = "./templates"
	assert.NoError(t, cfg.Validate())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mapforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

const validYAML = `
log:
  level: "debug"
  format: "json"
storage:
  driver: "sqlite"
  sqlite_path: "/tmp/slots.db"
server:
  addr: ":9090"
  read_timeout: "5s"
  max_upload_bytes: 1024
registry:
  path: "/etc/mapforge/registry.yaml"
`

func TestLoad_ValidYAML(t *testing.T) {
	t.Setenv("MAPFORGE_CONFIG", writeYAML(t, validYAML))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/slots.db", cfg.StorageOptions().SQLitePath)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "/etc/mapforge/registry.yaml", cfg.Registry.Path)
	assert.Empty(t, cfg.Rubrics.Path)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("MAPFORGE_CONFIG", writeYAML(t, validYAML))
	t.Setenv("MAPFORGE_LOG_LEVEL", "warn")
	t.Setenv("MAPFORGE_STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "dir", cfg.Storage.Driver)
	assert.Equal(t, "./mapforge-data", cfg.Storage.Dir)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Setenv("MAPFORGE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Log:     LogConfig{Level: "info", Format: "text"},
			Storage: StorageConfig{Driver: "dir", Dir: "data"},
			Server:  ServerConfig{Addr: ":8080", MaxUploadBytes: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"level case-insensitive", func(c *Config) { c.Log.Level = "DEBUG" }, true},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "redis" }, false},
		{"dir without path", func(c *Config) { c.Storage.Dir = "" }, false},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = "sqlite" }, false},
		{"memory", func(c *Config) { c.Storage.Driver = "memory"; c.Storage.Dir = "" }, true},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, false},
		{"zero upload", func(c *Config) { c.Server.MaxUploadBytes = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1e-8, cfg.Decompose.PSDTolerance)
	assert.Equal(t, 1e-8, cfg.Decompose.CoefficientTolerance)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("SYMDECOMP_ADDR", "")
	t.Setenv("SYMDECOMP_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("SYMDECOMP_ADDR", "")
	t.Setenv("SYMDECOMP_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "symdecomp.yaml")
	cfg := DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:9000"
	cfg.Decompose.PSDTolerance = 1e-6
	cfg.Logging.Level = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("SYMDECOMP_ADDR", "")
	t.Setenv("SYMDECOMP_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "symdecomp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decompose:\n  coefficient_tol: 0.001\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.001, cfg.Decompose.CoefficientTolerance)
	assert.Equal(t, 1e-8, cfg.Decompose.PSDTolerance)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SYMDECOMP_ADDR", ":7070")
	t.Setenv("SYMDECOMP_LOG_LEVEL", "WARN")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative psd tolerance", func(c *Config) { c.Decompose.PSDTolerance = -1 }, "psd_tol"},
		{"negative coefficient tolerance", func(c *Config) { c.Decompose.CoefficientTolerance = -1e-9 }, "coefficient_tol"},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "max_body_bytes"},
		{"bad duration", func(c *Config) { c.Server.WriteTimeout = "soon" }, "write_timeout"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5*time.Second, cfg.GetReadHeaderTimeout())
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeout())

	cfg.Server.IdleTimeout = ""
	assert.Equal(t, 60*time.Second, cfg.GetIdleTimeout())
}

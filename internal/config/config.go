package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all symdecomp configuration.
type Config struct {
	// HTTP tool server
	Server ServerConfig `yaml:"server"`

	// Decomposition defaults
	Decompose DecomposeConfig `yaml:"decompose"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures `symdecomp serve`.
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
	ReadTimeout       string `yaml:"read_timeout"`
	WriteTimeout      string `yaml:"write_timeout"`
	IdleTimeout       string `yaml:"idle_timeout"`
	ShutdownTimeout   string `yaml:"shutdown_timeout"`
}

// DecomposeConfig holds the default tolerances of the L2-norm recognizer.
type DecomposeConfig struct {
	PSDTolerance         float64 `yaml:"psd_tol"`
	CoefficientTolerance float64 `yaml:"coefficient_tol"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// ValidLogLevels lists the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			MaxBodyBytes:      1 << 20,
			ReadHeaderTimeout: "5s",
			ReadTimeout:       "15s",
			WriteTimeout:      "15s",
			IdleTimeout:       "60s",
			ShutdownTimeout:   "10s",
		},
		Decompose: DecomposeConfig{
			PSDTolerance:         1e-8,
			CoefficientTolerance: 1e-8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("SYMDECOMP_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("SYMDECOMP_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
}

// Validate checks tolerances, durations and the log level.
func (c *Config) Validate() error {
	if c.Decompose.PSDTolerance < 0 {
		return fmt.Errorf("decompose.psd_tol must be non-negative, got %g", c.Decompose.PSDTolerance)
	}
	if c.Decompose.CoefficientTolerance < 0 {
		return fmt.Errorf("decompose.coefficient_tol must be non-negative, got %g", c.Decompose.CoefficientTolerance)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	for name, d := range map[string]string{
		"read_header_timeout": c.Server.ReadHeaderTimeout,
		"read_timeout":        c.Server.ReadTimeout,
		"write_timeout":       c.Server.WriteTimeout,
		"idle_timeout":        c.Server.IdleTimeout,
		"shutdown_timeout":    c.Server.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("server.%s: %w", name, err)
		}
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	return nil
}

// duration parses s, falling back to def when s is empty or malformed.
func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

// GetReadHeaderTimeout returns server.read_header_timeout as a duration.
func (c *Config) GetReadHeaderTimeout() time.Duration {
	return duration(c.Server.ReadHeaderTimeout, 5*time.Second)
}

// GetReadTimeout returns server.read_timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return duration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns server.write_timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 15*time.Second)
}

// GetIdleTimeout returns server.idle_timeout as a duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return duration(c.Server.IdleTimeout, 60*time.Second)
}

// GetShutdownTimeout returns server.shutdown_timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, 10*time.Second)
}

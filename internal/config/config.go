// Package config assembles the client configuration from defaults, an
// optional YAML file, and environment overrides. Command-line flags are
// applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Lookups holds the reference list endpoints behind select fields. Empty
// entries are derived from the entry point during Normalize.
type Lookups struct {
	Teachers  string `yaml:"teachers"`
	Languages string `yaml:"languages"`
	UserTypes string `yaml:"usertypes"`
	Archives  string `yaml:"archives"`
}

// Config is the full client configuration.
type Config struct {
	// Entrypoint is the user list URL logins probe, e.g.
	// http://localhost:5000/exam_archive/api/users/.
	Entrypoint string  `yaml:"entrypoint"`
	Lookups    Lookups `yaml:"lookups"`

	// SessionFile is where remembered sessions persist between runs.
	SessionFile string `yaml:"session_file"`

	Renderer string `yaml:"renderer"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Entrypoint:  "http://localhost:5000/exam_archive/api/users/",
		SessionFile: defaultSessionFile(),
		Renderer:    "tui",
		LogLevel:    "info",
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hyperclient", "session.yaml")
}

// Load builds the configuration: defaults, then the YAML file at path when
// path is not empty, then environment overrides.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(getenv)
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if getenv == nil {
		return
	}
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Entrypoint, "HYPERCLIENT_ENTRYPOINT")
	set(&c.SessionFile, "HYPERCLIENT_SESSION_FILE")
	set(&c.Renderer, "HYPERCLIENT_RENDERER")
	set(&c.LogLevel, "HYPERCLIENT_LOG_LEVEL")
}

// Normalize validates the entry point and fills derived values. Lookup
// endpoints left empty become siblings of the users collection.
func (c *Config) Normalize() error {
	c.Entrypoint = strings.TrimSpace(c.Entrypoint)
	if c.Entrypoint == "" {
		return errors.New("config: entrypoint is required")
	}
	if !strings.HasSuffix(c.Entrypoint, "/") {
		c.Entrypoint += "/"
	}

	root := apiRoot(c.Entrypoint)
	fill := func(dst *string, slot string) {
		if *dst == "" {
			*dst = root + slot + "/"
		}
	}
	fill(&c.Lookups.Teachers, "teachers")
	fill(&c.Lookups.Languages, "languages")
	fill(&c.Lookups.UserTypes, "usertypes")
	fill(&c.Lookups.Archives, "archives")

	if c.Renderer == "" {
		c.Renderer = "tui"
	}
	return nil
}

// apiRoot strips the trailing collection segment from the entry point, so
// .../api/users/ yields .../api/.
func apiRoot(entrypoint string) string {
	trimmed := strings.TrimSuffix(entrypoint, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[:i+1]
	}
	return entrypoint
}

// Logger builds the process logger for the configured level. The debug
// level gets the development encoder, everything else production JSON.
func (c Config) Logger() (*zap.Logger, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return zap.NewDevelopment()
	case "", "info":
		return zap.NewProduction()
	default:
		level, err := zap.ParseAtomicLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("config: log level: %w", err)
		}
		zcfg := zap.NewProductionConfig()
		zcfg.Level = level
		return zcfg.Build()
	}
}

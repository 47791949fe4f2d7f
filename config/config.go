// Package config loads the server configuration from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ngfw-form/preset"
)

// Config is the server configuration.
type Config struct {
	Port int `yaml:"port"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel      string `yaml:"log_level"`
	DefaultDevice string `yaml:"default_device"`
	State         State  `yaml:"state"`
	Sessions      struct {
		// TTL closes sessions idle and disconnected for longer.
		TTL     time.Duration `yaml:"ttl"`
		Backlog int           `yaml:"backlog"`
	} `yaml:"sessions"`
	Sections []string `yaml:"sections"`
}

// State selects the store for persisted section states.
type State struct {
	// Backend is memory, file or sqlite.
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.Port = 8080
	c.LogLevel = "info"
	c.DefaultDevice = string(preset.Pro2)
	c.State = State{Backend: "file", Path: "/data/ui-state.json"}
	c.Sessions.TTL = 2 * time.Hour
	c.Sessions.Backlog = 512
	return c
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = p
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("DEFAULT_DEVICE"); v != "" {
		c.DefaultDevice = v
	}
	if v := getenv("STATE_BACKEND"); v != "" {
		c.State.Backend = v
	}
	if v := getenv("STATE_FILE"); v != "" {
		c.State.Path = v
	}
	return nil
}

// Validate checks values that would otherwise fail at first use.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, err := preset.ParseDevice(c.DefaultDevice); err != nil {
		return fmt.Errorf("default_device: %w", err)
	}
	switch c.State.Backend {
	case "memory":
	case "file", "sqlite":
		if c.State.Path == "" {
			return fmt.Errorf("state.path required for %s backend", c.State.Backend)
		}
	default:
		return fmt.Errorf("unknown state backend %q", c.State.Backend)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
}

// Logger builds the process logger.
func (c Config) Logger() *slog.Logger {
	lvl, _ := c.Level()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

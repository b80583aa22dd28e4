package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	configDir  = ".overlay"
	configFile = ".overlay/config.json"
)

// Config holds the persisted CLI settings.
type Config struct {
	TemplateBaseURL string `json:"template_base_url,omitempty"`
	TemplateDir     string `json:"template_dir,omitempty"`
	CacheDB         string `json:"cache_db,omitempty"`
	CloseDelayMS    int    `json:"close_delay_ms,omitempty"`
	LogLevel        string `json:"log_level,omitempty"`
	Width           int    `json:"width,omitempty"`
	Markdown        *bool  `json:"markdown,omitempty"`
}

// Keys lists the settable config keys in display order.
var Keys = []string{
	"template_base_url",
	"template_dir",
	"cache_db",
	"close_delay_ms",
	"log_level",
	"width",
	"markdown",
}

// Load reads the config from disk. A missing file yields an empty config.
func Load(baseDir string) (*Config, error) {
	configPath := filepath.Join(baseDir, configFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return &cfg, nil
}

// Save writes the config to disk
func Save(baseDir string, cfg *Config) error {
	configPath := filepath.Join(baseDir, configFile)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// CacheDBPath returns the cache database path, defaulting to a file in the
// config directory.
func (c *Config) CacheDBPath(baseDir string) string {
	if c.CacheDB == "" {
		return filepath.Join(baseDir, configDir, "templates.db")
	}
	if filepath.IsAbs(c.CacheDB) {
		return c.CacheDB
	}
	return filepath.Join(baseDir, c.CacheDB)
}

// TemplateRoot returns the local template directory, defaulting to baseDir.
func (c *Config) TemplateRoot(baseDir string) string {
	if c.TemplateDir == "" {
		return baseDir
	}
	if filepath.IsAbs(c.TemplateDir) {
		return c.TemplateDir
	}
	return filepath.Join(baseDir, c.TemplateDir)
}

// CloseDelay returns the configured close delay.
func (c *Config) CloseDelay() time.Duration {
	return time.Duration(c.CloseDelayMS) * time.Millisecond
}

// ElementWidth returns the element width, defaulting to 60.
func (c *Config) ElementWidth() int {
	if c.Width <= 0 {
		return 60
	}
	return c.Width
}

// MarkdownEnabled reports whether templates render as markdown (default true).
func (c *Config) MarkdownEnabled() bool {
	return c.Markdown == nil || *c.Markdown
}

// Get returns the string form of key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "template_base_url":
		return c.TemplateBaseURL, nil
	case "template_dir":
		return c.TemplateDir, nil
	case "cache_db":
		return c.CacheDB, nil
	case "close_delay_ms":
		return strconv.Itoa(c.CloseDelayMS), nil
	case "log_level":
		return c.LogLevel, nil
	case "width":
		return strconv.Itoa(c.Width), nil
	case "markdown":
		return strconv.FormatBool(c.MarkdownEnabled()), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set parses value into key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "template_base_url":
		c.TemplateBaseURL = value
	case "template_dir":
		c.TemplateDir = value
	case "cache_db":
		c.CacheDB = value
	case "log_level":
		switch value {
		case "debug", "info", "warn", "error", "":
			c.LogLevel = value
		default:
			return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", value)
		}
	case "close_delay_ms", "width":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q: want a non-negative integer", key, value)
		}
		if key == "width" {
			c.Width = n
		} else {
			c.CloseDelayMS = n
		}
	case "markdown":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid markdown %q: %w", value, err)
		}
		c.Markdown = &b
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Package config loads server configuration from an optional YAML file
// merged with environment variables. Environment values take precedence
// over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultPort      = 8000
	DefaultDBPath    = "/data/pkgsmith.db"
	DefaultCacheTTL  = 15 * time.Minute
	DefaultTransport = "http"
)

// Config represents the application configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// Transport selects the MCP transport: "http" or "stdio".
	Transport string

	// DBPath is the SQLite database location. Empty disables persistence.
	DBPath string

	// CacheTTL bounds how long registry responses are reused.
	CacheTTL time.Duration

	// GitHubToken authenticates GitHub API and GHCR requests (optional).
	GitHubToken string

	// MiseBin is the mise executable used for tool version lookups.
	MiseBin string
}

// fileConfig is the YAML shape of Config. Durations are strings so that
// values like "15m" parse; DBPath is a pointer so "db_path: \"\"" can
// disable persistence explicitly.
type fileConfig struct {
	Port        int     `yaml:"port"`
	Transport   string  `yaml:"transport"`
	DBPath      *string `yaml:"db_path"`
	CacheTTL    string  `yaml:"cache_ttl"`
	GitHubToken string  `yaml:"github_token"`
	MiseBin     string  `yaml:"mise_bin"`
}

// Load reads the YAML file at path (a missing file is not an error) and
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:      DefaultPort,
		Transport: DefaultTransport,
		DBPath:    DefaultDBPath,
		CacheTTL:  DefaultCacheTTL,
		MiseBin:   "mise",
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.Transport != "http" && cfg.Transport != "stdio" {
		return nil, fmt.Errorf("invalid transport %q: must be \"http\" or \"stdio\"", cfg.Transport)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.Port != 0 {
		c.Port = file.Port
	}
	if file.Transport != "" {
		c.Transport = file.Transport
	}
	if file.DBPath != nil {
		c.DBPath = *file.DBPath
	}
	if file.CacheTTL != "" {
		parsed, err := time.ParseDuration(file.CacheTTL)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid cache_ttl %q in %s", file.CacheTTL, path)
		}
		c.CacheTTL = parsed
	}
	if file.GitHubToken != "" {
		c.GitHubToken = file.GitHubToken
	}
	if file.MiseBin != "" {
		c.MiseBin = file.MiseBin
	}

	return nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			c.Port = parsed
		}
	}
	if transport := os.Getenv("TRANSPORT"); transport != "" {
		c.Transport = transport
	}
	if dbPath, ok := os.LookupEnv("DB_PATH"); ok {
		c.DBPath = dbPath
	}
	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil && parsed > 0 {
			c.CacheTTL = parsed
		}
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		c.GitHubToken = token
	}
	if bin := os.Getenv("MISE_BIN"); bin != "" {
		c.MiseBin = bin
	}
}

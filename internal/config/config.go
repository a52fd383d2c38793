package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the reposlurp CLI.
type Config struct {
	Repo     string     `yaml:"repo"`
	Ref      string     `yaml:"ref"`
	ListPath string     `yaml:"list_path"`
	RawPath  string     `yaml:"raw_path"`
	Dest     string     `yaml:"dest"`
	Workers  int        `yaml:"workers"`
	Manifest string     `yaml:"manifest"`
	Progress bool       `yaml:"progress"`
	Bar      bool       `yaml:"progress_bar"`
	HTTP     HTTPConfig `yaml:"http"`
}

// HTTPConfig defines HTTP client behavior.
type HTTPConfig struct {
	Timeout             time.Duration `yaml:"timeout"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Ref:      "master",
		ListPath: "/tree-list/branch/{ref}",
		RawPath:  "/raw/branch/{ref}/",
		Workers:  3,
		HTTP: HTTPConfig{
			Timeout:             30 * time.Second,
			MaxIdleConnsPerHost: 16,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Repo     string         `yaml:"repo"`
	Ref      string         `yaml:"ref"`
	ListPath string         `yaml:"list_path"`
	RawPath  string         `yaml:"raw_path"`
	Dest     string         `yaml:"dest"`
	Workers  int            `yaml:"workers"`
	Manifest string         `yaml:"manifest"`
	Progress bool           `yaml:"progress"`
	Bar      bool           `yaml:"progress_bar"`
	HTTP     yamlHTTPConfig `yaml:"http"`
}

type yamlHTTPConfig struct {
	Timeout             string `yaml:"timeout"`
	MaxIdleConnsPerHost int    `yaml:"max_idle_conns_per_host"`
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Repo != "" {
		cfg.Repo = yc.Repo
	}
	if yc.Ref != "" {
		cfg.Ref = yc.Ref
	}
	if yc.ListPath != "" {
		cfg.ListPath = yc.ListPath
	}
	if yc.RawPath != "" {
		cfg.RawPath = yc.RawPath
	}
	if yc.Dest != "" {
		cfg.Dest = yc.Dest
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.Manifest != "" {
		cfg.Manifest = yc.Manifest
	}
	cfg.Progress = yc.Progress
	cfg.Bar = yc.Bar
	if yc.HTTP.Timeout != "" {
		d, err := time.ParseDuration(yc.HTTP.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse http.timeout: %w", err)
		}
		cfg.HTTP.Timeout = d
	}
	if yc.HTTP.MaxIdleConnsPerHost != 0 {
		cfg.HTTP.MaxIdleConnsPerHost = yc.HTTP.MaxIdleConnsPerHost
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the REPOSLURP_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("REPOSLURP_REPO"); v != "" {
		c.Repo = v
	}
	if v := os.Getenv("REPOSLURP_REF"); v != "" {
		c.Ref = v
	}
	if v := os.Getenv("REPOSLURP_LIST_PATH"); v != "" {
		c.ListPath = v
	}
	if v := os.Getenv("REPOSLURP_RAW_PATH"); v != "" {
		c.RawPath = v
	}
	if v := os.Getenv("REPOSLURP_DEST"); v != "" {
		c.Dest = v
	}
	if v := os.Getenv("REPOSLURP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse REPOSLURP_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("REPOSLURP_MANIFEST"); v != "" {
		c.Manifest = v
	}
	if v := os.Getenv("REPOSLURP_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("REPOSLURP_PROGRESS_BAR"); v != "" {
		c.Bar = v == "true" || v == "1"
	}
	if v := os.Getenv("REPOSLURP_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse REPOSLURP_HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}
	if v := os.Getenv("REPOSLURP_HTTP_MAX_IDLE_CONNS_PER_HOST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse REPOSLURP_HTTP_MAX_IDLE_CONNS_PER_HOST: %w", err)
		}
		c.HTTP.MaxIdleConnsPerHost = n
	}

	return nil
}

// Validate validates the configuration for a fetch.
func (c *Config) Validate() error {
	if c.Repo == "" {
		return errors.New("config: repo is required")
	}
	if c.Dest == "" {
		return errors.New("config: dest is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("config: http.timeout must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Repo != "" {
		c.Repo = override.Repo
	}
	if override.Ref != "" {
		c.Ref = override.Ref
	}
	if override.ListPath != "" {
		c.ListPath = override.ListPath
	}
	if override.RawPath != "" {
		c.RawPath = override.RawPath
	}
	if override.Dest != "" {
		c.Dest = override.Dest
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Manifest != "" {
		c.Manifest = override.Manifest
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Bar {
		c.Bar = override.Bar
	}
	if override.HTTP.Timeout != 0 {
		c.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.MaxIdleConnsPerHost != 0 {
		c.HTTP.MaxIdleConnsPerHost = override.HTTP.MaxIdleConnsPerHost
	}
	return c
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (if path is not empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFromFile(path)
		if err != nil {
			return Config{}, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

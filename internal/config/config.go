package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.brewq/brewq.yaml.
type Config struct {
	BrewPath     string        `yaml:"brew_path"`
	Trigger      string        `yaml:"trigger"`
	Staleness    time.Duration `yaml:"staleness"`
	BatchSize    int           `yaml:"batch_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Fuzzy        bool          `yaml:"fuzzy"`
	PersistNames bool          `yaml:"persist_names"`
	Terminal     []string      `yaml:"terminal,omitempty"`
	Opener       []string      `yaml:"opener,omitempty"`
	Listen       string        `yaml:"listen"`
	LogLevel     string        `yaml:"log_level"`
}

// BrewqDir returns the absolute path to ~/.brewq/.
func BrewqDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".brewq"), nil
}

// ConfigPath returns the absolute path to ~/.brewq/brewq.yaml.
func ConfigPath() (string, error) {
	dir, err := BrewqDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "brewq.yaml"), nil
}

// NamesPath returns the absolute path of the persisted package-name snapshot.
func NamesPath() (string, error) {
	dir, err := BrewqDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "names.json"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config written on first brewq init.
func DefaultConfig() *Config {
	return &Config{
		Trigger:      "brew ",
		Staleness:    time.Minute,
		BatchSize:    10,
		PollInterval: 10 * time.Millisecond,
		PersistNames: true,
		Listen:       "127.0.0.1:7878",
		LogLevel:     "info",
	}
}

// Load reads and parses ~/.brewq/brewq.yaml, then applies environment overrides.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := cfg.applyOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to DefaultConfig when the
// config file does not exist yet.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = DefaultConfig()
	if err := cfg.applyOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	case c.PollInterval <= 0:
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	case c.Staleness < 0:
		return fmt.Errorf("staleness must not be negative, got %s", c.Staleness)
	case strings.TrimSpace(c.Trigger) == "":
		return errors.New("trigger must not be empty")
	}
	return nil
}

func (c *Config) applyOverrides() error {
	for key, dst := range map[string]*string{
		"BREWQ_BREW_PATH": &c.BrewPath,
		"BREWQ_LOG_LEVEL": &c.LogLevel,
		"BREWQ_LISTEN":    &c.Listen,
	} {
		v, err := GetConfigValue(key)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = v
		}
	}
	var err error
	c.BrewPath, err = ExpandPath(c.BrewPath)
	return err
}

// Save marshals cfg and writes it to ~/.brewq/brewq.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

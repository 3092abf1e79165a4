package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all assistant configuration
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Storage  StorageConfig  `yaml:"storage"`
	Timing   TimingConfig   `yaml:"timing"`
	Render   RenderConfig   `yaml:"render"`
	Activity ActivityConfig `yaml:"activity"`
}

// BackendConfig configures the inference backend endpoints
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig configures durable storage
type StorageConfig struct {
	// Path to the SQLite database file. Empty means in-memory only.
	Path string `yaml:"path"`
}

// TimingConfig holds the deferral delays used by the assistant
type TimingConfig struct {
	LinkDelay   time.Duration `yaml:"link_delay"`   // wait after a link click before reading the location
	SettleDelay time.Duration `yaml:"settle_delay"` // wait after a reply before refreshing suggestions
}

// RenderConfig configures message rendering
type RenderConfig struct {
	// Sanitize strips HTML from message text before markup is applied
	Sanitize bool `yaml:"sanitize"`
}

// ActivityConfig configures the interaction log
type ActivityConfig struct {
	Capacity int `yaml:"capacity"`
}

const (
	DefaultBackendURL  = "http://localhost:5000"
	DefaultTimeout     = 30 * time.Second
	DefaultLinkDelay   = 100 * time.Millisecond
	DefaultSettleDelay = 800 * time.Millisecond
	DefaultActivityCap = 10
)

// DefaultConfigDir returns ~/.tutor-assistant, or a relative directory when the home is unknown
func DefaultConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tutor-assistant"
	}
	return filepath.Join(homeDir, ".tutor-assistant")
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: DefaultBackendURL,
			Timeout: DefaultTimeout,
		},
		Storage: StorageConfig{
			Path: filepath.Join(DefaultConfigDir(), "assistant.db"),
		},
		Timing: TimingConfig{
			LinkDelay:   DefaultLinkDelay,
			SettleDelay: DefaultSettleDelay,
		},
		Activity: ActivityConfig{
			Capacity: DefaultActivityCap,
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
// A missing file is not an error. Environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = filepath.Join(DefaultConfigDir(), "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		LogDebug("No config file at %s, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TUTOR_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("TUTOR_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
}

func (c *Config) normalize() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBackendURL
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = DefaultTimeout
	}
	if c.Timing.LinkDelay < 0 {
		c.Timing.LinkDelay = DefaultLinkDelay
	}
	if c.Timing.SettleDelay < 0 {
		c.Timing.SettleDelay = DefaultSettleDelay
	}
	if c.Activity.Capacity <= 0 {
		c.Activity.Capacity = DefaultActivityCap
	}
}

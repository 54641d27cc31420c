package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Default reply delay window.
const (
	DefaultMinDelay = 800 * time.Millisecond
	DefaultMaxDelay = 1700 * time.Millisecond
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "copilot.yaml"

// Config holds all copilot configuration.
type Config struct {
	// Reply timing
	Reply ReplyConfig `yaml:"reply" envPrefix:"COPILOT_REPLY_"`

	// Terminal UI
	UI UIConfig `yaml:"ui" envPrefix:"COPILOT_UI_"`

	// Logging
	Logging LoggingConfig `yaml:"logging" envPrefix:"COPILOT_LOG_"`
}

// ReplyConfig configures the simulated reply latency.
type ReplyConfig struct {
	MinDelay string `yaml:"min_delay" env:"MIN_DELAY"`
	MaxDelay string `yaml:"max_delay" env:"MAX_DELAY"`
}

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is auto, light or dark. auto inspects the terminal.
	Theme string `yaml:"theme" env:"THEME"`

	// Markdown toggles glamour rendering of assistant replies.
	Markdown bool `yaml:"markdown" env:"MARKDOWN"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode" env:"DEBUG"` // Master toggle - false = no logging
	Level      string          `yaml:"level" env:"LEVEL"`      // debug, info, warn, error
	Format     string          `yaml:"format" env:"FORMAT"`    // json, text
	Dir        string          `yaml:"dir" env:"DIR"`
	Categories map[string]bool `yaml:"categories"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false.
// Returns true if debug_mode is true and category is enabled (or not specified).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Reply: ReplyConfig{
			MinDelay: DefaultMinDelay.String(),
			MaxDelay: DefaultMaxDelay.String(),
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			Format:    "text",
			Dir:       filepath.Join(".copilot", "logs"),
		},
	}
}

// Load loads configuration from a YAML file, then applies COPILOT_*
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
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
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// GetDelayWindow returns the reply delay bounds. Unparseable values fall
// back to the defaults.
func (c *Config) GetDelayWindow() (lo, hi time.Duration) {
	lo, err := time.ParseDuration(c.Reply.MinDelay)
	if err != nil {
		lo = DefaultMinDelay
	}
	hi, err = time.ParseDuration(c.Reply.MaxDelay)
	if err != nil {
		hi = DefaultMaxDelay
	}
	return lo, hi
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	lo, err := time.ParseDuration(c.Reply.MinDelay)
	if err != nil {
		return fmt.Errorf("invalid reply.min_delay %q: %w", c.Reply.MinDelay, err)
	}
	hi, err := time.ParseDuration(c.Reply.MaxDelay)
	if err != nil {
		return fmt.Errorf("invalid reply.max_delay %q: %w", c.Reply.MaxDelay, err)
	}
	if lo < 0 || hi < 0 {
		return fmt.Errorf("reply delays must not be negative")
	}
	if hi < lo {
		return fmt.Errorf("reply.max_delay (%s) is below reply.min_delay (%s)", hi, lo)
	}

	if !contains(ValidThemes, c.UI.Theme) {
		return fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

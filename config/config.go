// Package config loads engine and host settings from YAML
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BlueDragon92003/stirling-engine/engine"
)

// Config is the on-disk configuration
// Timing fields are pointers: an absent key stays unset and surfaces as a build error
type Config struct {
	TicksPerSecond *int           `yaml:"ticks_per_second,omitempty"`
	Watchdog       *time.Duration `yaml:"watchdog,omitempty"`
	Terminal       TerminalConfig `yaml:"terminal,omitempty"`
	Log            LogConfig      `yaml:"log,omitempty"`
}

// TerminalConfig tunes the terminal host; zero values select host defaults
type TerminalConfig struct {
	KeyRelease   time.Duration `yaml:"key_release,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	QuitKeys     []string      `yaml:"quit_keys,omitempty"`
	Mouse        *bool         `yaml:"mouse,omitempty"`
}

// LogConfig controls the host's log file
type LogConfig struct {
	Debug bool   `yaml:"debug,omitempty"`
	Dir   string `yaml:"dir,omitempty"`
}

// Load reads and parses the file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, rejecting unknown keys
// An empty document yields an empty Config
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that are present; missing timing fields are left to the builder
func (c *Config) Validate() error {
	if c.TicksPerSecond != nil && *c.TicksPerSecond <= 0 {
		return fmt.Errorf("ticks_per_second: %w", engine.ErrInvalidTPS)
	}
	if c.Watchdog != nil && *c.Watchdog <= 0 {
		return fmt.Errorf("watchdog: %w", engine.ErrInvalidWatchdogTime)
	}
	if c.Terminal.KeyRelease < 0 {
		return fmt.Errorf("terminal.key_release: must not be negative, got %v", c.Terminal.KeyRelease)
	}
	if c.Terminal.PollInterval < 0 {
		return fmt.Errorf("terminal.poll_interval: must not be negative, got %v", c.Terminal.PollInterval)
	}
	return nil
}

// Apply copies the timing fields that are present into b
func (c *Config) Apply(b *engine.Builder) *engine.Builder {
	if c.TicksPerSecond != nil {
		b.SetTPS(*c.TicksPerSecond)
	}
	if c.Watchdog != nil {
		b.SetWatchdogTime(*c.Watchdog)
	}
	return b
}

// SetTPS overrides the tick rate
func (c *Config) SetTPS(tps int) {
	c.TicksPerSecond = &tps
}

// SetWatchdog overrides the watchdog time
func (c *Config) SetWatchdog(d time.Duration) {
	c.Watchdog = &d
}

// Marshal encodes the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Package config loads the recognized configuration key table (§6) from a
// YAML document and exposes typed accessors. Values are stored as strings
// internally (matching the key→string table in the data model) and parsed
// per type on read, so a malformed value surfaces at the point of use with
// context about which key it came from.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Recognized configuration keys, per §6.
const (
	KeyComPort           = "com_port"
	KeyBaudRate          = "baud_rate"
	KeySimulationMode    = "simulation_mode"
	KeyDefaultFadeTimeMs = "default_fade_time_ms"
	KeyDefaultIntensity  = "default_intensity"
	KeyAmbientEnabled    = "ambient_enabled"
	KeyAmbientSequenceID = "ambient_sequence_id"
	KeyLoginFadeDelayMs  = "login_fade_delay_ms"
	KeyLogRetentionDays  = "log_retention_days"
)

// defaults mirror the behaviour documented for intents that omit an
// override (§4.5): default_fade_time_ms and default_intensity are used
// when a caller doesn't specify fade_ms/intensity.
var defaults = map[string]string{
	KeyComPort:           "/dev/ttyUSB0",
	KeyBaudRate:          "38400",
	KeySimulationMode:    "false",
	KeyDefaultFadeTimeMs: "1000",
	KeyDefaultIntensity:  "255",
	KeyAmbientEnabled:    "true",
	KeyAmbientSequenceID: "wave",
	KeyLoginFadeDelayMs:  "100",
	KeyLogRetentionDays:  "14",
}

// Config is the key→string table, seeded with defaults and overridable by
// a YAML document and, at the cmd/ layer, CLI flags.
type Config struct {
	values map[string]string
}

// New returns a Config seeded with the built-in defaults.
func New() *Config {
	c := &Config{values: make(map[string]string, len(defaults))}
	for k, v := range defaults {
		c.values[k] = v
	}
	return c
}

// Load reads a YAML configuration document from path and overlays it onto
// the defaults. Unrecognized keys are kept (forward-compatible with newer
// deployments) but never read by the typed accessors below.
func Load(path string) (*Config, error) {
	c := New()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var doc map[string]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	for k, v := range doc {
		c.values[k] = v
	}
	return c, nil
}

// Set overrides a single key, e.g. from a CLI flag.
func (c *Config) Set(key, value string) { c.values[key] = value }

// String returns the raw string value for key.
func (c *Config) String(key string) string { return c.values[key] }

// Int parses key as an integer, falling back to fallback on a parse error.
func (c *Config) Int(key string, fallback int) int {
	v, err := strconv.Atoi(c.values[key])
	if err != nil {
		return fallback
	}
	return v
}

// Bool parses key as a boolean, falling back to fallback on a parse error.
func (c *Config) Bool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(c.values[key])
	if err != nil {
		return fallback
	}
	return v
}

// ComPort returns the configured serial device path.
func (c *Config) ComPort() string { return c.String(KeyComPort) }

// BaudRate returns the configured line speed.
func (c *Config) BaudRate() int { return c.Int(KeyBaudRate, 38400) }

// SimulationMode reports whether the simulated sink should replace the
// hardware device.
func (c *Config) SimulationMode() bool { return c.Bool(KeySimulationMode, false) }

// DefaultFadeTimeMs is the fade duration used when an intent omits fade_ms.
func (c *Config) DefaultFadeTimeMs() int { return c.Int(KeyDefaultFadeTimeMs, 1000) }

// DefaultIntensity is the intensity used when an intent omits intensity.
func (c *Config) DefaultIntensity() int { return c.Int(KeyDefaultIntensity, 255) }

// AmbientEnabled reports whether logout should resume ambient animation.
func (c *Config) AmbientEnabled() bool { return c.Bool(KeyAmbientEnabled, true) }

// AmbientSequenceID names the sequence started on logout.
func (c *Config) AmbientSequenceID() string { return c.String(KeyAmbientSequenceID) }

// LoginFadeDelayMs is the inter-floor delay in the login fade-down.
func (c *Config) LoginFadeDelayMs() int { return c.Int(KeyLoginFadeDelayMs, 100) }

// LogRetentionDays bounds how long the rolling command/session logs are
// kept.
func (c *Config) LogRetentionDays() int { return c.Int(KeyLogRetentionDays, 14) }

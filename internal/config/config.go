// Package config handles loading and parsing the application's configuration.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the application.
// We use struct tags to explicitly map TOML keys to struct fields.
type Config struct {
	DataFile     string    `toml:"data_file"`     // JSON document holding the inventory
	LowThreshold float64   `toml:"low_threshold"` // Items strictly below this are "low"
	Log          LogConfig `toml:"log"`
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// New returns a new Config with default values.
func New() *Config {
	return &Config{
		DataFile:     "inventory.json",
		LowThreshold: 5,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a configuration file from the given path and populates the Config struct.
// Keys missing from the file keep their current values.
func (c *Config) Load(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate reports settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return errors.New("config: data_file must not be empty")
	}
	if math.IsNaN(c.LowThreshold) || math.IsInf(c.LowThreshold, 0) {
		return fmt.Errorf("config: low_threshold must be finite, got %v", c.LowThreshold)
	}
	return nil
}

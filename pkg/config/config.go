// Package config provides configuration loading and management for radialscan.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"radialscan/internal/models"
	"radialscan/pkg/radius"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// InputPath is the image to analyse
	InputPath string `yaml:"inputPath"`

	// OutputPath is the CSV log the result row is appended to
	OutputPath string `yaml:"outputPath"`

	// Threshold is the standard deviation below which a window is considered flat
	Threshold float64 `yaml:"threshold"`

	// WindowSize is the number of rows pooled into each window
	WindowSize int `yaml:"windowSize"`

	// Input parameters
	Input struct {
		// Section selects the z-section of a multi-section MRC stack
		Section int `yaml:"section"`

		// Axis is the scan direction, "x" (rows) or "y" (columns)
		Axis string `yaml:"axis"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// Record selects the value written to the log, "radius" or "sentinel"
		Record string `yaml:"record"`

		// CRLF terminates CSV records with \r\n
		CRLF bool `yaml:"crlf"`

		// Verbose prints the array excerpt and every standard deviation
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Plot parameters
	Plot struct {
		// Enabled writes the profile plot and overlay image
		Enabled bool `yaml:"enabled"`

		// Dir is the directory plot artefacts are written to
		Dir string `yaml:"dir"`
	} `yaml:"plot"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{
		InputPath:  "single_particles_filtered.mrc",
		OutputPath: "distance.csv",
		Threshold:  radius.DefaultThreshold,
		WindowSize: radius.DefaultWindowSize,
	}

	cfg.Input.Section = 0
	cfg.Input.Axis = "x"

	cfg.Output.Record = "radius"
	cfg.Output.CRLF = true
	cfg.Output.Verbose = true

	cfg.Plot.Enabled = false
	cfg.Plot.Dir = "radialscan_plots"

	return cfg
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("inputPath must be set")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("outputPath must be set")
	}
	if c.Input.Section < 0 {
		return fmt.Errorf("input.section must be non-negative, got %d", c.Input.Section)
	}
	if c.Plot.Enabled && c.Plot.Dir == "" {
		return fmt.Errorf("plot.dir must be set when plotting is enabled")
	}
	if math.IsNaN(c.Threshold) {
		return fmt.Errorf("threshold must be a number")
	}
	_, err := c.ScanParams()
	return err
}

// ScanParams converts the scan settings into estimator parameters
func (c *Config) ScanParams() (radius.Params, error) {
	axis, err := models.ParseAxis(c.Input.Axis)
	if err != nil {
		return radius.Params{}, err
	}
	record, err := radius.ParseRecordMode(c.Output.Record)
	if err != nil {
		return radius.Params{}, err
	}

	p := radius.Params{
		Threshold:  c.Threshold,
		WindowSize: c.WindowSize,
		Axis:       axis,
		Record:     record,
	}
	if err := p.Validate(); err != nil {
		return radius.Params{}, err
	}
	return p, nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

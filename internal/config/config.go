// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format           string `yaml:"format"`
		ConfidenceLevels string `yaml:"confidence_levels"`
		DocumentType     string `yaml:"document_type"`
		Verbose          bool   `yaml:"verbose"`
		Debug            bool   `yaml:"debug"`
		NoColor          bool   `yaml:"no_color"`
	} `yaml:"defaults"`

	// Learning engine tuning. Policy constants live here, not in code.
	Learning struct {
		Weights struct {
			Performance float64 `yaml:"performance"`
			Simplicity  float64 `yaml:"simplicity"`
			Validation  float64 `yaml:"validation"`
			Context     float64 `yaml:"context"`
		} `yaml:"weights"`
		ContextChars    int `yaml:"context_chars"`
		SuggestionLimit int `yaml:"suggestion_limit"`
		Deactivation    struct {
			MinAttempts int     `yaml:"min_attempts"`
			Watermark   float64 `yaml:"success_rate_watermark"`
		} `yaml:"deactivation"`
	} `yaml:"learning"`

	// Storage configuration for the extraction/feedback database
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	// Profiles for different scanning scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a scanning profile with specific settings
type Profile struct {
	Format           string `yaml:"format"`
	ConfidenceLevels string `yaml:"confidence_levels"`
	DocumentType     string `yaml:"document_type"`
	Verbose          bool   `yaml:"verbose"`
	Debug            bool   `yaml:"debug"`
	NoColor          bool   `yaml:"no_color"`
	Description      string `yaml:"description"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.ConfidenceLevels = "all"
	config.Defaults.DocumentType = "WI"
	config.Defaults.Verbose = false
	config.Defaults.Debug = false
	config.Defaults.NoColor = false

	config.Learning.Weights.Performance = 0.4
	config.Learning.Weights.Simplicity = 0.2
	config.Learning.Weights.Validation = 0.2
	config.Learning.Weights.Context = 0.2
	config.Learning.ContextChars = 100
	config.Learning.SuggestionLimit = 5
	config.Learning.Deactivation.MinAttempts = 20
	config.Learning.Deactivation.Watermark = 0.2

	config.Storage.Path = "transcript-scan.db"

	// Review profile: surface everything a human should look at
	config.Profiles["review"] = Profile{
		Format:           "text",
		ConfidenceLevels: "low,medium",
		DocumentType:     "WI",
		Description:      "Low and medium confidence extractions for human review",
	}

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	candidates := []string{
		"config.yaml",
		"transcript-scan.yaml",
		"transcript-scan.yml",
		".transcript-scan.yaml",
		".transcript-scan.yml",
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		standard := filepath.Join(home, ".transcript-scan", "config.yaml")
		if fileExists(standard) {
			return standard
		}
	}
	return ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the names of all configured profiles
func (c *Config) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}

// GetProfile returns a profile by name, or nil when it does not exist
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ValidateConfig checks configuration invariants the engine depends on
func ValidateConfig(config *Config) error {
	w := config.Learning.Weights
	sum := w.Performance + w.Simplicity + w.Validation + w.Context
	if sum != 0 && (sum < 0.999 || sum > 1.001) {
		return fmt.Errorf("learning.weights must sum to 1.0, got %.3f", sum)
	}
	for name, v := range map[string]float64{
		"performance": w.Performance,
		"simplicity":  w.Simplicity,
		"validation":  w.Validation,
		"context":     w.Context,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("learning.weights.%s must be in [0,1], got %v", name, v)
		}
	}

	if config.Learning.ContextChars < 0 {
		return fmt.Errorf("learning.context_chars must not be negative")
	}
	if config.Learning.Deactivation.MinAttempts < 1 {
		return fmt.Errorf("learning.deactivation.min_attempts must be at least 1")
	}
	if wm := config.Learning.Deactivation.Watermark; wm < 0 || wm > 1 {
		return fmt.Errorf("learning.deactivation.success_rate_watermark must be in [0,1], got %v", wm)
	}

	switch config.Defaults.Format {
	case "", "text", "json", "csv", "yaml":
	default:
		return fmt.Errorf("unknown defaults.format %q", config.Defaults.Format)
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard
// locations when configFile is empty). If loading fails, it returns a default
// configuration.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults; callers should not crash on a bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}

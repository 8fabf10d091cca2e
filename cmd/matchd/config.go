// config.go - Configuration management for the matching engine daemon
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration.
type Config struct {
	// Protocol settings
	PermutationSeed int64 `json:"permutation_seed"`
	NonceSeed       int64 `json:"nonce_seed"`

	// File paths
	ProvingKeyPath   string `json:"proving_key_path"`
	VerifyingKeyPath string `json:"verifying_key_path"`
	RoundOutputDir   string `json:"round_output_dir"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Performance
	MaxConcurrency int `json:"max_concurrency"`
	TimeoutSeconds int `json:"timeout_seconds"`

	// Security
	EnableAudit  bool   `json:"enable_audit"`
	AuditLogPath string `json:"audit_log_path"`

	// Rate limiting
	MaxRoundsPerMinute int `json:"max_rounds_per_minute"`

	// REST surface. Zero disables it, keeping the daemon a one-shot
	// demo the way the teacher's root main.go runs standalone.
	RestPort int `json:"rest_port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PermutationSeed:    1,
		NonceSeed:          1,
		ProvingKeyPath:     "matching.pk",
		VerifyingKeyPath:   "matching.vk",
		RoundOutputDir:     "rounds",
		LogLevel:           "info",
		LogFile:            "matchd.log",
		MaxConcurrency:     4,
		TimeoutSeconds:     30,
		EnableAudit:        true,
		AuditLogPath:       "audit.log",
		MaxRoundsPerMinute: 10,
		RestPort:           0,
	}
}

// LoadConfig loads configuration from file or creates default.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		var config Config
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		return &config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file.
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	if c.MaxRoundsPerMinute <= 0 {
		return fmt.Errorf("max_rounds_per_minute must be positive")
	}
	return nil
}

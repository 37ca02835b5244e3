package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LoggingConfig defines log level, format and file rotation.
type LoggingConfig struct {
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
	// File enables a rotating log file instead of stdout.
	File string `json:"file"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.File != "" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 100
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("logging: unknown format %s", c.Format)
	}
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"time"
)

// ServerConfig configures the prediction API listener.
type ServerConfig struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
	// ReadTimeoutSeconds and WriteTimeoutSeconds bound a single request.
	ReadTimeoutSeconds  int `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
	// MaxBatchSize caps the number of trips per batch request. Zero disables the cap.
	MaxBatchSize int `json:"max_batch_size"`
	// MaxBodyBytes bounds the size of a request body.
	MaxBodyBytes int64 `json:"max_body_bytes"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 15
	}
	if c.WriteTimeoutSeconds == 0 {
		c.WriteTimeoutSeconds = 15
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = 1000
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 4 << 20
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.ReadTimeoutSeconds < 0 || c.WriteTimeoutSeconds < 0 {
		return fmt.Errorf("server: timeouts must not be negative")
	}
	if c.MaxBatchSize < 0 {
		return fmt.Errorf("server: max_batch_size must not be negative")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("server: max_body_bytes must not be negative")
	}
	return nil
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

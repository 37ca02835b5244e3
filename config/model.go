package config

import "fmt"

// ModelConfig locates the model artifacts.
type ModelConfig struct {
	WeightsPath string `json:"weights_path"`
	ScalerPath  string `json:"scaler_path"`
	// HiddenSizes is used when the weights file does not declare its own.
	HiddenSizes []int `json:"hidden_sizes"`
	// Seed drives the initialisation of the untrained fallback network.
	Seed uint64 `json:"seed"`
}

func (c *ModelConfig) SetDefaults() {
	if c.WeightsPath == "" {
		c.WeightsPath = "best_taxi_fare_model.json"
	}
	if c.ScalerPath == "" {
		c.ScalerPath = "scaler.json"
	}
	if len(c.HiddenSizes) == 0 {
		c.HiddenSizes = []int{128, 64, 32}
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

func (c ModelConfig) Validate() error {
	for _, h := range c.HiddenSizes {
		if h <= 0 {
			return fmt.Errorf("model: hidden sizes must be positive, got %v", c.HiddenSizes)
		}
	}
	return nil
}

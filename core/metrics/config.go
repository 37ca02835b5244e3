package metrics

import "fmt"

// Config selects and configures the metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults fills the Prometheus listen address.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9100"
	}
}

// Validate ensures the Influx sink has a destination when enabled.
func (c Config) Validate() error {
	if c.InfluxEnabled && (c.InfluxURL == "" || c.InfluxBucket == "") {
		return fmt.Errorf("metrics: influx_url and influx_bucket are required when influx is enabled")
	}
	return nil
}

// Package metrics defines the events emitted by the prediction API and the
// MetricsSink interface they are recorded through. Sinks for Prometheus and
// InfluxDB live in infra/metrics and can be combined with a MultiSink.
package metrics

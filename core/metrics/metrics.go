package metrics

import "time"

// Endpoint names used as labels.
const (
	EndpointPredict = "predict"
	EndpointBatch   = "predict_batch"
)

// Request outcomes used as labels.
const (
	StatusSuccess     = "success"
	StatusClientError = "client_error"
	StatusError       = "error"
)

// PredictionEvent describes one handled prediction request.
type PredictionEvent struct {
	Endpoint string
	Status   string
	Latency  time.Duration
	// Items is 1 for single predictions and the trip count for batches.
	Items     int
	Successes int
	// Fares holds the predicted fares of successful items.
	Fares []float64
	Time  time.Time
}

// MetricsSink records prediction events for observability purposes.
type MetricsSink interface {
	RecordPrediction(ev PredictionEvent) error
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error { return nil }

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/taxifare/core/metrics"
)

// PromSink records prediction events in Prometheus metrics.
type PromSink struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	fares    prometheus.Histogram
	batch    prometheus.Histogram
}

// NewPromSinkWithRegistry registers metrics on reg. A nil registerer falls
// back to the default one; already registered collectors are reused. The
// /metrics endpoint is served separately by StartPromServer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fare_predictions_total",
		Help: "Prediction requests by endpoint and outcome",
	}, []string{"endpoint", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fare_prediction_duration_seconds",
		Help:    "Time spent handling prediction requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	fares := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fare_predicted_usd",
		Help:    "Distribution of predicted fares",
		Buckets: []float64{5, 10, 15, 20, 30, 50, 75, 100, 200, 500, 1000},
	})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fare_batch_size",
		Help:    "Number of trips per batch request",
		Buckets: prometheus.ExponentialBuckets(1, 2, 11),
	})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if fares, err = register(reg, fares); err != nil {
		return nil, err
	}
	if batch, err = register(reg, batch); err != nil {
		return nil, err
	}
	return &PromSink{requests: requests, latency: latency, fares: fares, batch: batch}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction updates counters and histograms for the event.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.requests.WithLabelValues(ev.Endpoint, ev.Status).Inc()
	s.latency.WithLabelValues(ev.Endpoint).Observe(ev.Latency.Seconds())
	for _, f := range ev.Fares {
		s.fares.Observe(f)
	}
	if ev.Endpoint == coremetrics.EndpointBatch && ev.Status != coremetrics.StatusClientError {
		s.batch.Observe(float64(ev.Items))
	}
	return nil
}

package metrics

import coremetrics "github.com/kilianp07/taxifare/core/metrics"

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the event to every sink. All sinks are tried;
// the first error is returned.
func (m *MultiSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close releases every inner sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		CloseSink(s)
	}
}

// CloseSink calls Close on s when the sink implements it.
func CloseSink(s coremetrics.MetricsSink) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/taxifare/core/metrics"
)

func TestPromSink_RecordPrediction(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{
		Endpoint:  coremetrics.EndpointPredict,
		Status:    coremetrics.StatusSuccess,
		Latency:   10 * time.Millisecond,
		Items:     1,
		Successes: 1,
		Fares:     []float64{12.5},
	}))
	require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{
		Endpoint:  coremetrics.EndpointBatch,
		Status:    coremetrics.StatusSuccess,
		Latency:   20 * time.Millisecond,
		Items:     3,
		Successes: 2,
		Fares:     []float64{8, 30},
	}))
	require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{
		Endpoint: coremetrics.EndpointBatch,
		Status:   coremetrics.StatusClientError,
	}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.requests.WithLabelValues("predict", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.requests.WithLabelValues("predict_batch", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.requests.WithLabelValues("predict_batch", "client_error")))
	assert.Equal(t, uint64(3), sampleCount(t, reg, "fare_predicted_usd"))
	assert.Equal(t, uint64(1), sampleCount(t, reg, "fare_batch_size"))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.latency))
}

func sampleCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestNewPromSinkWithRegistry_Reuses(t *testing.T) {
	reg := prometheus.NewRegistry()
	s1, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	s2, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, s2.RecordPrediction(coremetrics.PredictionEvent{
		Endpoint: coremetrics.EndpointPredict,
		Status:   coremetrics.StatusError,
	}))
	assert.Equal(t, 1.0, testutil.ToFloat64(s1.requests.WithLabelValues("predict", "error")))
}

func TestNewSink(t *testing.T) {
	s, err := NewSink(coremetrics.Config{}, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, s)

	s, err = NewSink(coremetrics.Config{PrometheusEnabled: true}, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.IsType(t, &PromSink{}, s)
}

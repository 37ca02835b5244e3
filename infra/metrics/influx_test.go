package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/taxifare/core/metrics"
)

func TestInfluxSink_RecordPrediction(t *testing.T) {
	var body, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.PredictionEvent{
		Endpoint:  coremetrics.EndpointBatch,
		Status:    coremetrics.StatusSuccess,
		Latency:   1500 * time.Microsecond,
		Items:     2,
		Successes: 2,
		Fares:     []float64{10, 20},
		Time:      now,
	}
	if err := sink.RecordPrediction(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("fare_prediction_request").
		AddTag("endpoint", "predict_batch").
		AddTag("status", "success").
		AddField("latency_ms", 1.5).
		AddField("items", 2).
		AddField("successes", 2).
		AddField("mean_fare", 15.0).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
	if path != "/api/v2/write" {
		t.Errorf("unexpected path: %s", path)
	}
}

func TestInfluxSink_NoFaresOmitsMean(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	err := sink.RecordPrediction(coremetrics.PredictionEvent{
		Endpoint: coremetrics.EndpointPredict,
		Status:   coremetrics.StatusClientError,
		Items:    1,
		Time:     time.Now(),
	})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	if strings.Contains(body, "mean_fare") {
		t.Errorf("mean_fare should be omitted: %s", body)
	}
	if !strings.Contains(body, "status=client_error") {
		t.Errorf("missing status tag: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	cfg := coremetrics.Config{
		InfluxURL:    srv.URL + "/api/v2/write",
		InfluxToken:  "tok",
		InfluxOrg:    "org",
		InfluxBucket: "bucket",
	}
	sink := NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

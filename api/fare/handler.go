// Package fare exposes the prediction service over HTTP.
package fare

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/taxifare/api/middleware"
	corefare "github.com/kilianp07/taxifare/core/fare"
	"github.com/kilianp07/taxifare/core/logger"
	"github.com/kilianp07/taxifare/core/metrics"
	"github.com/kilianp07/taxifare/core/monitoring"
	"github.com/kilianp07/taxifare/core/prediction"
)

const (
	msgNoJSON       = "No JSON data provided"
	msgNoTrips      = `No trips data provided. Expected format: {"trips": [...]}`
	msgBodyTooLarge = "Request body too large"

	defaultMaxBodyBytes = 4 << 20
)

// Handler serves the prediction endpoints.
type Handler struct {
	predictor prediction.Predictor
	sink      metrics.MetricsSink
	monitor   monitoring.Monitor
	log       logger.Logger
	maxBatch  int
	maxBody   int64
	now       func() time.Time
}

// Options holds the optional collaborators of a Handler.
type Options struct {
	Sink    metrics.MetricsSink
	Monitor monitoring.Monitor
	Log     logger.Logger
	// MaxBatchSize caps /predict/batch. Zero disables the cap.
	MaxBatchSize int
	// MaxBodyBytes bounds request bodies. Zero means 4 MiB.
	MaxBodyBytes int64
}

// NewHandler creates a Handler around p. Nil collaborators are replaced by
// no-op implementations.
func NewHandler(p prediction.Predictor, opts Options) *Handler {
	h := &Handler{
		predictor: p,
		sink:      opts.Sink,
		monitor:   opts.Monitor,
		log:       opts.Log,
		maxBatch:  opts.MaxBatchSize,
		maxBody:   opts.MaxBodyBytes,
		now:       time.Now,
	}
	if h.maxBody <= 0 {
		h.maxBody = defaultMaxBodyBytes
	}
	if h.sink == nil {
		h.sink = metrics.NopSink{}
	}
	if h.monitor == nil {
		h.monitor = monitoring.NopMonitor{}
	}
	if h.log == nil {
		h.log = logger.Nop{}
	}
	return h
}

func (h *Handler) timestamp() string { return middleware.Timestamp(h.now()) }

// Health reports whether the model and scaler are loaded.
func (h *Handler) Health(c *gin.Context) {
	st := h.predictor.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"message":       "Taxi Fare Prediction API is running",
		"model_loaded":  st.ModelLoaded,
		"scaler_loaded": st.ScalerLoaded,
		"model_source":  st.ModelSource,
		"scaler_source": st.ScalerSource,
		"timestamp":     h.timestamp(),
	})
}

// Features lists the model inputs in vector order.
func (h *Handler) Features(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"required_features":    corefare.Names(),
		"feature_descriptions": corefare.Descriptions(),
		"example_request":      corefare.ExampleRequest(),
	})
}

// Predict estimates the fare of one trip.
func (h *Handler) Predict(c *gin.Context) {
	start := time.Now()
	ev := metrics.PredictionEvent{Endpoint: metrics.EndpointPredict, Items: 1}
	defer func() { h.record(ev, start) }()

	body, err := h.readObject(c)
	if tooLarge(err) {
		ev.Status = metrics.StatusClientError
		h.bodyTooLarge(c, err)
		return
	}
	if err != nil || len(body) == 0 {
		ev.Status = metrics.StatusClientError
		h.clientError(c, msgNoJSON, err)
		return
	}
	h.log.Debugw("prediction request", map[string]any{
		"request_id": middleware.GetRequestID(c),
		"input":      body,
	})

	fareUSD, err := h.predictor.Predict(corefare.Trip(body))
	if err != nil {
		ev.Status = metrics.StatusError
		h.serverError(c, metrics.EndpointPredict, err)
		return
	}
	ev.Status = metrics.StatusSuccess
	ev.Successes = 1
	ev.Fares = []float64{fareUSD}
	h.log.Infof("prediction successful: $%.2f", fareUSD)
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"predicted_fare": fareUSD,
		"currency":       "USD",
		"input_data":     body,
		"timestamp":      h.timestamp(),
	})
}

type batchEntry struct {
	TripIndex     int      `json:"trip_index"`
	PredictedFare *float64 `json:"predicted_fare,omitempty"`
	Error         string   `json:"error,omitempty"`
	InputData     any      `json:"input_data"`
}

// PredictBatch estimates fares for {"trips": [...]}. Failing entries are
// reported inline and never fail the request.
func (h *Handler) PredictBatch(c *gin.Context) {
	start := time.Now()
	ev := metrics.PredictionEvent{Endpoint: metrics.EndpointBatch}
	defer func() { h.record(ev, start) }()

	body, err := h.readObject(c)
	if tooLarge(err) {
		ev.Status = metrics.StatusClientError
		h.bodyTooLarge(c, err)
		return
	}
	raw, present := body["trips"]
	trips, isList := raw.([]any)
	if err != nil || !present || !isList {
		ev.Status = metrics.StatusClientError
		h.clientError(c, msgNoTrips, err)
		return
	}
	if h.maxBatch > 0 && len(trips) > h.maxBatch {
		ev.Status = metrics.StatusClientError
		h.clientError(c, fmt.Sprintf("Too many trips: %d exceeds the limit of %d", len(trips), h.maxBatch), nil)
		return
	}

	results := prediction.PredictBatch(h.predictor, trips)
	entries := make([]batchEntry, len(results))
	for i, r := range results {
		entries[i] = batchEntry{TripIndex: r.Index, InputData: r.Input}
		if r.OK() {
			f := r.Fare
			entries[i].PredictedFare = &f
			ev.Fares = append(ev.Fares, f)
			continue
		}
		entries[i].Error = r.Err.Error()
		h.log.Warnf("batch trip %d failed: %v", r.Index, r.Err)
	}
	ok := prediction.Successes(results)
	ev.Status = metrics.StatusSuccess
	ev.Items = len(trips)
	ev.Successes = ok
	c.JSON(http.StatusOK, gin.H{
		"status":                 "success",
		"predictions":            entries,
		"total_trips":            len(trips),
		"successful_predictions": ok,
		"timestamp":              h.timestamp(),
	})
}

// NotFound answers unmatched routes.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"status":              "error",
		"message":             "Endpoint not found",
		"available_endpoints": availableEndpoints,
	})
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"status":              "error",
		"message":             "Method not allowed",
		"available_endpoints": availableEndpoints,
	})
}

func (h *Handler) clientError(c *gin.Context, msg string, err error) {
	if err != nil {
		h.log.Debugf("rejected request %s: %v", middleware.GetRequestID(c), err)
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": msg,
	})
}

func (h *Handler) bodyTooLarge(c *gin.Context, err error) {
	h.log.Warnf("rejected request %s: %v", middleware.GetRequestID(c), err)
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"status":  "error",
		"message": msgBodyTooLarge,
	})
}

func (h *Handler) serverError(c *gin.Context, endpoint string, err error) {
	id := middleware.GetRequestID(c)
	_ = c.Error(err)
	h.log.Errorf("prediction error (request %s): %v", id, err)
	h.monitor.CaptureException(err, map[string]string{"endpoint": endpoint, "request_id": id})
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":    "error",
		"message":   "Prediction failed: " + err.Error(),
		"timestamp": h.timestamp(),
	})
}

func (h *Handler) record(ev metrics.PredictionEvent, start time.Time) {
	ev.Latency = time.Since(start)
	ev.Time = h.now()
	if err := h.sink.RecordPrediction(ev); err != nil {
		h.log.Warnf("metrics sink: %v", err)
	}
}

var errNotObject = errors.New("request body is not a JSON object")

func (h *Handler) readObject(c *gin.Context) (map[string]any, error) {
	return decodeObject(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// decodeObject reads a JSON object, keeping numbers as json.Number so the
// echoed input matches what the client sent.
func decodeObject(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode body: trailing data")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}

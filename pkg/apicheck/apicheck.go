// Package apicheck runs smoke checks against a running prediction API.
package apicheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/taxifare/core/fare"
)

// Result is the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	// Detail is a short human readable summary of the response.
	Detail string
	Err    error
}

// Client talks to the API under test.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client with a 10s timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type check struct {
	name string
	run  func(ctx context.Context, c *Client) (string, error)
}

// quickTrip is the minimal payload; every other field takes its default.
var quickTrip = map[string]any{
	"PULocationID":    161,
	"DOLocationID":    230,
	"passenger_count": 2,
	"trip_distance":   5.5,
	"pickup_hour":     14,
	"pickup_day":      "Friday",
}

var batchTrips = []map[string]any{
	{
		"PULocationID": 161, "DOLocationID": 230, "passenger_count": 1, "trip_distance": 3.2,
		"extra": 0.0, "mta_tax": 0.5, "tip_amount": 2.0, "tolls_amount": 0.0, "total_amount": 15.0,
		"payment_type": 1, "trip_type": 1, "congestion_surcharge": 0.0, "cbd_congestion_fee": 0.0,
		"trip_duration_minutes": 12, "pickup_hour": 10, "pickup_day": "Monday", "pickup_month": 1,
	},
	{
		"PULocationID": 74, "DOLocationID": 75, "passenger_count": 2, "trip_distance": 8.1,
		"extra": 1.0, "mta_tax": 0.5, "tip_amount": 4.5, "tolls_amount": 5.76, "total_amount": 35.0,
		"payment_type": 1, "trip_type": 1, "congestion_surcharge": 2.5, "cbd_congestion_fee": 0.75,
		"trip_duration_minutes": 28, "pickup_hour": 17, "pickup_day": "Friday", "pickup_month": 1,
	},
}

func checks(full bool) []check {
	if !full {
		return []check{
			{"Health Check", checkHealth},
			{"Single Prediction", predictCheck(quickTrip)},
		}
	}
	return []check{
		{"Health Check", checkHealth},
		{"Single Prediction", predictCheck(fare.ExampleRequest())},
		{"Batch Prediction", checkBatch},
		{"Features Endpoint", checkFeatures},
	}
}

// Run executes the quick checks, or all of them when full is set. Checks run
// in order and a failure does not stop the following ones.
func Run(ctx context.Context, c *Client, full bool) []Result {
	var out []Result
	for _, ch := range checks(full) {
		detail, err := ch.run(ctx, c)
		out = append(out, Result{Name: ch.name, Passed: err == nil, Detail: detail, Err: err})
	}
	return out
}

// Passed reports whether every check passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// WriteSummary prints one PASS/FAIL line per check and a total.
func WriteSummary(w io.Writer, results []Result) {
	passed := 0
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		} else {
			passed++
		}
		line := fmt.Sprintf("%s: %s", r.Name, status)
		switch {
		case r.Err != nil:
			line += " (" + r.Err.Error() + ")"
		case r.Detail != "":
			line += " (" + r.Detail + ")"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\nTotal: %d/%d checks passed\n", passed, len(results))
}

func checkHealth(ctx context.Context, c *Client) (string, error) {
	var body struct {
		Message      string `json:"message"`
		ModelLoaded  bool   `json:"model_loaded"`
		ScalerLoaded bool   `json:"scaler_loaded"`
	}
	if err := c.do(ctx, http.MethodGet, "/", nil, &body); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s, model_loaded=%t scaler_loaded=%t", body.Message, body.ModelLoaded, body.ScalerLoaded), nil
}

func predictCheck(trip map[string]any) func(context.Context, *Client) (string, error) {
	return func(ctx context.Context, c *Client) (string, error) {
		var body struct {
			Status        string   `json:"status"`
			PredictedFare *float64 `json:"predicted_fare"`
		}
		if err := c.do(ctx, http.MethodPost, "/predict", trip, &body); err != nil {
			return "", err
		}
		if body.Status != "success" || body.PredictedFare == nil {
			return "", fmt.Errorf("no predicted_fare in response")
		}
		return fmt.Sprintf("predicted fare $%.2f", *body.PredictedFare), nil
	}
}

func checkBatch(ctx context.Context, c *Client) (string, error) {
	var body struct {
		TotalTrips            int `json:"total_trips"`
		SuccessfulPredictions int `json:"successful_predictions"`
	}
	if err := c.do(ctx, http.MethodPost, "/predict/batch", map[string]any{"trips": batchTrips}, &body); err != nil {
		return "", err
	}
	if body.TotalTrips != len(batchTrips) {
		return "", fmt.Errorf("expected %d trips, got %d", len(batchTrips), body.TotalTrips)
	}
	return fmt.Sprintf("%d/%d successful", body.SuccessfulPredictions, body.TotalTrips), nil
}

func checkFeatures(ctx context.Context, c *Client) (string, error) {
	var body struct {
		RequiredFeatures []string `json:"required_features"`
	}
	if err := c.do(ctx, http.MethodGet, "/features", nil, &body); err != nil {
		return "", err
	}
	if len(body.RequiredFeatures) == 0 {
		return "", fmt.Errorf("empty feature list")
	}
	return fmt.Sprintf("%d features", len(body.RequiredFeatures)), nil
}

// do sends payload as JSON and decodes a 200 response into out.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var rd io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package prediction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kilianp07/taxifare/core/fare"
)

// ErrInvalidTrip is reported for batch entries that are not JSON objects.
var ErrInvalidTrip = errors.New("trip must be a JSON object")

// Status describes which artifacts back the predictor.
type Status struct {
	ModelLoaded  bool
	ScalerLoaded bool
	ModelSource  string
	ScalerSource string
}

// Predictor estimates fares.
type Predictor interface {
	// Predict returns the clamped fare rounded to cents.
	Predict(trip fare.Trip) (float64, error)
	Status() Status
}

// BatchResult is the outcome for one entry of a batch.
type BatchResult struct {
	Index int
	Fare  float64
	Err   error
	Input any
}

// OK reports whether the entry produced a fare.
func (r BatchResult) OK() bool { return r.Err == nil }

// PredictBatch runs p over every item in order. A failing item never stops
// the others.
func PredictBatch(p Predictor, items []any) []BatchResult {
	out := make([]BatchResult, len(items))
	for i, item := range items {
		out[i] = BatchResult{Index: i, Input: item}
		m, ok := item.(map[string]any)
		if !ok {
			out[i].Err = fmt.Errorf("%w, got %s", ErrInvalidTrip, jsonKind(item))
			continue
		}
		out[i].Fare, out[i].Err = p.Predict(fare.Trip(m))
	}
	return out
}

// Successes counts entries with a fare.
func Successes(res []BatchResult) int {
	n := 0
	for _, r := range res {
		if r.OK() {
			n++
		}
	}
	return n
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

package prediction

import "github.com/kilianp07/taxifare/core/fare"

// MockPredictor returns a fixed fare, or the result of PredictFunc when set.
type MockPredictor struct {
	Fare        float64
	PredictFunc func(fare.Trip) (float64, error)
	State       Status
}

// Predict implements Predictor.
func (m MockPredictor) Predict(trip fare.Trip) (float64, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(trip)
	}
	return m.Fare, nil
}

// Status implements Predictor.
func (m MockPredictor) Status() Status { return m.State }

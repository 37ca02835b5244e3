package fare

// Feature describes one column of the model input.
type Feature struct {
	Name        string
	Default     float64
	Description string
}

// features is ordered exactly like the columns the scaler and network were
// fitted on. Never reorder.
var features = []Feature{
	{Name: "PULocationID", Default: 161, Description: "Pickup location ID (numeric)"},
	{Name: "DOLocationID", Default: 230, Description: "Dropoff location ID (numeric)"},
	{Name: "passenger_count", Default: 1, Description: "Number of passengers (1-6)"},
	{Name: "trip_distance", Default: 5.0, Description: "Trip distance in miles"},
	{Name: "extra", Default: 0.5, Description: "Extra charges"},
	{Name: "mta_tax", Default: 0.5, Description: "MTA tax (usually 0.5)"},
	{Name: "tip_amount", Default: 2.0, Description: "Tip amount"},
	{Name: "tolls_amount", Default: 0.0, Description: "Toll charges"},
	{Name: "total_amount", Default: 20.0, Description: "Total trip amount"},
	{Name: "payment_type", Default: 1, Description: "Payment type (1=Credit, 2=Cash)"},
	{Name: "trip_type", Default: 1, Description: "Trip type (1=Street hail, 2=Dispatch)"},
	{Name: "congestion_surcharge", Default: 2.5, Description: "Congestion surcharge"},
	{Name: "cbd_congestion_fee", Default: 0.75, Description: "CBD congestion fee"},
	{Name: "trip_duration_minutes", Default: 20, Description: "Trip duration in minutes"},
	{Name: "pickup_hour", Default: 12, Description: "Pickup hour (0-23)"},
	{Name: "pickup_day", Default: 3, Description: "Day of week (Monday-Sunday or 0-6)"},
	{Name: "pickup_month", Default: 1, Description: "Month (1-12)"},
}

// NumFeatures is the length of every feature vector.
func NumFeatures() int { return len(features) }

// Table returns a copy of the ordered feature table.
func Table() []Feature {
	out := make([]Feature, len(features))
	copy(out, features)
	return out
}

// Names returns the feature names in vector order.
func Names() []string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name
	}
	return names
}

// Defaults returns the default vector, i.e. the vector of an empty trip.
func Defaults() []float64 {
	out := make([]float64, len(features))
	for i, f := range features {
		out[i] = f.Default
	}
	return out
}

// Descriptions maps each feature name to a human readable description.
func Descriptions() map[string]string {
	out := make(map[string]string, len(features))
	for _, f := range features {
		out[f.Name] = f.Description
	}
	return out
}

// ExampleRequest returns a fully populated trip suitable for documentation.
func ExampleRequest() Trip {
	return Trip{
		"PULocationID":          161,
		"DOLocationID":          230,
		"passenger_count":       2,
		"trip_distance":         5.5,
		"extra":                 0.5,
		"mta_tax":               0.5,
		"tip_amount":            3.0,
		"tolls_amount":          0.0,
		"total_amount":          25.0,
		"payment_type":          1,
		"trip_type":             1,
		"congestion_surcharge":  2.5,
		"cbd_congestion_fee":    0.75,
		"trip_duration_minutes": 22,
		"pickup_hour":           14,
		"pickup_day":            "Friday",
		"pickup_month":          1,
	}
}

// SyntheticSample spans plausible feature ranges. It is used to fit a
// stand-in scaler when no fitted scaler is available.
func SyntheticSample() []float64 {
	return []float64{150, 150, 1, 5, 0.5, 0.5, 2, 0, 20, 1, 1, 2.5, 0.75, 20, 12, 3, 1}
}

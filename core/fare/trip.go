package fare

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// ErrInvalidValue is returned when a trip field cannot be used as a number.
var ErrInvalidValue = errors.New("invalid feature value")

// Trip is a client supplied trip descriptor keyed by feature name.
// Unknown keys are ignored.
type Trip map[string]any

var weekdays = map[string]float64{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// DayIndex maps a weekday name to 0 (Monday) .. 6 (Sunday), ignoring case.
// Unknown names map to 0 and ok is false.
func DayIndex(name string) (idx float64, ok bool) {
	// cases.Caser keeps state, so one per call.
	idx, ok = weekdays[cases.Fold().String(strings.TrimSpace(name))]
	return idx, ok
}

// Vector projects the trip onto the feature table. Missing fields take their
// default value.
func (t Trip) Vector() ([]float64, error) {
	vec := make([]float64, len(features))
	for i, f := range features {
		raw, ok := t[f.Name]
		if !ok {
			vec[i] = f.Default
			continue
		}
		if f.Name == "pickup_day" {
			if s, isStr := raw.(string); isStr {
				vec[i], _ = DayIndex(s)
				continue
			}
		}
		v, err := toFloat(f.Name, raw)
		if err != nil {
			return nil, err
		}
		vec[i] = v
	}
	return vec, nil
}

func toFloat(name string, raw any) (float64, error) {
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case int32:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
		}
		v = f
	case bool:
		if x {
			v = 1
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: could not convert string to float: %q", ErrInvalidValue, name, x)
		}
		v = f
	case nil:
		return 0, fmt.Errorf("%w: %s: value is null", ErrInvalidValue, name)
	default:
		return 0, fmt.Errorf("%w: %s: unsupported type %T", ErrInvalidValue, name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s: value must be finite", ErrInvalidValue, name)
	}
	return v, nil
}

package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes feature vectors: (x - mean) / scale.
type Scaler struct {
	mean  []float64
	scale []float64
}

// NewScaler builds a scaler from fitted statistics. Zero scales are replaced
// by 1 so constant features pass through centred.
func NewScaler(mean, scale []float64) (*Scaler, error) {
	if len(mean) == 0 || len(mean) != len(scale) {
		return nil, fmt.Errorf("%w: mean has %d values, scale has %d", ErrShapeMismatch, len(mean), len(scale))
	}
	s := &Scaler{mean: make([]float64, len(mean)), scale: make([]float64, len(scale))}
	for i := range mean {
		if !finite(mean[i]) || !finite(scale[i]) {
			return nil, fmt.Errorf("%w: scaler column %d", ErrNonFinite, i)
		}
		s.mean[i] = mean[i]
		s.scale[i] = scale[i]
		if s.scale[i] == 0 {
			s.scale[i] = 1
		}
	}
	return s, nil
}

// FitScaler computes per-column mean and population standard deviation.
func FitScaler(rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no samples to fit", ErrShapeMismatch)
	}
	width := len(rows[0])
	mean := make([]float64, width)
	scale := make([]float64, width)
	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, r := range rows {
			if len(r) != width {
				return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShapeMismatch, i, len(r), width)
			}
			col[i] = r[j]
		}
		m, v := stat.PopMeanVariance(col, nil)
		mean[j] = m
		scale[j] = math.Sqrt(v)
	}
	return NewScaler(mean, scale)
}

// Len returns the number of features the scaler was fitted on.
func (s *Scaler) Len() int { return len(s.mean) }

// Mean returns a copy of the fitted means.
func (s *Scaler) Mean() []float64 { return append([]float64(nil), s.mean...) }

// Scale returns a copy of the fitted scales.
func (s *Scaler) Scale() []float64 { return append([]float64(nil), s.scale...) }

// Transform returns a standardized copy of x.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("%w: scaler expects %d features, got %d", ErrShapeMismatch, len(s.mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

package model

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// Tensor is a row-major float tensor as exported from a torch state_dict.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

func (t Tensor) check(name string, shape ...int) error {
	if !slices.Equal(t.Shape, shape) {
		return fmt.Errorf("%w: %s has shape %v, want %v", ErrShapeMismatch, name, t.Shape, shape)
	}
	size := 1
	for _, d := range shape {
		size *= d
	}
	if len(t.Data) != size {
		return fmt.Errorf("%w: %s has %d values, want %d", ErrShapeMismatch, name, len(t.Data), size)
	}
	for _, v := range t.Data {
		if !finite(v) {
			return fmt.Errorf("%w: %s", ErrNonFinite, name)
		}
	}
	return nil
}

// WeightsFile is the on-disk form of the network weights.
type WeightsFile struct {
	// InputSize and HiddenSizes are optional; when present they override the
	// configured architecture.
	InputSize   int               `json:"input_size,omitempty"`
	HiddenSizes []int             `json:"hidden_sizes,omitempty"`
	Tensors     map[string]Tensor `json:"tensors"`
}

// ScalerFile is the on-disk form of a fitted StandardScaler.
type ScalerFile struct {
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	Var          []float64 `json:"var,omitempty"`
	NSamplesSeen int       `json:"n_samples_seen,omitempty"`
	FeatureNames []string  `json:"feature_names,omitempty"`
}

// DecodeWeights parses a weights document.
func DecodeWeights(r io.Reader) (*WeightsFile, error) {
	var wf WeightsFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wf); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	if len(wf.Tensors) == 0 {
		return nil, fmt.Errorf("decode weights: %w: no tensors", ErrMissingTensor)
	}
	return &wf, nil
}

// DecodeScaler parses a scaler document.
func DecodeScaler(r io.Reader) (*ScalerFile, error) {
	var sf ScalerFile
	if err := json.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	return &sf, nil
}

package model

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"slices"

	"github.com/kilianp07/taxifare/core/logger"
)

// Source tells where an artifact came from.
type Source string

const (
	SourceFile      Source = "file"
	SourceUntrained Source = "untrained"
	SourceSynthetic Source = "synthetic"
)

// LoadOptions configures artifact loading.
type LoadOptions struct {
	WeightsPath string
	ScalerPath  string
	// FeatureNames is the ordered feature list; its length is the input size.
	FeatureNames []string
	// HiddenSizes is used for untrained networks and weights files that do not
	// declare their architecture.
	HiddenSizes []int
	// Seed drives the initialization of an untrained network.
	Seed uint64
	// SyntheticSample is the single row a stand-in scaler is fitted on.
	SyntheticSample []float64
	Log             logger.Logger
}

// Artifacts bundles the loaded scaler and network.
type Artifacts struct {
	Scaler       *Scaler
	Network      *Network
	ScalerSource Source
	ModelSource  Source
}

// Load reads both artifacts. Missing files degrade to an untrained network or
// a synthetic scaler; any other failure is returned.
func Load(opts LoadOptions) (*Artifacts, error) {
	if opts.Log == nil {
		opts.Log = logger.Nop{}
	}
	if len(opts.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: empty feature list", ErrShapeMismatch)
	}
	hidden := opts.HiddenSizes
	if len(hidden) == 0 {
		hidden = DefaultHiddenSizes
	}

	net, modelSrc, err := loadNetwork(opts, hidden)
	if err != nil {
		return nil, err
	}
	sc, scalerSrc, err := loadScaler(opts)
	if err != nil {
		return nil, err
	}
	return &Artifacts{Scaler: sc, Network: net, ScalerSource: scalerSrc, ModelSource: modelSrc}, nil
}

func loadNetwork(opts LoadOptions, hidden []int) (*Network, Source, error) {
	inputSize := len(opts.FeatureNames)
	f, err := os.Open(opts.WeightsPath)
	if errors.Is(err, fs.ErrNotExist) {
		opts.Log.Warnf("model file %s not found, using untrained model", opts.WeightsPath)
		net, err := NewUntrainedNetwork(inputSize, hidden, opts.Seed)
		if err != nil {
			return nil, "", err
		}
		return net, SourceUntrained, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("open weights: %w", err)
	}
	defer func() { _ = f.Close() }()

	wf, err := DecodeWeights(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", opts.WeightsPath, err)
	}
	if wf.InputSize != 0 && wf.InputSize != inputSize {
		return nil, "", fmt.Errorf("%s: %w: weights expect %d features, service has %d", opts.WeightsPath, ErrShapeMismatch, wf.InputSize, inputSize)
	}
	if len(wf.HiddenSizes) > 0 {
		hidden = wf.HiddenSizes
	}
	net, err := NewNetwork(inputSize, hidden, wf.Tensors)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", opts.WeightsPath, err)
	}
	opts.Log.Infof("model loaded from %s (hidden layers %v)", opts.WeightsPath, hidden)
	return net, SourceFile, nil
}

func loadScaler(opts LoadOptions) (*Scaler, Source, error) {
	f, err := os.Open(opts.ScalerPath)
	if errors.Is(err, fs.ErrNotExist) {
		sc, err := FitScaler([][]float64{opts.SyntheticSample})
		if err != nil {
			return nil, "", fmt.Errorf("fit synthetic scaler: %w", err)
		}
		if sc.Len() != len(opts.FeatureNames) {
			return nil, "", fmt.Errorf("%w: synthetic sample has %d features, want %d", ErrShapeMismatch, sc.Len(), len(opts.FeatureNames))
		}
		opts.Log.Warnf("scaler file %s not found, fitted a synthetic scaler", opts.ScalerPath)
		return sc, SourceSynthetic, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("open scaler: %w", err)
	}
	defer func() { _ = f.Close() }()

	sf, err := DecodeScaler(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", opts.ScalerPath, err)
	}
	if len(sf.FeatureNames) > 0 && !slices.Equal(sf.FeatureNames, opts.FeatureNames) {
		return nil, "", fmt.Errorf("%s: %w: scaler fitted on %v", opts.ScalerPath, ErrShapeMismatch, sf.FeatureNames)
	}
	scale := sf.Scale
	if len(scale) == 0 && len(sf.Var) > 0 {
		scale = make([]float64, len(sf.Var))
		for i, v := range sf.Var {
			scale[i] = math.Sqrt(v)
		}
	}
	sc, err := NewScaler(sf.Mean, scale)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", opts.ScalerPath, err)
	}
	if sc.Len() != len(opts.FeatureNames) {
		return nil, "", fmt.Errorf("%s: %w: scaler has %d features, want %d", opts.ScalerPath, ErrShapeMismatch, sc.Len(), len(opts.FeatureNames))
	}
	opts.Log.Infof("scaler loaded from %s", opts.ScalerPath)
	return sc, SourceFile, nil
}

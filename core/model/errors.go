package model

import "errors"

var (
	// ErrShapeMismatch indicates a vector or tensor with unexpected dimensions.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrMissingTensor indicates a weights file without a required tensor.
	ErrMissingTensor = errors.New("missing tensor")
	// ErrNonFinite indicates NaN or Inf values in an artifact or an output.
	ErrNonFinite = errors.New("non-finite value")
)

// Package model holds the inference artifacts of the fare predictor: the
// fitted standard scaler and the feed-forward network, plus their loaders.
// Both are immutable once built and safe for concurrent use.
package model

package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeatures = []string{"a", "b"}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func baseOptions(dir string) LoadOptions {
	return LoadOptions{
		WeightsPath:     filepath.Join(dir, "weights.json"),
		ScalerPath:      filepath.Join(dir, "scaler.json"),
		FeatureNames:    testFeatures,
		HiddenSizes:     []int{2},
		Seed:            3,
		SyntheticSample: []float64{10, 20},
	}
}

func TestLoad_MissingFilesDegrade(t *testing.T) {
	art, err := Load(baseOptions(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, SourceUntrained, art.ModelSource)
	assert.Equal(t, SourceSynthetic, art.ScalerSource)
	assert.Equal(t, 2, art.Network.InputSize())

	out, err := art.Scaler.Transform([]float64{10, 20})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, out)

	_, err = art.Network.Forward(out)
	assert.NoError(t, err)
}

func TestLoad_FromFiles(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	writeJSON(t, opts.WeightsPath, WeightsFile{HiddenSizes: []int{2}, Tensors: tinyTensors()})
	writeJSON(t, opts.ScalerPath, ScalerFile{Mean: []float64{1, 1}, Scale: []float64{2, 2}, FeatureNames: testFeatures})

	art, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, SourceFile, art.ModelSource)
	assert.Equal(t, SourceFile, art.ScalerSource)

	x, err := art.Scaler.Transform([]float64{7, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, x)
}

func TestLoad_ScalerFromVariance(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	writeJSON(t, opts.ScalerPath, ScalerFile{Mean: []float64{0, 0}, Var: []float64{4, 9}})

	art, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, art.Scaler.Scale())
}

func TestLoad_WeightsArchitectureOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	opts.HiddenSizes = []int{8, 4}
	writeJSON(t, opts.WeightsPath, WeightsFile{InputSize: 2, HiddenSizes: []int{2}, Tensors: tinyTensors()})

	art, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, art.Network.HiddenSizes())
}

func TestLoad_CorruptWeightsIsFatal(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	require.NoError(t, os.WriteFile(opts.WeightsPath, []byte("{not json"), 0o644))
	_, err := Load(opts)
	assert.Error(t, err)
}

func TestLoad_EmptyWeightsIsFatal(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	writeJSON(t, opts.WeightsPath, map[string]any{"tensors": map[string]any{}})
	_, err := Load(opts)
	assert.True(t, errors.Is(err, ErrMissingTensor))
}

func TestLoad_WrongInputSizeIsFatal(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	writeJSON(t, opts.WeightsPath, WeightsFile{InputSize: 5, Tensors: tinyTensors()})
	_, err := Load(opts)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestLoad_ScalerFeatureNamesMismatch(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	writeJSON(t, opts.ScalerPath, ScalerFile{Mean: []float64{0, 0}, Scale: []float64{1, 1}, FeatureNames: []string{"b", "a"}})
	_, err := Load(opts)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestLoad_ScalerWrongWidth(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir)
	writeJSON(t, opts.ScalerPath, ScalerFile{Mean: []float64{0, 0, 0}, Scale: []float64{1, 1, 1}})
	_, err := Load(opts)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestLoad_RequiresFeatures(t *testing.T) {
	opts := baseOptions(t.TempDir())
	opts.FeatureNames = nil
	_, err := Load(opts)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

package backend

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftcheck/adapters/backend/dense"
	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
)

func TestFactoryFixed(t *testing.T) {
	b, err := NewFactory().Create(classifier.BackendFixed, "fixed://0.8", crafting.DisciplineSmithing)
	require.NoError(t, err)
	p, err := b.Predict(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.8, p)
}

func TestFactoryFixedBadPath(t *testing.T) {
	_, err := NewFactory().Create(classifier.BackendFixed, "fixed://nope", crafting.DisciplineSmithing)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestFactoryDense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refining.json")
	require.NoError(t, dense.WriteModel(path, &dense.Model{
		Discipline: crafting.DisciplineRefining,
		InputSize:  19,
		Layers: []dense.LayerSpec{
			{Weights: [][]float64{make([]float64, 19)}, Bias: []float64{0}, Activation: dense.ActivationLinear},
		},
	}))

	b, err := NewFactory().Create(classifier.BackendDense, path, crafting.DisciplineRefining)
	require.NoError(t, err)
	assert.True(t, b.IsLoaded())
	p, err := b.Predict(make([]float32, 19))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)
}

func TestFactoryDenseErrors(t *testing.T) {
	f := NewFactory()
	_, err := f.Create(classifier.BackendDense, "", crafting.DisciplineAlchemy)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))

	_, err = f.Create(classifier.BackendDense, filepath.Join(t.TempDir(), "missing.json"), crafting.DisciplineAlchemy)
	assert.Error(t, err)

	_, err = f.Create("onnx", "model.onnx", crafting.DisciplineAlchemy)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

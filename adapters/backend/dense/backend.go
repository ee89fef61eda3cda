package dense

import (
	"fmt"
	"log"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
)

type layer struct {
	w          *mat.Dense
	b          *mat.VecDense
	activation string
}

// Backend runs a small feed-forward network in process with gonum
type Backend struct {
	mu         sync.RWMutex
	discipline crafting.Discipline
	inputSize  int
	layers     []layer
	loaded     bool
}

// Load reads a model file and builds a backend for discipline d.
// A model tagged with another discipline is rejected.
func Load(path string, d crafting.Discipline) (*Backend, error) {
	m, err := ReadModel(path)
	if err != nil {
		return nil, err
	}
	b, err := New(m, d)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", path)
	}
	log.Printf("[DenseBackend] Loaded %s model from %s (%d layers, input %d)", d, path, len(b.layers), b.inputSize)
	return b, nil
}

// New builds a backend from an in-memory model
func New(m *Model, d crafting.Discipline) (*Backend, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Discipline != "" && m.Discipline != d {
		return nil, errors.ModelInvalid(fmt.Sprintf("model trained for %s, not %s", m.Discipline, d))
	}

	layers := make([]layer, len(m.Layers))
	for i, spec := range m.Layers {
		rows, cols := len(spec.Weights), len(spec.Weights[0])
		flat := make([]float64, 0, rows*cols)
		for _, row := range spec.Weights {
			flat = append(flat, row...)
		}
		layers[i] = layer{
			w:          mat.NewDense(rows, cols, flat),
			b:          mat.NewVecDense(rows, append([]float64(nil), spec.Bias...)),
			activation: spec.Activation,
		}
	}
	return &Backend{
		discipline: d,
		inputSize:  m.InputSize,
		layers:     layers,
		loaded:     true,
	}, nil
}

// Predict runs the forward pass. The output is squashed with a sigmoid unless
// the last layer already applies one.
func (b *Backend) Predict(tensor []float32) (float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.loaded {
		return 0, fmt.Errorf("%s dense backend not loaded", b.discipline)
	}
	if len(tensor) != b.inputSize {
		return 0, errors.InvalidInput(fmt.Sprintf("tensor length %d, model expects %d", len(tensor), b.inputSize))
	}

	in := make([]float64, len(tensor))
	for i, v := range tensor {
		in[i] = float64(v)
	}
	if floats.HasNaN(in) {
		return 0, errors.InvalidInput("tensor contains NaN")
	}

	x := mat.NewVecDense(len(in), in)
	for _, l := range b.layers {
		r, _ := l.w.Dims()
		y := mat.NewVecDense(r, nil)
		y.MulVec(l.w, x)
		y.AddVec(y, l.b)
		activate(y, l.activation)
		x = y
	}

	out := x.AtVec(0)
	if b.layers[len(b.layers)-1].activation != ActivationSigmoid {
		out = sigmoid(out)
	}
	if math.IsNaN(out) {
		return 0, fmt.Errorf("%s model produced NaN", b.discipline)
	}
	return out, nil
}

// IsLoaded reports whether the weights are resident
func (b *Backend) IsLoaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Close drops the weights
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.layers = nil
	b.loaded = false
	return nil
}

// InputSize is the tensor length the model accepts
func (b *Backend) InputSize() int {
	return b.inputSize
}

func activate(v *mat.VecDense, name string) {
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		switch name {
		case ActivationReLU:
			x = math.Max(0, x)
		case ActivationSigmoid:
			x = sigmoid(x)
		case ActivationTanh:
			x = math.Tanh(x)
		}
		v.SetVec(i, x)
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

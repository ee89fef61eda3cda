package dense

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
)

// Activation names accepted in model files
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
	ActivationTanh    = "tanh"
)

// Model is the JSON artifact exported by the training pipeline
type Model struct {
	Discipline crafting.Discipline `json:"discipline"`
	Version    string              `json:"version,omitempty"`
	InputSize  int                 `json:"input_size"`
	Layers     []LayerSpec         `json:"layers"`
}

// LayerSpec is one fully connected layer; Weights is out×in
type LayerSpec struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// ReadModel loads and validates a model artifact
func ReadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model %s", path)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WithCode(errors.CodeModelInvalid, fmt.Errorf("failed to parse model %s: %w", path, err))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks layer shapes chain from InputSize down to a single output
func (m *Model) Validate() error {
	if m.InputSize <= 0 {
		return errors.ModelInvalid("input_size must be positive")
	}
	if len(m.Layers) == 0 {
		return errors.ModelInvalid("model has no layers")
	}
	in := m.InputSize
	for i, l := range m.Layers {
		if len(l.Weights) == 0 {
			return errors.ModelInvalid(fmt.Sprintf("layer %d has no weights", i))
		}
		for r, row := range l.Weights {
			if len(row) != in {
				return errors.ModelInvalid(fmt.Sprintf("layer %d row %d has %d inputs, want %d", i, r, len(row), in))
			}
			for _, w := range row {
				if math.IsNaN(w) || math.IsInf(w, 0) {
					return errors.ModelInvalid(fmt.Sprintf("layer %d has non-finite weight", i))
				}
			}
		}
		if len(l.Bias) != len(l.Weights) {
			return errors.ModelInvalid(fmt.Sprintf("layer %d bias has %d entries, want %d", i, len(l.Bias), len(l.Weights)))
		}
		switch l.Activation {
		case ActivationLinear, ActivationReLU, ActivationSigmoid, ActivationTanh, "":
		default:
			return errors.ModelInvalid(fmt.Sprintf("layer %d: unknown activation %q", i, l.Activation))
		}
		in = len(l.Weights)
	}
	if in != 1 {
		return errors.ModelInvalid(fmt.Sprintf("final layer has %d outputs, want 1", in))
	}
	return nil
}

// WriteModel stores a model artifact, used by tooling and tests
func WriteModel(path string, m *Model) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

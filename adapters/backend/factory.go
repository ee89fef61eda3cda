package backend

import (
	"fmt"
	"log"

	"craftcheck/adapters/backend/dense"
	"craftcheck/adapters/backend/fixed"
	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
	"craftcheck/ports"
)

// Factory builds backends by kind
type Factory struct{}

// NewFactory creates the default backend factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create implements ports.BackendFactory
func (f *Factory) Create(kind classifier.BackendKind, modelPath string, d crafting.Discipline) (ports.Backend, error) {
	switch kind {
	case classifier.BackendFixed:
		p, err := fixed.ParseModelPath(modelPath)
		if err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, err)
		}
		log.Printf("[BackendFactory] %s: fixed backend p=%.3f", d, p)
		return fixed.New(p), nil
	case classifier.BackendDense:
		if modelPath == "" {
			return nil, errors.ConfigInvalid(fmt.Sprintf("%s: dense backend needs a model path", d))
		}
		return dense.Load(modelPath, d)
	}
	return nil, errors.ConfigInvalid(fmt.Sprintf("%s: unknown backend kind %q", d, kind))
}

var _ ports.BackendFactory = (*Factory)(nil)

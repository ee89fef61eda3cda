package ports

import (
	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
)

// Backend turns a flat tensor into a probability in [0,1].
// Concurrent Predict calls are not required to be safe.
type Backend interface {
	Predict(tensor []float32) (float64, error)
	IsLoaded() bool
	Close() error
}

// BackendFactory constructs one backend per discipline
type BackendFactory interface {
	Create(kind classifier.BackendKind, modelPath string, d crafting.Discipline) (Backend, error)
}

// BackendFactoryFunc adapts a function to BackendFactory
type BackendFactoryFunc func(kind classifier.BackendKind, modelPath string, d crafting.Discipline) (Backend, error)

// Create calls f
func (f BackendFactoryFunc) Create(kind classifier.BackendKind, modelPath string, d crafting.Discipline) (Backend, error) {
	return f(kind, modelPath, d)
}

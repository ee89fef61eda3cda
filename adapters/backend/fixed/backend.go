package fixed

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"craftcheck/domain/classifier"
)

// Scheme prefixes model paths that carry a literal probability, e.g. "fixed://0.73"
const Scheme = "fixed://"

// Backend returns the same probability for every tensor. It stands in for a
// real model in tests, dry runs and environments without model artifacts.
type Backend struct {
	mu          sync.Mutex
	probability float64
	err         error
	calls       int
	lastLen     int
	closed      bool
}

// New creates a backend that always predicts p
func New(p float64) *Backend {
	return &Backend{probability: p}
}

// NewFailing creates a backend whose every prediction fails with err
func NewFailing(err error) *Backend {
	return &Backend{err: err}
}

// Predict returns the configured probability
func (b *Backend) Predict(tensor []float32) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, fmt.Errorf("fixed backend closed")
	}
	b.calls++
	b.lastLen = len(tensor)
	if b.err != nil {
		return 0, b.err
	}
	return b.probability, nil
}

// IsLoaded is true until Close
func (b *Backend) IsLoaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

// Close releases the backend
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Calls returns how many predictions were requested
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// LastTensorLen returns the length of the most recent tensor
func (b *Backend) LastTensorLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastLen
}

// ParseModelPath reads the probability from "fixed://<p>" or a bare number.
// An empty path means the default threshold.
func ParseModelPath(path string) (float64, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(path), Scheme))
	if raw == "" {
		return classifier.DefaultThreshold, nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fixed model path %q: %w", path, err)
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("fixed probability %v outside [0,1]", p)
	}
	return p, nil
}

package classifier

import (
	"sync"

	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	"craftcheck/ports"
)

// slot is the independent state of one discipline
type slot struct {
	mu        sync.RWMutex
	config    classifier.Config
	backend   ports.Backend
	warmed    bool
	lastError string
}

func newSlot(d crafting.Discipline) *slot {
	return &slot{config: classifier.DefaultConfig(d)}
}

// snapshot returns what a validation call needs without holding the lock during Predict
func (s *slot) snapshot() (classifier.Config, ports.Backend, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.backend, s.lastError
}

func (s *slot) setError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

// swapBackend installs b and returns the previous backend for the caller to close
func (s *slot) swapBackend(b ports.Backend, lastError string) ports.Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.backend
	s.backend = b
	s.warmed = false
	s.lastError = lastError
	return old
}

func (s *slot) status() classifier.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loaded := s.backend != nil && s.backend.IsLoaded()
	return classifier.Status{
		Loaded:         loaded,
		Enabled:        s.config.Enabled,
		Threshold:      s.config.Threshold,
		BackendHealthy: loaded && s.lastError == "",
		Warmed:         s.warmed,
		BackendKind:    s.config.BackendKind,
		ModelPath:      s.config.ModelPath,
		LastError:      s.lastError,
	}
}

// reset closes the backend and restores defaults
func (s *slot) reset(d crafting.Discipline) ports.Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.backend
	s.backend = nil
	s.config = classifier.DefaultConfig(d)
	s.warmed = false
	s.lastError = ""
	return old
}

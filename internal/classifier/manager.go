package classifier

import (
	stderrors "errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	"craftcheck/internal"
	"craftcheck/internal/errors"
	"craftcheck/internal/preprocess"
	"craftcheck/ports"
)

var logger = internal.DefaultLogger.For("ClassifierManager")

// Manager sequences preprocessing, inference and thresholding for every
// discipline. Disciplines hold independent state, so concurrent validation of
// different disciplines never interferes. Concurrent calls to the same
// discipline reach its backend concurrently; callers serialize them when the
// backend is not safe for that.
type Manager struct {
	mu          sync.Mutex // lifecycle: Initialize, UpdateConfig, Preload, Unload
	initialized atomic.Bool
	factory     ports.BackendFactory
	encoders    *preprocess.Encoders
	slots       map[crafting.Discipline]*slot
}

// NewManager creates an uninitialized manager. lookup may be nil, in which case
// every material encodes as the neutral default.
func NewManager(lookup ports.MaterialLookup) *Manager {
	slots := make(map[crafting.Discipline]*slot, len(crafting.AllDisciplines()))
	for _, d := range crafting.AllDisciplines() {
		slots[d] = newSlot(d)
	}
	return &Manager{
		encoders: preprocess.NewEncoders(lookup),
		slots:    slots,
	}
}

// Encoders exposes the preprocessing pipeline the manager feeds its backends with
func (m *Manager) Encoders() *preprocess.Encoders {
	return m.encoders
}

// IsInitialized reports whether Initialize has run since construction or the last Unload
func (m *Manager) IsInitialized() bool {
	return m.initialized.Load()
}

// Initialize builds one backend per discipline through factory. Each override
// is merged field by field onto DefaultConfig; unset fields keep the default
// threshold, enabled flag, backend kind and model path. A discipline whose
// backend cannot be built is recorded in its status and left unloaded while the
// others keep going; an error is returned only when every discipline failed.
// Calling Initialize again closes the previous backends first.
func (m *Manager) Initialize(factory ports.BackendFactory, overrides map[crafting.Discipline]classifier.ConfigOverride) error {
	if factory == nil {
		return errors.ConfigInvalid("backend factory is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized.Load() {
		m.unloadLocked()
	}
	m.factory = factory

	start := time.Now()
	var failures []error
	for _, d := range crafting.AllDisciplines() {
		cfg := overrides[d].Apply(classifier.DefaultConfig(d))
		s := m.slots[d]
		s.mu.Lock()
		s.config = cfg
		s.mu.Unlock()

		if err := cfg.Validate(); err != nil {
			err = errors.WithCode(errors.CodeConfigInvalid, err)
			log.Printf("[ClassifierManager] %s: invalid config: %v", d, err)
			s.swapBackend(nil, err.Error())
			failures = append(failures, err)
			continue
		}

		backend, err := m.build(cfg)
		if err != nil {
			log.Printf("[ClassifierManager] %s: backend construction failed: %v", d, err)
			s.swapBackend(nil, err.Error())
			failures = append(failures, err)
			continue
		}
		s.swapBackend(backend, "")
		log.Printf("[ClassifierManager] %s: %s backend ready (threshold=%.2f, enabled=%v)", d, cfg.BackendKind, cfg.Threshold, cfg.Enabled)
	}

	m.initialized.Store(true)
	log.Printf("[ClassifierManager] Initialized %d/%d disciplines in %v",
		len(m.slots)-len(failures), len(m.slots), time.Since(start))

	if len(failures) == len(m.slots) {
		return errors.WithCode(errors.CodeBackendUnavailable,
			errors.Wrap(stderrors.Join(failures...), "no classifier backend could be constructed"))
	}
	return nil
}

// build asks the factory for a backend, treating a factory panic as a failure
func (m *Manager) build(cfg classifier.Config) (b ports.Backend, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("backend factory panicked: %v", r)
		}
	}()
	b, err = m.factory.Create(cfg.BackendKind, cfg.ModelPath, cfg.Discipline)
	if err != nil {
		return nil, errors.BackendUnavailable(string(cfg.Discipline), err)
	}
	if b == nil {
		return nil, errors.BackendUnavailable(string(cfg.Discipline), fmt.Errorf("factory returned no backend"))
	}
	return b, nil
}

// ValidateSmithing classifies a grid placement
func (m *Manager) ValidateSmithing(in crafting.SmithingInput) classifier.Result {
	return m.validate(crafting.DisciplineSmithing, func() []float32 { return m.encoders.Grid.Encode(in) })
}

// ValidateAdornment classifies a vertex/shape graph
func (m *Manager) ValidateAdornment(in crafting.AdornmentInput) classifier.Result {
	return m.validate(crafting.DisciplineAdornment, func() []float32 { return m.encoders.Graph.Encode(in) })
}

// ValidateAlchemy classifies six independent slots
func (m *Manager) ValidateAlchemy(in crafting.AlchemyInput) classifier.Result {
	return m.validate(crafting.DisciplineAlchemy, func() []float32 { return m.encoders.Alchemy.Extract(in) })
}

// ValidateRefining classifies a core and surrounding group
func (m *Manager) ValidateRefining(in crafting.RefiningInput) classifier.Result {
	return m.validate(crafting.DisciplineRefining, func() []float32 { return m.encoders.Refining.Extract(in) })
}

// ValidateEngineering classifies typed slot assignments
func (m *Manager) ValidateEngineering(in crafting.EngineeringInput) classifier.Result {
	return m.validate(crafting.DisciplineEngineering, func() []float32 { return m.encoders.Engineering.Extract(in) })
}

// validate never panics and never returns an error to the caller: every
// failure becomes an invalid Result carrying the message
func (m *Manager) validate(d crafting.Discipline, encode func() []float32) (res classifier.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ClassifierManager] %s: recovered panic: %v", d, r)
			err := errors.PredictionFailed(string(d), fmt.Errorf("panic: %v", r))
			m.slots[d].setError(err.Error())
			res = classifier.ErrorResult(d, err)
		}
	}()

	if !m.initialized.Load() {
		return classifier.ErrorResult(d, errors.NotInitialized())
	}
	s := m.slots[d]
	cfg, backend, lastErr := s.snapshot()
	if !cfg.Enabled {
		return classifier.ErrorResult(d, errors.DisciplineDisabled(string(d)))
	}
	if backend == nil || !backend.IsLoaded() {
		var cause error
		if lastErr != "" {
			cause = stderrors.New(lastErr)
		}
		return classifier.ErrorResult(d, errors.BackendUnavailable(string(d), cause))
	}

	tensor := encode()
	p, err := backend.Predict(tensor)
	if err == nil && (math.IsNaN(p) || p < 0 || p > 1) {
		err = fmt.Errorf("backend returned probability %v outside [0,1]", p)
	}
	if err != nil {
		err = errors.PredictionFailed(string(d), err)
		s.setError(err.Error())
		return classifier.ErrorResult(d, err)
	}
	if lastErr != "" {
		s.setError("")
	}
	res = classifier.NewResult(d, p, cfg.Threshold)
	logger.Debug("%s: p=%.4f threshold=%.2f valid=%v", d, res.Probability, cfg.Threshold, res.Valid)
	return res
}

// Preload runs one zero-tensor prediction through every loaded, enabled
// backend to absorb first-call latency. Results are discarded.
func (m *Manager) Preload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized.Load() {
		return errors.NotInitialized()
	}

	for _, d := range crafting.AllDisciplines() {
		s := m.slots[d]
		cfg, backend, _ := s.snapshot()
		if !cfg.Enabled || backend == nil || !backend.IsLoaded() {
			continue
		}
		start := time.Now()
		if err := warm(backend, preprocess.TensorLen(d)); err != nil {
			logger.Warn("%s: preload failed: %v", d, err)
			s.setError(errors.PredictionFailed(string(d), err).Error())
			continue
		}
		s.mu.Lock()
		s.warmed = true
		s.lastError = ""
		s.mu.Unlock()
		log.Printf("[ClassifierManager] %s: warmed in %v", d, time.Since(start))
	}
	return nil
}

func warm(b ports.Backend, n int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	_, err = b.Predict(make([]float32, n))
	return err
}

// UpdateConfig changes one discipline at runtime. A new model path, or any
// model path while the discipline is unloaded, rebuilds its backend through
// the factory given to Initialize; if the rebuild fails the discipline is left
// unloaded and the error returned.
func (m *Manager) UpdateConfig(d crafting.Discipline, u classifier.ConfigUpdate) error {
	s, ok := m.slots[d]
	if !ok {
		return errors.InvalidInput(fmt.Sprintf("unknown discipline: %q", d))
	}
	if u.Threshold != nil && (*u.Threshold < 0 || *u.Threshold > 1) {
		return errors.ConfigInvalid(fmt.Sprintf("threshold %.4f outside [0,1]", *u.Threshold))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized.Load() {
		return errors.NotInitialized()
	}

	s.mu.Lock()
	if u.Threshold != nil {
		s.config.Threshold = *u.Threshold
	}
	if u.Enabled != nil {
		s.config.Enabled = *u.Enabled
	}
	// an unloaded slot retries the same path, e.g. after the model file was fixed
	rebuild := u.ModelPath != nil &&
		(*u.ModelPath != s.config.ModelPath || s.backend == nil || !s.backend.IsLoaded())
	if rebuild {
		s.config.ModelPath = *u.ModelPath
	}
	cfg := s.config
	s.mu.Unlock()
	log.Printf("[ClassifierManager] %s: config updated (threshold=%.2f, enabled=%v, model=%s)", d, cfg.Threshold, cfg.Enabled, cfg.ModelPath)

	if !rebuild {
		return nil
	}

	backend, err := m.build(cfg)
	lastErr := ""
	if err != nil {
		lastErr = err.Error()
	}
	if old := s.swapBackend(backend, lastErr); old != nil {
		if cerr := old.Close(); cerr != nil {
			log.Printf("[ClassifierManager] %s: closing previous backend: %v", d, cerr)
		}
	}
	if err != nil {
		log.Printf("[ClassifierManager] %s: rebuild failed: %v", d, err)
		return err
	}
	log.Printf("[ClassifierManager] %s: backend rebuilt from %s", d, cfg.ModelPath)
	return nil
}

// GetStatus returns a snapshot of every discipline
func (m *Manager) GetStatus() map[crafting.Discipline]classifier.Status {
	out := make(map[crafting.Discipline]classifier.Status, len(m.slots))
	for d, s := range m.slots {
		out[d] = s.status()
	}
	return out
}

// Config returns the current config of one discipline
func (m *Manager) Config(d crafting.Discipline) (classifier.Config, bool) {
	s, ok := m.slots[d]
	if !ok {
		return classifier.Config{}, false
	}
	cfg, _, _ := s.snapshot()
	return cfg, true
}

// Unload closes every backend and returns the manager to its uninitialized state
func (m *Manager) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadLocked()
	log.Printf("[ClassifierManager] Unloaded")
}

func (m *Manager) unloadLocked() {
	m.initialized.Store(false)
	for _, d := range crafting.AllDisciplines() {
		if b := m.slots[d].reset(d); b != nil {
			if err := b.Close(); err != nil {
				log.Printf("[ClassifierManager] %s: close failed: %v", d, err)
			}
		}
	}
	m.factory = nil
}

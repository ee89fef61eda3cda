package classifier

import (
	"fmt"
	"strings"

	"craftcheck/domain/crafting"
)

// BackendKind selects which inference backend a discipline uses
type BackendKind string

const (
	BackendFixed BackendKind = "fixed" // constant probability, for tests and dry runs
	BackendDense BackendKind = "dense" // pure-Go feed-forward network
)

// ParseBackendKind parses a backend kind name
func ParseBackendKind(s string) (BackendKind, error) {
	k := BackendKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case BackendFixed, BackendDense:
		return k, nil
	}
	return "", fmt.Errorf("unknown backend kind: %q", s)
}

// DefaultThreshold is the decision boundary used when none is configured
const DefaultThreshold = 0.5

// Config is the per-discipline tuning held by the manager
type Config struct {
	Discipline  crafting.Discipline `json:"discipline" yaml:"discipline"`
	BackendKind BackendKind         `json:"backend_kind" yaml:"backend_kind"`
	ModelPath   string              `json:"model_path" yaml:"model_path"`
	Threshold   float64             `json:"threshold" yaml:"threshold"`
	Enabled     bool                `json:"enabled" yaml:"enabled"`
}

// DefaultConfig returns the defaults for one discipline
func DefaultConfig(d crafting.Discipline) Config {
	return Config{
		Discipline:  d,
		BackendKind: BackendDense,
		ModelPath:   fmt.Sprintf("models/%s.json", d),
		Threshold:   DefaultThreshold,
		Enabled:     true,
	}
}

// DefaultConfigs returns defaults for every discipline
func DefaultConfigs() map[crafting.Discipline]Config {
	out := make(map[crafting.Discipline]Config, len(crafting.AllDisciplines()))
	for _, d := range crafting.AllDisciplines() {
		out[d] = DefaultConfig(d)
	}
	return out
}

// Validate checks the config is usable
func (c Config) Validate() error {
	if !c.Discipline.IsValid() {
		return fmt.Errorf("unknown discipline: %q", c.Discipline)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("%s: threshold %.4f outside [0,1]", c.Discipline, c.Threshold)
	}
	if _, err := ParseBackendKind(string(c.BackendKind)); err != nil {
		return fmt.Errorf("%s: %w", c.Discipline, err)
	}
	return nil
}

// ConfigOverride is an initialization override; nil fields keep the default
type ConfigOverride struct {
	BackendKind *BackendKind `json:"backend_kind,omitempty" yaml:"backend_kind,omitempty"`
	ModelPath   *string      `json:"model_path,omitempty" yaml:"model_path,omitempty"`
	Threshold   *float64     `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Enabled     *bool        `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// Apply merges the set fields onto base
func (o ConfigOverride) Apply(base Config) Config {
	if o.BackendKind != nil {
		base.BackendKind = *o.BackendKind
	}
	if o.ModelPath != nil {
		base.ModelPath = *o.ModelPath
	}
	if o.Threshold != nil {
		base.Threshold = *o.Threshold
	}
	if o.Enabled != nil {
		base.Enabled = *o.Enabled
	}
	return base
}

// OverrideOf turns a fully resolved config into an override that sets every field
func OverrideOf(c Config) ConfigOverride {
	return ConfigOverride{
		BackendKind: &c.BackendKind,
		ModelPath:   &c.ModelPath,
		Threshold:   &c.Threshold,
		Enabled:     &c.Enabled,
	}
}

// OverridesOf converts resolved configs, as produced by the config loader
func OverridesOf(cfgs map[crafting.Discipline]Config) map[crafting.Discipline]ConfigOverride {
	out := make(map[crafting.Discipline]ConfigOverride, len(cfgs))
	for d, c := range cfgs {
		out[d] = OverrideOf(c)
	}
	return out
}

// ConfigUpdate carries the optional fields of a runtime reconfiguration
type ConfigUpdate struct {
	Threshold *float64 `json:"threshold,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty"`
	ModelPath *string  `json:"model_path,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u ConfigUpdate) IsEmpty() bool {
	return u.Threshold == nil && u.Enabled == nil && u.ModelPath == nil
}

// Result is the outcome of one validation call
type Result struct {
	Discipline  crafting.Discipline `json:"discipline"`
	Valid       bool                `json:"valid"`
	Probability float64             `json:"probability"`
	Confidence  float64             `json:"confidence"`
	Error       string              `json:"error,omitempty"`
}

// NewResult thresholds a backend probability
func NewResult(d crafting.Discipline, probability, threshold float64) Result {
	p := clamp01(probability)
	return Result{
		Discipline:  d,
		Valid:       p >= threshold,
		Probability: p,
		Confidence:  Confidence(p),
	}
}

// ErrorResult builds the invalid result for a failed call
func ErrorResult(d crafting.Discipline, err error) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result{
		Discipline:  d,
		Valid:       false,
		Probability: 0,
		Confidence:  Confidence(0),
		Error:       msg,
	}
}

// Failed reports whether the result came from an error path
func (r Result) Failed() bool {
	return r.Error != ""
}

// Confidence is the distance of p from the decision boundary, expressed as a probability
func Confidence(p float64) float64 {
	if p >= 0.5 {
		return p
	}
	return 1 - p
}

func clamp01(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Status is a diagnostic snapshot of one discipline
type Status struct {
	Loaded         bool        `json:"loaded"`
	Enabled        bool        `json:"enabled"`
	Threshold      float64     `json:"threshold"`
	BackendHealthy bool        `json:"backend_healthy"`
	Warmed         bool        `json:"warmed"`
	BackendKind    BackendKind `json:"backend_kind"`
	ModelPath      string      `json:"model_path"`
	LastError      string      `json:"last_error,omitempty"`
}

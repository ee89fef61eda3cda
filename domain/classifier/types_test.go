package classifier

import (
	"errors"
	"math"
	"testing"

	"craftcheck/domain/crafting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceIsDistanceFromBoundary(t *testing.T) {
	cases := []struct {
		p    float64
		want float64
	}{
		{0.0, 1.0},
		{0.2, 0.8},
		{0.5, 0.5},
		{0.73, 0.73},
		{1.0, 1.0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Confidence(tc.p), 1e-12, "p=%v", tc.p)
	}
}

func TestNewResultThresholds(t *testing.T) {
	r := NewResult(crafting.DisciplineAlchemy, 0.6, 0.6)
	assert.True(t, r.Valid, "probability equal to threshold is valid")
	assert.InDelta(t, 0.6, r.Confidence, 1e-12)
	assert.Empty(t, r.Error)

	r = NewResult(crafting.DisciplineAlchemy, 0.3, 0.5)
	assert.False(t, r.Valid)
	assert.InDelta(t, 0.7, r.Confidence, 1e-12)
}

func TestNewResultClampsProbability(t *testing.T) {
	assert.Equal(t, 1.0, NewResult(crafting.DisciplineSmithing, 1.7, 0.5).Probability)
	assert.Equal(t, 0.0, NewResult(crafting.DisciplineSmithing, -0.1, 0.5).Probability)
	assert.Equal(t, 0.0, NewResult(crafting.DisciplineSmithing, math.NaN(), 0.5).Probability)
}

func TestErrorResultIsNeverValid(t *testing.T) {
	r := ErrorResult(crafting.DisciplineRefining, errors.New("boom"))
	assert.False(t, r.Valid)
	assert.True(t, r.Failed())
	assert.Equal(t, "boom", r.Error)
	assert.Equal(t, Confidence(r.Probability), r.Confidence)

	r = ErrorResult(crafting.DisciplineRefining, nil)
	assert.True(t, r.Failed())
}

func TestDefaultConfigs(t *testing.T) {
	cfgs := DefaultConfigs()
	require.Len(t, cfgs, len(crafting.AllDisciplines()))
	for d, c := range cfgs {
		assert.Equal(t, d, c.Discipline)
		assert.Equal(t, DefaultThreshold, c.Threshold)
		assert.True(t, c.Enabled)
		assert.NoError(t, c.Validate())
	}
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig(crafting.DisciplineEngineering)
	c.Threshold = 1.2
	assert.Error(t, c.Validate())

	c = DefaultConfig(crafting.DisciplineEngineering)
	c.BackendKind = "onnx"
	assert.Error(t, c.Validate())

	c = DefaultConfig("weaving")
	assert.Error(t, c.Validate())
}

func TestConfigOverrideApply(t *testing.T) {
	base := DefaultConfig(crafting.DisciplineAlchemy)
	assert.Equal(t, base, ConfigOverride{}.Apply(base))

	off := false
	got := ConfigOverride{Enabled: &off}.Apply(base)
	assert.False(t, got.Enabled)
	assert.Equal(t, DefaultThreshold, got.Threshold)
	assert.Equal(t, base.ModelPath, got.ModelPath)

	full := Config{Discipline: crafting.DisciplineAlchemy, BackendKind: BackendFixed, ModelPath: "fixed://0.3", Threshold: 0.7, Enabled: true}
	assert.Equal(t, full, OverrideOf(full).Apply(base))
	assert.Equal(t, full, OverridesOf(map[crafting.Discipline]Config{crafting.DisciplineAlchemy: full})[crafting.DisciplineAlchemy].Apply(base))
}

package classifier

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	apperrors "craftcheck/internal/errors"
	"craftcheck/internal/preprocess"
	"craftcheck/internal/testkit"
	"craftcheck/ports"
)

// MockBackend is a testify mock of ports.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Predict(tensor []float32) (float64, error) {
	args := m.Called(tensor)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockBackend) IsLoaded() bool {
	return m.Called().Bool(0)
}

func (m *MockBackend) Close() error {
	return m.Called().Error(0)
}

func newInitialized(t *testing.T, f *testkit.RecordingFactory) *Manager {
	t.Helper()
	m := NewManager(testkit.NewTestKit(0.5).Catalog())
	require.NoError(t, m.Initialize(f, testkit.FixedOverrides()))
	return m
}

func TestValidateBeforeInitialize(t *testing.T) {
	m := NewManager(nil)
	assert.False(t, m.IsInitialized())

	r := m.ValidateAlchemy(crafting.AlchemyInput{StationTier: 1})
	assert.False(t, r.Valid)
	assert.True(t, r.Failed())
	assert.Equal(t, crafting.DisciplineAlchemy, r.Discipline)
	assert.Contains(t, r.Error, "not initialized")
	assert.Equal(t, 1.0, r.Confidence)
}

func TestInitializeRequiresFactory(t *testing.T) {
	err := NewManager(nil).Initialize(nil, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigInvalid))
}

func TestValidateEveryDiscipline(t *testing.T) {
	f := testkit.NewRecordingFactory(0.8).SetProbability(crafting.DisciplineRefining, 0.3)
	m := newInitialized(t, f)

	results := []classifier.Result{
		m.ValidateSmithing(testkit.SmithingLayout()),
		m.ValidateAdornment(testkit.AdornmentLayout()),
		m.ValidateAlchemy(testkit.AlchemyLayout()),
		m.ValidateRefining(testkit.RefiningLayout()),
		m.ValidateEngineering(testkit.EngineeringLayout()),
	}
	for i, d := range crafting.AllDisciplines() {
		r := results[i]
		assert.Equal(t, d, r.Discipline)
		assert.Empty(t, r.Error, d)
		assert.Equal(t, preprocess.TensorLen(d), f.Backend(d).LastTensorLen(), d)
	}

	assert.True(t, results[0].Valid)
	assert.Equal(t, 0.8, results[0].Confidence)
	refining := results[3]
	assert.False(t, refining.Valid)
	assert.Equal(t, 0.3, refining.Probability)
	assert.InDelta(t, 0.7, refining.Confidence, 1e-12)
}

func TestThresholdBoundaryIsInclusive(t *testing.T) {
	f := testkit.NewRecordingFactory(0.5)
	m := newInitialized(t, f)
	assert.True(t, m.ValidateAlchemy(testkit.AlchemyLayout()).Valid)

	th := 0.51
	require.NoError(t, m.UpdateConfig(crafting.DisciplineAlchemy, classifier.ConfigUpdate{Threshold: &th}))
	assert.False(t, m.ValidateAlchemy(testkit.AlchemyLayout()).Valid)
	assert.Equal(t, 0.51, m.GetStatus()[crafting.DisciplineAlchemy].Threshold)
}

func TestConstructionFailureIsIsolated(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9).FailCreate(crafting.DisciplineAdornment, errors.New("model missing"))
	m := newInitialized(t, f)

	r := m.ValidateAdornment(testkit.AdornmentLayout())
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "model missing")

	assert.True(t, m.ValidateSmithing(testkit.SmithingLayout()).Valid)
	assert.True(t, m.ValidateEngineering(testkit.EngineeringLayout()).Valid)

	status := m.GetStatus()
	assert.False(t, status[crafting.DisciplineAdornment].Loaded)
	assert.False(t, status[crafting.DisciplineAdornment].BackendHealthy)
	assert.Contains(t, status[crafting.DisciplineAdornment].LastError, "model missing")
	assert.True(t, status[crafting.DisciplineSmithing].BackendHealthy)
}

func TestInitializeFailsOnlyWhenEveryDisciplineFails(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9)
	for _, d := range crafting.AllDisciplines() {
		f.FailCreate(d, errors.New("no runtime"))
	}
	m := NewManager(nil)
	err := m.Initialize(f, testkit.FixedOverrides())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBackendUnavailable))
	assert.True(t, m.IsInitialized())

	r := m.ValidateRefining(testkit.RefiningLayout())
	assert.True(t, r.Failed())
}

func TestInvalidOverrideIsIsolated(t *testing.T) {
	overrides := testkit.FixedOverrides()
	bad := overrides[crafting.DisciplineRefining]
	th := 2.0
	bad.Threshold = &th
	overrides[crafting.DisciplineRefining] = bad

	m := NewManager(nil)
	require.NoError(t, m.Initialize(testkit.NewRecordingFactory(0.9), overrides))
	assert.True(t, m.ValidateRefining(testkit.RefiningLayout()).Failed())
	assert.False(t, m.ValidateAlchemy(testkit.AlchemyLayout()).Failed())
}

func TestPredictionFailure(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9).FailPredict(crafting.DisciplineEngineering, errors.New("nan output"))
	m := newInitialized(t, f)

	r := m.ValidateEngineering(testkit.EngineeringLayout())
	assert.False(t, r.Valid)
	assert.Equal(t, 0.0, r.Probability)
	assert.Contains(t, r.Error, "nan output")
	assert.False(t, m.GetStatus()[crafting.DisciplineEngineering].BackendHealthy)
	assert.True(t, m.GetStatus()[crafting.DisciplineEngineering].Loaded)

	assert.True(t, m.ValidateAlchemy(testkit.AlchemyLayout()).Valid)
}

func TestBackendPanicBecomesErrorResult(t *testing.T) {
	b := new(MockBackend)
	b.On("IsLoaded").Return(true)
	b.On("Predict", mock.Anything).Run(func(mock.Arguments) { panic("segfault in runtime") })
	b.On("Close").Return(nil)

	factory := ports.BackendFactoryFunc(func(kind classifier.BackendKind, path string, d crafting.Discipline) (ports.Backend, error) {
		return b, nil
	})
	m := NewManager(nil)
	require.NoError(t, m.Initialize(factory, nil))

	var r classifier.Result
	assert.NotPanics(t, func() { r = m.ValidateSmithing(crafting.SmithingInput{GridSize: 9}) })
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "segfault in runtime")

	m.Unload()
	b.AssertNumberOfCalls(t, "Close", len(crafting.AllDisciplines()))
}

func TestDisabledDiscipline(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9)
	m := newInitialized(t, f)

	off := false
	require.NoError(t, m.UpdateConfig(crafting.DisciplineSmithing, classifier.ConfigUpdate{Enabled: &off}))
	r := m.ValidateSmithing(testkit.SmithingLayout())
	assert.Contains(t, r.Error, "disabled")
	assert.Equal(t, 0, f.Backend(crafting.DisciplineSmithing).Calls())

	on := true
	require.NoError(t, m.UpdateConfig(crafting.DisciplineSmithing, classifier.ConfigUpdate{Enabled: &on}))
	assert.True(t, m.ValidateSmithing(testkit.SmithingLayout()).Valid)
}

func TestUpdateConfigModelPathRebuilds(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9)
	m := newInitialized(t, f)
	old := f.Backend(crafting.DisciplineAlchemy)

	path := "fixed://0.2"
	require.NoError(t, m.UpdateConfig(crafting.DisciplineAlchemy, classifier.ConfigUpdate{ModelPath: &path}))
	assert.False(t, old.IsLoaded())

	calls := f.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, crafting.DisciplineAlchemy, last.Discipline)
	assert.Equal(t, path, last.ModelPath)
	assert.Equal(t, path, m.GetStatus()[crafting.DisciplineAlchemy].ModelPath)

	// same path does not rebuild
	require.NoError(t, m.UpdateConfig(crafting.DisciplineAlchemy, classifier.ConfigUpdate{ModelPath: &path}))
	assert.Len(t, f.Calls(), len(calls))
}

func TestUpdateConfigRebuildFailure(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9)
	m := newInitialized(t, f)

	f.FailCreate(crafting.DisciplineRefining, errors.New("corrupt weights"))
	path := "models/refining-v2.json"
	err := m.UpdateConfig(crafting.DisciplineRefining, classifier.ConfigUpdate{ModelPath: &path})
	require.Error(t, err)

	st := m.GetStatus()[crafting.DisciplineRefining]
	assert.False(t, st.Loaded)
	assert.False(t, st.BackendHealthy)
	assert.True(t, m.ValidateRefining(testkit.RefiningLayout()).Failed())
	assert.True(t, m.ValidateSmithing(testkit.SmithingLayout()).Valid)
}

func TestUpdateConfigErrors(t *testing.T) {
	th := 0.7
	err := NewManager(nil).UpdateConfig(crafting.DisciplineAlchemy, classifier.ConfigUpdate{Threshold: &th})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotInitialized))

	m := newInitialized(t, testkit.NewRecordingFactory(0.5))
	err = m.UpdateConfig("cooking", classifier.ConfigUpdate{Threshold: &th})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	bad := -0.1
	err = m.UpdateConfig(crafting.DisciplineAlchemy, classifier.ConfigUpdate{Threshold: &bad})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigInvalid))
}

func TestPreloadWarmsLoadedDisciplines(t *testing.T) {
	f := testkit.NewRecordingFactory(0.5).FailCreate(crafting.DisciplineAdornment, errors.New("missing"))
	m := NewManager(nil)
	assert.True(t, apperrors.HasCode(m.Preload(), apperrors.CodeNotInitialized))

	require.NoError(t, m.Initialize(f, testkit.FixedOverrides()))
	off := false
	require.NoError(t, m.UpdateConfig(crafting.DisciplineEngineering, classifier.ConfigUpdate{Enabled: &off}))
	require.NoError(t, m.Preload())

	st := m.GetStatus()
	assert.True(t, st[crafting.DisciplineSmithing].Warmed)
	assert.Equal(t, preprocess.TensorLen(crafting.DisciplineSmithing), f.Backend(crafting.DisciplineSmithing).LastTensorLen())
	assert.False(t, st[crafting.DisciplineAdornment].Warmed)
	assert.False(t, st[crafting.DisciplineEngineering].Warmed)
	assert.Equal(t, 0, f.Backend(crafting.DisciplineEngineering).Calls())
}

func TestUnloadResets(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9)
	m := newInitialized(t, f)
	b := f.Backend(crafting.DisciplineRefining)

	m.Unload()
	assert.False(t, m.IsInitialized())
	assert.False(t, b.IsLoaded())
	assert.True(t, m.ValidateRefining(testkit.RefiningLayout()).Failed())
	for _, st := range m.GetStatus() {
		assert.False(t, st.Loaded)
		assert.Equal(t, classifier.DefaultThreshold, st.Threshold)
	}

	require.NoError(t, m.Initialize(f, testkit.FixedOverrides()))
	assert.True(t, m.ValidateRefining(testkit.RefiningLayout()).Valid)
}

func TestDefaultsApplyWithoutOverrides(t *testing.T) {
	f := testkit.NewRecordingFactory(0.6)
	m := NewManager(nil)
	require.NoError(t, m.Initialize(f, nil))
	for _, c := range f.Calls() {
		assert.Equal(t, classifier.BackendDense, c.Kind)
		assert.Equal(t, "models/"+string(c.Discipline)+".json", c.ModelPath)
	}
	cfg, ok := m.Config(crafting.DisciplineSmithing)
	require.True(t, ok)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 0.5, cfg.Threshold)
}

func TestConcurrentValidationAcrossDisciplines(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9)
	m := newInitialized(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); assert.True(t, m.ValidateAlchemy(testkit.AlchemyLayout()).Valid) }()
		go func() { defer wg.Done(); assert.True(t, m.ValidateRefining(testkit.RefiningLayout()).Valid) }()
		go func() { defer wg.Done(); _ = m.GetStatus() }()
	}
	wg.Wait()
	assert.Equal(t, 20, f.Backend(crafting.DisciplineAlchemy).Calls())
}

func TestPartialOverrideKeepsDefaults(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9).SetProbability(crafting.DisciplineAlchemy, 0.2)
	kind := classifier.BackendFixed
	path := "fixed://0.2"
	m := NewManager(nil)
	require.NoError(t, m.Initialize(f, map[crafting.Discipline]classifier.ConfigOverride{
		crafting.DisciplineAlchemy: {BackendKind: &kind, ModelPath: &path},
	}))

	st := m.GetStatus()[crafting.DisciplineAlchemy]
	assert.True(t, st.Enabled)
	assert.Equal(t, classifier.DefaultThreshold, st.Threshold)
	assert.Equal(t, classifier.BackendFixed, st.BackendKind)
	assert.Equal(t, path, st.ModelPath)

	r := m.ValidateAlchemy(testkit.AlchemyLayout())
	assert.False(t, r.Failed())
	assert.False(t, r.Valid)
	assert.InDelta(t, 0.2, r.Probability, 1e-9)

	// untouched disciplines still get the full default
	cfg, _ := m.Config(crafting.DisciplineSmithing)
	assert.Equal(t, classifier.DefaultConfig(crafting.DisciplineSmithing), cfg)
}

func TestOutOfRangeProbabilityIsPredictionFailure(t *testing.T) {
	for _, p := range []float64{math.NaN(), 1.7, -0.1, math.Inf(1)} {
		b := new(MockBackend)
		b.On("IsLoaded").Return(true)
		b.On("Predict", mock.Anything).Return(p, nil)
		b.On("Close").Return(nil)
		factory := ports.BackendFactoryFunc(func(classifier.BackendKind, string, crafting.Discipline) (ports.Backend, error) {
			return b, nil
		})

		m := NewManager(nil)
		require.NoError(t, m.Initialize(factory, nil))
		r := m.ValidateRefining(testkit.RefiningLayout())
		assert.True(t, r.Failed(), "p=%v", p)
		assert.False(t, r.Valid)
		assert.Equal(t, 0.0, r.Probability)
		assert.Contains(t, r.Error, "outside [0,1]")
		assert.False(t, m.GetStatus()[crafting.DisciplineRefining].BackendHealthy)
	}
}

func TestUpdateConfigRetriesFailedBuildWithSamePath(t *testing.T) {
	f := testkit.NewRecordingFactory(0.9).FailCreate(crafting.DisciplineRefining, errors.New("truncated file"))
	m := NewManager(nil)
	require.NoError(t, m.Initialize(f, testkit.FixedOverrides()))
	require.False(t, m.GetStatus()[crafting.DisciplineRefining].Loaded)

	f.FailCreate(crafting.DisciplineRefining, nil)
	cfg, _ := m.Config(crafting.DisciplineRefining)
	path := cfg.ModelPath
	require.NoError(t, m.UpdateConfig(crafting.DisciplineRefining, classifier.ConfigUpdate{ModelPath: &path}))

	st := m.GetStatus()[crafting.DisciplineRefining]
	assert.True(t, st.Loaded)
	assert.True(t, st.BackendHealthy)
	assert.True(t, m.ValidateRefining(testkit.RefiningLayout()).Valid)
}

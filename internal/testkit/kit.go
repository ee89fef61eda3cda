package testkit

import (
	"fmt"
	"sync"

	"craftcheck/adapters/backend/fixed"
	"craftcheck/adapters/catalog"
	"craftcheck/adapters/memory"
	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	"craftcheck/ports"
)

// TestKit bundles the fixtures shared by package tests
type TestKit struct {
	catalog *catalog.Catalog
	ledger  *memory.ResultLedger
	factory *RecordingFactory
}

// NewTestKit creates a kit over the fixture catalog where every discipline
// predicts probability p
func NewTestKit(p float64) *TestKit {
	return &TestKit{
		catalog: catalog.FromMaterials(Materials()),
		ledger:  memory.NewResultLedger(0),
		factory: NewRecordingFactory(p),
	}
}

// Catalog returns the fixture material catalog
func (t *TestKit) Catalog() *catalog.Catalog { return t.catalog }

// Ledger returns the in-memory result ledger
func (t *TestKit) Ledger() *memory.ResultLedger { return t.ledger }

// Factory returns the recording backend factory
func (t *TestKit) Factory() *RecordingFactory { return t.factory }

// Materials is the fixture material table
func Materials() []crafting.MaterialInfo {
	mk := func(id, name string, c crafting.Category, tier int, r crafting.RarityClass, e crafting.Element) crafting.MaterialInfo {
		return crafting.MaterialInfo{ID: id, Name: name, Category: c, Tier: tier, Rarity: r, Element: e}
	}
	return []crafting.MaterialInfo{
		mk("copper_ore", "Copper Ore", crafting.CategoryMetal, 1, crafting.RarityCommon, ""),
		mk("iron_ingot", "Iron Ingot", crafting.CategoryMetal, 2, crafting.RarityCommon, ""),
		mk("steel_plate", "Steel Plate", crafting.CategoryMetal, 3, crafting.RarityUncommon, ""),
		mk("mithril", "Mithril", crafting.CategoryMetal, 4, crafting.RarityLegendary, ""),
		mk("oak_plank", "Oak Plank", crafting.CategoryWood, 1, crafting.RarityCommon, ""),
		mk("granite", "Granite", crafting.CategoryStone, 3, crafting.RarityCommon, ""),
		mk("wolf_fang", "Wolf Fang", crafting.CategoryMonsterDrop, 2, crafting.RarityUncommon, ""),
		mk("star_gem", "Star Gem", crafting.CategoryGem, 4, crafting.RarityRare, ""),
		mk("moonpetal", "Moonpetal", crafting.CategoryHerb, 2, crafting.RarityMagical, ""),
		mk("silk", "Silk", crafting.CategoryFabric, 1, crafting.RarityCommon, ""),
		mk("fire_crystal", "Fire Crystal", crafting.CategoryElemental, 2, crafting.RarityRare, crafting.ElementFire),
	}
}

// SmithingLayout is a small sword-like placement on a 3×3 grid
func SmithingLayout() crafting.SmithingInput {
	return crafting.SmithingInput{
		GridSize: 3,
		Placements: map[crafting.Cell]string{
			{Row: 0, Col: 1}: "iron_ingot",
			{Row: 1, Col: 1}: "iron_ingot",
			{Row: 2, Col: 1}: "oak_plank",
		},
	}
}

// AdornmentLayout is a triangle of three vertices joined by one shape
func AdornmentLayout() crafting.AdornmentInput {
	return crafting.AdornmentInput{
		Vertices: map[string]crafting.Vertex{
			"a": {MaterialID: "star_gem", X: 0, Y: 4},
			"b": {MaterialID: "fire_crystal", X: -3, Y: -2},
			"c": {MaterialID: "fire_crystal", X: 3, Y: -2},
		},
		Shapes: []crafting.Shape{{VertexIDs: []string{"a", "b", "c", "a"}, MaterialID: "mithril"}},
	}
}

// AlchemyLayout fills two of the six slots
func AlchemyLayout() crafting.AlchemyInput {
	var in crafting.AlchemyInput
	in.Slots[0] = &crafting.SlotItem{MaterialID: "moonpetal", Quantity: 3}
	in.Slots[4] = &crafting.SlotItem{MaterialID: "fire_crystal", Quantity: 1}
	in.StationTier = 2
	return in
}

// RefiningLayout is one core ore surrounded by fuel
func RefiningLayout() crafting.RefiningInput {
	return crafting.RefiningInput{
		Core:        []crafting.SlotItem{{MaterialID: "copper_ore", Quantity: 4}},
		Surrounding: []crafting.SlotItem{{MaterialID: "oak_plank", Quantity: 2}, {MaterialID: "copper_ore", Quantity: 1}},
		StationTier: 1,
	}
}

// EngineeringLayout uses four slot kinds
func EngineeringLayout() crafting.EngineeringInput {
	return crafting.EngineeringInput{
		Slots: []crafting.TypedSlot{
			{Type: crafting.SlotFrame, Item: crafting.SlotItem{MaterialID: "steel_plate", Quantity: 2}},
			{Type: crafting.SlotPower, Item: crafting.SlotItem{MaterialID: "fire_crystal", Quantity: 1}},
			{Type: crafting.SlotFunction, Item: crafting.SlotItem{MaterialID: "iron_ingot", Quantity: 1}},
			{Type: crafting.SlotUtility, Item: crafting.SlotItem{MaterialID: "silk", Quantity: 1}},
		},
		StationTier: 3,
	}
}

// CreateCall is one request seen by RecordingFactory
type CreateCall struct {
	Kind       classifier.BackendKind
	ModelPath  string
	Discipline crafting.Discipline
}

// RecordingFactory hands out fixed backends and remembers every request.
// Disciplines can be told to fail construction or prediction.
type RecordingFactory struct {
	mu          sync.Mutex
	probability map[crafting.Discipline]float64
	defaultP    float64
	failCreate  map[crafting.Discipline]error
	failPredict map[crafting.Discipline]error
	calls       []CreateCall
	backends    map[crafting.Discipline]*fixed.Backend
}

// NewRecordingFactory creates a factory whose backends predict p
func NewRecordingFactory(p float64) *RecordingFactory {
	return &RecordingFactory{
		probability: make(map[crafting.Discipline]float64),
		defaultP:    p,
		failCreate:  make(map[crafting.Discipline]error),
		failPredict: make(map[crafting.Discipline]error),
		backends:    make(map[crafting.Discipline]*fixed.Backend),
	}
}

// SetProbability overrides the probability for one discipline
func (f *RecordingFactory) SetProbability(d crafting.Discipline, p float64) *RecordingFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probability[d] = p
	return f
}

// FailCreate makes construction for d fail; a nil err clears it
func (f *RecordingFactory) FailCreate(d crafting.Discipline, err error) *RecordingFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failCreate, d)
	} else {
		f.failCreate[d] = err
	}
	return f
}

// FailPredict makes every backend built for d fail prediction
func (f *RecordingFactory) FailPredict(d crafting.Discipline, err error) *RecordingFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPredict[d] = err
	return f
}

// Create implements ports.BackendFactory
func (f *RecordingFactory) Create(kind classifier.BackendKind, modelPath string, d crafting.Discipline) (ports.Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, CreateCall{Kind: kind, ModelPath: modelPath, Discipline: d})
	if err, ok := f.failCreate[d]; ok {
		return nil, fmt.Errorf("create %s: %w", d, err)
	}

	var b *fixed.Backend
	if err, ok := f.failPredict[d]; ok {
		b = fixed.NewFailing(err)
	} else if p, ok := f.probability[d]; ok {
		b = fixed.New(p)
	} else {
		b = fixed.New(f.defaultP)
	}
	f.backends[d] = b
	return b, nil
}

// Calls returns every Create request in order
func (f *RecordingFactory) Calls() []CreateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CreateCall(nil), f.calls...)
}

// Backend returns the most recent backend built for d
func (f *RecordingFactory) Backend(d crafting.Discipline) *fixed.Backend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backends[d]
}

// FixedConfigs returns configs that route every discipline to the fixed backend
func FixedConfigs() map[crafting.Discipline]classifier.Config {
	out := classifier.DefaultConfigs()
	for d, o := range FixedOverrides() {
		out[d] = o.Apply(out[d])
	}
	return out
}

// FixedOverrides sets only the backend kind and model path, so threshold and
// enabled stay at their defaults
func FixedOverrides() map[crafting.Discipline]classifier.ConfigOverride {
	out := make(map[crafting.Discipline]classifier.ConfigOverride, len(crafting.AllDisciplines()))
	for _, d := range crafting.AllDisciplines() {
		kind := classifier.BackendFixed
		path := fixed.Scheme + "0.5"
		out[d] = classifier.ConfigOverride{BackendKind: &kind, ModelPath: &path}
	}
	return out
}

var _ ports.BackendFactory = (*RecordingFactory)(nil)

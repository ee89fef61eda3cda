package crafting

import (
	"fmt"
	"strings"
)

// Discipline identifies one of the independent crafting categories
type Discipline string

const (
	DisciplineSmithing    Discipline = "smithing"    // grid placement
	DisciplineAdornment   Discipline = "adornment"   // vertex/shape graph
	DisciplineAlchemy     Discipline = "alchemy"     // simple slots
	DisciplineRefining    Discipline = "refining"    // core + surrounding slots
	DisciplineEngineering Discipline = "engineering" // typed slots
)

// AllDisciplines returns every discipline in declaration order
func AllDisciplines() []Discipline {
	return []Discipline{
		DisciplineSmithing,
		DisciplineAdornment,
		DisciplineAlchemy,
		DisciplineRefining,
		DisciplineEngineering,
	}
}

// ParseDiscipline parses a discipline name (case-insensitive)
func ParseDiscipline(s string) (Discipline, error) {
	d := Discipline(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("unknown discipline: %q", s)
	}
	return d, nil
}

// IsValid reports whether d is a known discipline
func (d Discipline) IsValid() bool {
	switch d {
	case DisciplineSmithing, DisciplineAdornment, DisciplineAlchemy, DisciplineRefining, DisciplineEngineering:
		return true
	}
	return false
}

func (d Discipline) String() string { return string(d) }

// Category is the material family used for hue and stencil selection
type Category string

const (
	CategoryMetal       Category = "metal"
	CategoryWood        Category = "wood"
	CategoryStone       Category = "stone"
	CategoryMonsterDrop Category = "monster_drop"
	CategoryGem         Category = "gem"
	CategoryHerb        Category = "herb"
	CategoryFabric      Category = "fabric"
	CategoryElemental   Category = "elemental"
	CategoryUnknown     Category = "unknown"
)

// categoryIndex is the ordinal used by the slot feature extractors; unknown is 0.
var categoryIndex = map[Category]int{
	CategoryMetal:       1,
	CategoryWood:        2,
	CategoryStone:       3,
	CategoryMonsterDrop: 4,
	CategoryGem:         5,
	CategoryHerb:        6,
	CategoryFabric:      7,
	CategoryElemental:   8,
}

// NumCategories is the number of known (non-unknown) categories
const NumCategories = 8

// Index returns the 1-based ordinal of the category, 0 for unknown
func (c Category) Index() int {
	return categoryIndex[c]
}

// ParseCategory maps a raw string to a Category, falling back to unknown
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryIndex[c]; ok {
		return c
	}
	return CategoryUnknown
}

// RarityClass is the rarity tier of a material
type RarityClass string

const (
	RarityCommon    RarityClass = "common"
	RarityUncommon  RarityClass = "uncommon"
	RarityRare      RarityClass = "rare"
	RarityEpic      RarityClass = "epic"
	RarityLegendary RarityClass = "legendary"
	RarityMythical  RarityClass = "mythical"
	RarityMagical   RarityClass = "magical"
	RarityAncient   RarityClass = "ancient"
	RarityOther     RarityClass = "other"
)

// ParseRarity maps a raw string to a RarityClass, falling back to other
func ParseRarity(s string) RarityClass {
	r := RarityClass(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary,
		RarityMythical, RarityMagical, RarityAncient:
		return r
	}
	return RarityOther
}

// Element is the sub-kind of an elemental material
type Element string

const (
	ElementNone      Element = ""
	ElementFire      Element = "fire"
	ElementWater     Element = "water"
	ElementEarth     Element = "earth"
	ElementAir       Element = "air"
	ElementLightning Element = "lightning"
	ElementIce       Element = "ice"
	ElementLight     Element = "light"
	ElementShadow    Element = "shadow"
	ElementNature    Element = "nature"
	ElementArcane    Element = "arcane"
)

// ParseElement maps a raw string to an Element; unrecognised values become ElementNone
func ParseElement(s string) Element {
	e := Element(strings.ToLower(strings.TrimSpace(s)))
	switch e {
	case ElementFire, ElementWater, ElementEarth, ElementAir, ElementLightning,
		ElementIce, ElementLight, ElementShadow, ElementNature, ElementArcane:
		return e
	}
	return ElementNone
}

// Tier bounds
const (
	MinTier = 1
	MaxTier = 4
)

// MaterialInfo is what the material lookup returns for an id
type MaterialInfo struct {
	ID       string      `json:"id" yaml:"id" db:"id"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty" db:"name"`
	Category Category    `json:"category" yaml:"category" db:"category"`
	Tier     int         `json:"tier" yaml:"tier" db:"tier"`
	Rarity   RarityClass `json:"rarity" yaml:"rarity" db:"rarity"`
	Element  Element     `json:"element,omitempty" yaml:"element,omitempty" db:"element"`
}

// Neutral returns the fallback info used for ids the lookup cannot resolve
func Neutral(id string) MaterialInfo {
	return MaterialInfo{
		ID:       id,
		Category: CategoryUnknown,
		Tier:     MinTier,
		Rarity:   RarityCommon,
	}
}

// ClampTier forces a tier into MinTier..MaxTier
func ClampTier(tier int) int {
	if tier < MinTier {
		return MinTier
	}
	if tier > MaxTier {
		return MaxTier
	}
	return tier
}

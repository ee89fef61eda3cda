package preprocess

import (
	"math"

	"craftcheck/domain/crafting"
	"craftcheck/ports"
)

// RGB is a color with channels in [0,1]
type RGB struct {
	R, G, B float64
}

// NeutralGray is used for unknown categories and unresolved material ids
var NeutralGray = RGB{R: 0.5, G: 0.5, B: 0.5}

// Hue in degrees per material category
var categoryHue = map[crafting.Category]float64{
	crafting.CategoryMetal:       210,
	crafting.CategoryWood:        30,
	crafting.CategoryStone:       0,
	crafting.CategoryMonsterDrop: 300,
	crafting.CategoryGem:         280,
	crafting.CategoryHerb:        120,
	crafting.CategoryFabric:      45,
}

// Hue in degrees per element, used for elemental materials
var elementHue = map[crafting.Element]float64{
	crafting.ElementFire:      0,
	crafting.ElementWater:     210,
	crafting.ElementEarth:     30,
	crafting.ElementAir:       180,
	crafting.ElementLightning: 60,
	crafting.ElementIce:       195,
	crafting.ElementLight:     50,
	crafting.ElementShadow:    270,
	crafting.ElementNature:    120,
	crafting.ElementArcane:    300,
}

// elementalDefaultHue applies to elemental materials without a recognised element
const elementalDefaultHue = 280

// Brightness per tier (index 0 is tier 1)
var tierValue = [crafting.MaxTier]float64{0.50, 0.65, 0.80, 0.95}

const (
	baseSaturation    = 0.60
	stoneSaturation   = 0.20
	legendarySatBoost = 0.20
	magicalSatBoost   = 0.10
)

// ColorEncoder maps material metadata to the RGB used by the image encoders
type ColorEncoder struct {
	lookup ports.MaterialLookup
}

// NewColorEncoder creates a color encoder; a nil lookup resolves every id to gray
func NewColorEncoder(lookup ports.MaterialLookup) *ColorEncoder {
	return &ColorEncoder{lookup: lookup}
}

// Encode returns the color for a category/tier/rarity triple.
// Elemental materials encoded this way use the default elemental hue.
func (e *ColorEncoder) Encode(category crafting.Category, tier int, rarity crafting.RarityClass) RGB {
	return e.encode(category, crafting.ElementNone, tier, rarity)
}

// EncodeInfo returns the color for resolved material metadata
func (e *ColorEncoder) EncodeInfo(info crafting.MaterialInfo) RGB {
	return e.encode(info.Category, info.Element, info.Tier, info.Rarity)
}

// EncodeMaterial resolves an id through the lookup and encodes it.
// Unresolved ids come back gray.
func (e *ColorEncoder) EncodeMaterial(materialID string) RGB {
	return e.EncodeInfo(resolveMaterial(e.lookup, materialID))
}

func (e *ColorEncoder) encode(category crafting.Category, element crafting.Element, tier int, rarity crafting.RarityClass) RGB {
	hue, ok := categoryHue[category]
	if category == crafting.CategoryElemental {
		hue, ok = elementHue[element]
		if !ok {
			hue, ok = elementalDefaultHue, true
		}
	}
	if !ok {
		return NeutralGray
	}

	sat := baseSaturation
	if category == crafting.CategoryStone {
		sat = stoneSaturation
	}
	switch rarity {
	case crafting.RarityLegendary, crafting.RarityMythical:
		sat += legendarySatBoost
	case crafting.RarityMagical, crafting.RarityAncient:
		sat += magicalSatBoost
	}
	sat = math.Max(0, math.Min(1, sat))

	val := tierValue[crafting.ClampTier(tier)-1]
	return HSVToRGB(hue, sat, val)
}

// HSVToRGB converts hue in degrees plus saturation and value in [0,1].
// It follows the sector table of the preprocessing pipeline the models were
// trained with; do not replace it with another HSV routine.
func HSVToRGB(hueDeg, s, v float64) RGB {
	if s == 0 {
		return RGB{R: v, G: v, B: v}
	}
	h := math.Mod(hueDeg, 360) / 360
	if h < 0 {
		h += 1
	}
	i := int(h * 6.0)
	f := h*6.0 - float64(i)
	p := v * (1.0 - s)
	q := v * (1.0 - s*f)
	t := v * (1.0 - s*(1.0-f))
	switch i % 6 {
	case 0:
		return RGB{R: v, G: t, B: p}
	case 1:
		return RGB{R: q, G: v, B: p}
	case 2:
		return RGB{R: p, G: v, B: t}
	case 3:
		return RGB{R: p, G: q, B: v}
	case 4:
		return RGB{R: t, G: p, B: v}
	default:
		return RGB{R: v, G: p, B: q}
	}
}

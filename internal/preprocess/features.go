package preprocess

import (
	"craftcheck/domain/crafting"
	"craftcheck/ports"
)

// Fixed feature vector lengths
const (
	AlchemyFeatureLen     = 34
	RefiningFeatureLen    = 19
	EngineeringFeatureLen = 28
)

// Normalisation constants shared by the slot extractors
const (
	maxQuantity          = 10
	engineeringTypeCap   = 4
	engineeringTotalCap  = 12
	refiningTotalSlots   = crafting.RefiningCoreSlots + crafting.RefiningSurroundingSlots
	alchemyGridCols      = 3
	alchemyGridRows      = crafting.AlchemySlots / alchemyGridCols
	alchemyPerSlotValues = 5
)

// slotFeature is one resolved slot reduced to its normalised scalars
type slotFeature struct {
	category  crafting.Category
	tier      float64 // tier / 4
	indicator float64 // category index / 8, unknown = 0
	quantity  float64 // min(q, 10) / 10
}

func resolveSlot(lookup ports.MaterialLookup, item crafting.SlotItem) slotFeature {
	info := resolveMaterial(lookup, item.MaterialID)
	q := item.Quantity
	if q < 1 {
		q = 1
	}
	return slotFeature{
		category:  info.Category,
		tier:      float64(info.Tier) / crafting.MaxTier,
		indicator: float64(info.Category.Index()) / crafting.NumCategories,
		quantity:  float64(min(q, maxQuantity)) / maxQuantity,
	}
}

// resolveItems resolves every non-empty item
func resolveItems(lookup ports.MaterialLookup, items []crafting.SlotItem) []slotFeature {
	out := make([]slotFeature, 0, len(items))
	for _, it := range items {
		if it.MaterialID == "" {
			continue
		}
		out = append(out, resolveSlot(lookup, it))
	}
	return out
}

func tiersOf(fs []slotFeature) []float64 {
	out := make([]float64, len(fs))
	for i, f := range fs {
		out[i] = f.tier
	}
	return out
}

// AlchemyExtractor encodes six independent slots.
//
// Layout (34): for slot i in 0..5, five values at 5i: row position (row+1)/2,
// column position (col+1)/3 on a 2×3 layout, tier, category indicator, quantity;
// all zero for an empty slot. Then mean, max and population stddev of filled
// tiers at 30..32 and the station tier at 33.
type AlchemyExtractor struct {
	lookup ports.MaterialLookup
}

// NewAlchemyExtractor creates the simple-slot extractor
func NewAlchemyExtractor(lookup ports.MaterialLookup) *AlchemyExtractor {
	return &AlchemyExtractor{lookup: lookup}
}

// TensorLen is the fixed output length
func (e *AlchemyExtractor) TensorLen() int { return AlchemyFeatureLen }

// Extract builds the feature vector
func (e *AlchemyExtractor) Extract(in crafting.AlchemyInput) []float32 {
	out := make([]float32, AlchemyFeatureLen)
	var tiers []float64

	for i, slot := range in.Slots {
		if slot == nil || slot.MaterialID == "" {
			continue
		}
		f := resolveSlot(e.lookup, *slot)
		row, col := i/alchemyGridCols, i%alchemyGridCols
		base := i * alchemyPerSlotValues
		out[base] = float32(float64(row+1) / alchemyGridRows)
		out[base+1] = float32(float64(col+1) / alchemyGridCols)
		out[base+2] = float32(f.tier)
		out[base+3] = float32(f.indicator)
		out[base+4] = float32(f.quantity)
		tiers = append(tiers, f.tier)
	}

	g := crafting.AlchemySlots * alchemyPerSlotValues
	out[g] = float32(Mean(tiers))
	out[g+1] = float32(Max(tiers))
	out[g+2] = float32(PopulationStdDev(tiers))
	out[AlchemyFeatureLen-1] = float32(in.StationTier)
	return out
}

// RefiningExtractor encodes a core group and a surrounding group.
//
// Layout (19): core summary at 0..6, surrounding summary at 7..13, each being
// presence, count/capacity, mean tier, max tier, population stddev tier, mean
// quantity, distinct known categories / 8. Cross features at 14..17: core mean
// tier minus surrounding mean tier, share of surrounding items matching the
// dominant core category, total fill over nine slots, population stddev of all
// tiers. Station tier at 18.
type RefiningExtractor struct {
	lookup ports.MaterialLookup
}

// NewRefiningExtractor creates the core/surrounding extractor
func NewRefiningExtractor(lookup ports.MaterialLookup) *RefiningExtractor {
	return &RefiningExtractor{lookup: lookup}
}

// TensorLen is the fixed output length
func (e *RefiningExtractor) TensorLen() int { return RefiningFeatureLen }

// Extract builds the feature vector
func (e *RefiningExtractor) Extract(in crafting.RefiningInput) []float32 {
	out := make([]float32, RefiningFeatureLen)
	core := resolveItems(e.lookup, in.Core)
	sur := resolveItems(e.lookup, in.Surrounding)

	writeGroupSummary(out[0:7], core, crafting.RefiningCoreSlots)
	writeGroupSummary(out[7:14], sur, crafting.RefiningSurroundingSlots)

	coreTiers, surTiers := tiersOf(core), tiersOf(sur)
	out[14] = float32(Mean(coreTiers) - Mean(surTiers))
	out[15] = float32(categoryMatchShare(core, sur))
	out[16] = float32(min(float64(len(core)+len(sur))/refiningTotalSlots, 1))
	out[17] = float32(PopulationStdDev(append(coreTiers, surTiers...)))
	out[RefiningFeatureLen-1] = float32(in.StationTier)
	return out
}

func writeGroupSummary(dst []float32, fs []slotFeature, capacity int) {
	if len(fs) == 0 {
		return
	}
	tiers := tiersOf(fs)
	qty := make([]float64, len(fs))
	seen := make(map[crafting.Category]struct{})
	for i, f := range fs {
		qty[i] = f.quantity
		if f.category != crafting.CategoryUnknown {
			seen[f.category] = struct{}{}
		}
	}
	dst[0] = 1
	dst[1] = float32(min(float64(len(fs))/float64(capacity), 1))
	dst[2] = float32(Mean(tiers))
	dst[3] = float32(Max(tiers))
	dst[4] = float32(PopulationStdDev(tiers))
	dst[5] = float32(Mean(qty))
	dst[6] = float32(float64(len(seen)) / crafting.NumCategories)
}

// categoryMatchShare is the fraction of surrounding items whose category equals
// the most frequent known core category (ties go to the lower category index)
func categoryMatchShare(core, sur []slotFeature) float64 {
	if len(sur) == 0 {
		return 0
	}
	counts := make(map[crafting.Category]int)
	for _, f := range core {
		if f.category != crafting.CategoryUnknown {
			counts[f.category]++
		}
	}
	dominant := crafting.CategoryUnknown
	best := 0
	for c, n := range counts {
		if n > best || (n == best && c.Index() < dominant.Index()) {
			dominant, best = c, n
		}
	}
	if dominant == crafting.CategoryUnknown {
		return 0
	}
	match := 0
	for _, f := range sur {
		if f.category == dominant {
			match++
		}
	}
	return float64(match) / float64(len(sur))
}

// EngineeringExtractor encodes typed slot assignments.
//
// Layout (28): for each slot type in declaration order, three values at 3k:
// min(count/4, 1), mean tier, max tier. Then min(total/12, 1), mean and
// population stddev of all tiers at 24..26 and the station tier at 27.
// Assignments with an unrecognised slot type are ignored.
type EngineeringExtractor struct {
	lookup ports.MaterialLookup
}

// NewEngineeringExtractor creates the typed multi-slot extractor
func NewEngineeringExtractor(lookup ports.MaterialLookup) *EngineeringExtractor {
	return &EngineeringExtractor{lookup: lookup}
}

// TensorLen is the fixed output length
func (e *EngineeringExtractor) TensorLen() int { return EngineeringFeatureLen }

// Extract builds the feature vector
func (e *EngineeringExtractor) Extract(in crafting.EngineeringInput) []float32 {
	out := make([]float32, EngineeringFeatureLen)
	types := crafting.SlotTypes()

	byType := make(map[crafting.SlotType][]float64, len(types))
	var all []float64
	for _, s := range in.Slots {
		if s.Item.MaterialID == "" {
			continue
		}
		if !isSlotType(types, s.Type) {
			continue
		}
		f := resolveSlot(e.lookup, s.Item)
		byType[s.Type] = append(byType[s.Type], f.tier)
		all = append(all, f.tier)
	}

	for k, t := range types {
		tiers := byType[t]
		out[3*k] = float32(min(float64(len(tiers))/engineeringTypeCap, 1))
		out[3*k+1] = float32(Mean(tiers))
		out[3*k+2] = float32(Max(tiers))
	}

	g := 3 * len(types)
	out[g] = float32(min(float64(len(all))/engineeringTotalCap, 1))
	out[g+1] = float32(Mean(all))
	out[g+2] = float32(PopulationStdDev(all))
	out[EngineeringFeatureLen-1] = float32(in.StationTier)
	return out
}

func isSlotType(types []crafting.SlotType, t crafting.SlotType) bool {
	for _, known := range types {
		if known == t {
			return true
		}
	}
	return false
}

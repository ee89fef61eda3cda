package preprocess

import "craftcheck/domain/crafting"

type mapLookup map[string]crafting.MaterialInfo

func (m mapLookup) Lookup(id string) (crafting.MaterialInfo, bool) {
	info, ok := m[id]
	return info, ok
}

func fixtureLookup() mapLookup {
	mk := func(id string, c crafting.Category, tier int, r crafting.RarityClass, e crafting.Element) crafting.MaterialInfo {
		return crafting.MaterialInfo{ID: id, Category: c, Tier: tier, Rarity: r, Element: e}
	}
	return mapLookup{
		"copper_ore":   mk("copper_ore", crafting.CategoryMetal, 1, crafting.RarityCommon, ""),
		"iron_ingot":   mk("iron_ingot", crafting.CategoryMetal, 2, crafting.RarityCommon, ""),
		"mithril":      mk("mithril", crafting.CategoryMetal, 4, crafting.RarityLegendary, ""),
		"steel_plate":  mk("steel_plate", crafting.CategoryMetal, 4, crafting.RarityCommon, ""),
		"oak_plank":    mk("oak_plank", crafting.CategoryWood, 1, crafting.RarityCommon, ""),
		"ash_plank":    mk("ash_plank", crafting.CategoryWood, 2, crafting.RarityCommon, ""),
		"granite":      mk("granite", crafting.CategoryStone, 3, crafting.RarityCommon, ""),
		"pebble":       mk("pebble", crafting.CategoryStone, 1, crafting.RarityCommon, ""),
		"star_gem":     mk("star_gem", crafting.CategoryGem, 4, crafting.RarityRare, ""),
		"fire_crystal": mk("fire_crystal", crafting.CategoryElemental, 2, crafting.RarityCommon, crafting.ElementFire),
	}
}

// pixel returns the RGB triple at (x,y) of a size×size image
func pixel(img []float32, size, x, y int) [3]float32 {
	i := (y*size + x) * 3
	return [3]float32{img[i], img[i+1], img[i+2]}
}

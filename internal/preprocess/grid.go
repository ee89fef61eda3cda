package preprocess

import (
	"craftcheck/domain/crafting"
	"craftcheck/ports"
)

// Smithing image geometry
const (
	SmithingGridSize  = 9
	SmithingCellPx    = 4
	SmithingImageSize = SmithingGridSize * SmithingCellPx // 36
)

// stencil is a fixed on/off pattern over one cell's pixel block, indexed [row][col]
type stencil [SmithingCellPx][SmithingCellPx]bool

var (
	stencilSolid = stencil{
		{true, true, true, true},
		{true, true, true, true},
		{true, true, true, true},
		{true, true, true, true},
	}
	stencilGrain = stencil{
		{false, false, false, false},
		{true, true, true, true},
		{false, false, false, false},
		{true, true, true, true},
	}
	stencilCross = stencil{
		{true, false, false, true},
		{false, true, true, false},
		{false, true, true, false},
		{true, false, false, true},
	}
	stencilDiamond = stencil{
		{false, true, true, false},
		{true, true, true, true},
		{true, true, true, true},
		{false, true, true, false},
	}
	stencilChecker = stencil{
		{true, false, true, false},
		{false, true, false, true},
		{true, false, true, false},
		{false, true, false, true},
	}
)

// stencilFor returns the category stencil; categories without their own use the solid block
func stencilFor(c crafting.Category) *stencil {
	switch c {
	case crafting.CategoryWood:
		return &stencilGrain
	case crafting.CategoryStone:
		return &stencilCross
	case crafting.CategoryMonsterDrop:
		return &stencilDiamond
	case crafting.CategoryElemental:
		return &stencilChecker
	default:
		return &stencilSolid
	}
}

// tierFill reports whether pixel (r,c) of a cell lies inside the concentric
// square of side `tier` centred in the block
func tierFill(tier, r, c int) bool {
	side := crafting.ClampTier(tier)
	off := (SmithingCellPx - side) / 2
	return r >= off && r < off+side && c >= off && c < off+side
}

// GridImageEncoder renders a smithing grid into a flat channel-last RGB image
type GridImageEncoder struct {
	lookup ports.MaterialLookup
	colors *ColorEncoder
}

// NewGridImageEncoder creates a grid encoder
func NewGridImageEncoder(lookup ports.MaterialLookup, colors *ColorEncoder) *GridImageEncoder {
	return &GridImageEncoder{lookup: lookup, colors: colors}
}

// TensorLen is the fixed output length
func (e *GridImageEncoder) TensorLen() int {
	return SmithingImageSize * SmithingImageSize * 3
}

// Encode renders the placements. Grids smaller than the full smithing grid are
// centred in it; cells outside the grid are skipped.
func (e *GridImageEncoder) Encode(in crafting.SmithingInput) []float32 {
	img := make([]float32, e.TensorLen())

	n := in.GridSize
	if n <= 0 || n > SmithingGridSize {
		n = SmithingGridSize
	}
	offset := (SmithingGridSize - n) / 2

	for cell, id := range in.Placements {
		if id == "" || cell.Row < 0 || cell.Col < 0 || cell.Row >= n || cell.Col >= n {
			continue
		}
		info := resolveMaterial(e.lookup, id)
		color := e.colors.EncodeInfo(info)
		mask := stencilFor(info.Category)

		baseY := (cell.Row + offset) * SmithingCellPx
		baseX := (cell.Col + offset) * SmithingCellPx
		for r := 0; r < SmithingCellPx; r++ {
			for c := 0; c < SmithingCellPx; c++ {
				if !mask[r][c] || !tierFill(info.Tier, r, c) {
					continue
				}
				setPixel(img, SmithingImageSize, baseX+c, baseY+r, color)
			}
		}
	}
	return img
}

// setPixel writes color at (x,y) of a size×size channel-last image, ignoring out-of-bounds writes
func setPixel(img []float32, size, x, y int, color RGB) {
	if x < 0 || y < 0 || x >= size || y >= size {
		return
	}
	i := (y*size + x) * 3
	img[i] = float32(color.R)
	img[i+1] = float32(color.G)
	img[i+2] = float32(color.B)
}

// resolveMaterial returns lookup metadata with the tier clamped, or the neutral fallback
func resolveMaterial(lookup ports.MaterialLookup, id string) crafting.MaterialInfo {
	if lookup == nil || id == "" {
		return crafting.Neutral(id)
	}
	info, ok := lookup.Lookup(id)
	if !ok {
		return crafting.Neutral(id)
	}
	info.Tier = crafting.ClampTier(info.Tier)
	return info
}

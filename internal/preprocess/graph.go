package preprocess

import (
	"sort"

	"craftcheck/domain/crafting"
)

// Adornment image geometry
const (
	AdornmentImageSize = 56
	AdornmentCoordMax  = 7 // coordinates span -7..+7 on both axes
	AdornmentScale     = 4
	EdgeThickness      = 2
	VertexRadius       = 3
)

// CoordToPixel maps a plane coordinate to image pixels with the y axis flipped.
// Results are clamped into the image so +7 lands on the last row/column.
func CoordToPixel(x, y int) (px, py int) {
	px = clampPx((x + AdornmentCoordMax) * AdornmentScale)
	py = clampPx((AdornmentCoordMax - y) * AdornmentScale)
	return px, py
}

func clampPx(v int) int {
	if v < 0 {
		return 0
	}
	if v > AdornmentImageSize-1 {
		return AdornmentImageSize - 1
	}
	return v
}

// GraphImageEncoder renders an adornment graph: edges first, then vertex discs on top
type GraphImageEncoder struct {
	colors *ColorEncoder
}

// NewGraphImageEncoder creates a graph encoder
func NewGraphImageEncoder(colors *ColorEncoder) *GraphImageEncoder {
	return &GraphImageEncoder{colors: colors}
}

// TensorLen is the fixed output length
func (e *GraphImageEncoder) TensorLen() int {
	return AdornmentImageSize * AdornmentImageSize * 3
}

// Encode renders the graph into a flat channel-last RGB image
func (e *GraphImageEncoder) Encode(in crafting.AdornmentInput) []float32 {
	img := make([]float32, e.TensorLen())

	for _, shape := range in.Shapes {
		color := e.colors.EncodeMaterial(shape.MaterialID)
		for i := 0; i+1 < len(shape.VertexIDs); i++ {
			a, okA := in.Vertices[shape.VertexIDs[i]]
			b, okB := in.Vertices[shape.VertexIDs[i+1]]
			if !okA || !okB {
				continue
			}
			x0, y0 := CoordToPixel(a.X, a.Y)
			x1, y1 := CoordToPixel(b.X, b.Y)
			drawLine(img, x0, y0, x1, y1, EdgeThickness, color)
		}
	}

	// map iteration order is random; stamp in id order so overlapping discs are stable
	ids := make([]string, 0, len(in.Vertices))
	for id := range in.Vertices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		v := in.Vertices[id]
		px, py := CoordToPixel(v.X, v.Y)
		drawDisc(img, px, py, VertexRadius, e.colors.EncodeMaterial(v.MaterialID))
	}
	return img
}

// drawLine rasterizes an integer Bresenham line with a square brush of the given thickness
func drawLine(img []float32, x0, y0, x1, y1, thickness int, color RGB) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		stampBrush(img, x0, y0, thickness, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// stampBrush covers offsets -thickness/2 .. thickness-1-thickness/2 on both axes
func stampBrush(img []float32, x, y, thickness int, color RGB) {
	lo := -thickness / 2
	hi := thickness - 1 + lo
	for oy := lo; oy <= hi; oy++ {
		for ox := lo; ox <= hi; ox++ {
			setPixel(img, AdornmentImageSize, x+ox, y+oy, color)
		}
	}
}

// drawDisc fills every pixel with dx²+dy² <= r²
func drawDisc(img []float32, cx, cy, r int, color RGB) {
	for oy := -r; oy <= r; oy++ {
		for ox := -r; ox <= r; ox++ {
			if ox*ox+oy*oy <= r*r {
				setPixel(img, AdornmentImageSize, cx+ox, cy+oy, color)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package crafting

import (
	"encoding/json"
	"sort"
)

// Cell is a 0-indexed position inside a smithing grid
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SmithingInput is a sparse N×N placement grid
type SmithingInput struct {
	GridSize   int
	Placements map[Cell]string
}

type gridPlacement struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	MaterialID string `json:"material_id"`
}

type smithingWire struct {
	GridSize   int             `json:"grid_size"`
	Placements []gridPlacement `json:"placements"`
}

// MarshalJSON writes placements as a row-major sorted list
func (in SmithingInput) MarshalJSON() ([]byte, error) {
	w := smithingWire{GridSize: in.GridSize, Placements: make([]gridPlacement, 0, len(in.Placements))}
	for cell, id := range in.Placements {
		w.Placements = append(w.Placements, gridPlacement{Row: cell.Row, Col: cell.Col, MaterialID: id})
	}
	sort.Slice(w.Placements, func(i, j int) bool {
		if w.Placements[i].Row != w.Placements[j].Row {
			return w.Placements[i].Row < w.Placements[j].Row
		}
		return w.Placements[i].Col < w.Placements[j].Col
	})
	return json.Marshal(w)
}

// UnmarshalJSON reads the list form produced by MarshalJSON
func (in *SmithingInput) UnmarshalJSON(data []byte) error {
	var w smithingWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	in.GridSize = w.GridSize
	in.Placements = make(map[Cell]string, len(w.Placements))
	for _, p := range w.Placements {
		in.Placements[Cell{Row: p.Row, Col: p.Col}] = p.MaterialID
	}
	return nil
}

// Vertex is a placed adornment node on the integer coordinate plane
type Vertex struct {
	MaterialID string `json:"material_id"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
}

// Shape connects vertices in order; its edges use MaterialID
type Shape struct {
	VertexIDs  []string `json:"vertex_ids"`
	MaterialID string   `json:"material_id"`
}

// AdornmentInput is a sparse vertex/shape graph
type AdornmentInput struct {
	Vertices map[string]Vertex `json:"vertices"`
	Shapes   []Shape           `json:"shapes"`
}

// SlotItem is a material with a stack quantity placed into a slot
type SlotItem struct {
	MaterialID string `json:"material_id"`
	Quantity   int    `json:"quantity"`
}

// AlchemySlots is the number of independent alchemy slots
const AlchemySlots = 6

// AlchemyInput holds up to six independently filled slots
type AlchemyInput struct {
	Slots       [AlchemySlots]*SlotItem `json:"slots"`
	StationTier int                     `json:"station_tier"`
}

// Refining slot capacities
const (
	RefiningCoreSlots        = 3
	RefiningSurroundingSlots = 6
)

// RefiningInput splits materials into a core group and a surrounding group
type RefiningInput struct {
	Core        []SlotItem `json:"core"`
	Surrounding []SlotItem `json:"surrounding"`
	StationTier int        `json:"station_tier"`
}

// SlotType is a named engineering slot kind
type SlotType string

const (
	SlotFrame       SlotType = "frame"
	SlotFunction    SlotType = "function"
	SlotPower       SlotType = "power"
	SlotModifier    SlotType = "modifier"
	SlotUtility     SlotType = "utility"
	SlotEnhancement SlotType = "enhancement"
	SlotCore        SlotType = "core"
	SlotCatalyst    SlotType = "catalyst"
)

// SlotTypes returns the engineering slot kinds in declaration order.
// Feature layout depends on this order.
func SlotTypes() []SlotType {
	return []SlotType{
		SlotFrame,
		SlotFunction,
		SlotPower,
		SlotModifier,
		SlotUtility,
		SlotEnhancement,
		SlotCore,
		SlotCatalyst,
	}
}

// TypedSlot is one engineering slot assignment
type TypedSlot struct {
	Type SlotType `json:"type"`
	Item SlotItem `json:"item"`
}

// EngineeringInput is a set of typed slot assignments
type EngineeringInput struct {
	Slots       []TypedSlot `json:"slots"`
	StationTier int         `json:"station_tier"`
}

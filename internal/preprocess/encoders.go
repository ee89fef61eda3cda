package preprocess

import (
	"fmt"

	"craftcheck/domain/crafting"
	"craftcheck/ports"
)

// Encoders bundles one encoder per discipline over a shared material lookup
type Encoders struct {
	Colors      *ColorEncoder
	Grid        *GridImageEncoder
	Graph       *GraphImageEncoder
	Alchemy     *AlchemyExtractor
	Refining    *RefiningExtractor
	Engineering *EngineeringExtractor
}

// NewEncoders builds every encoder; lookup may be nil, in which case every
// material resolves to the neutral default
func NewEncoders(lookup ports.MaterialLookup) *Encoders {
	colors := NewColorEncoder(lookup)
	return &Encoders{
		Colors:      colors,
		Grid:        NewGridImageEncoder(lookup, colors),
		Graph:       NewGraphImageEncoder(colors),
		Alchemy:     NewAlchemyExtractor(lookup),
		Refining:    NewRefiningExtractor(lookup),
		Engineering: NewEngineeringExtractor(lookup),
	}
}

// TensorLen returns the fixed tensor length of a discipline, 0 if unknown
func TensorLen(d crafting.Discipline) int {
	switch d {
	case crafting.DisciplineSmithing:
		return SmithingImageSize * SmithingImageSize * 3
	case crafting.DisciplineAdornment:
		return AdornmentImageSize * AdornmentImageSize * 3
	case crafting.DisciplineAlchemy:
		return AlchemyFeatureLen
	case crafting.DisciplineRefining:
		return RefiningFeatureLen
	case crafting.DisciplineEngineering:
		return EngineeringFeatureLen
	}
	return 0
}

// Shape describes how a discipline's flat tensor is laid out
type Shape struct {
	Height, Width, Channels int // images only
	Length                  int
}

// IsImage reports whether the tensor is an H×W×C image
func (s Shape) IsImage() bool { return s.Channels > 0 }

// ShapeOf returns the layout of a discipline's tensor
func ShapeOf(d crafting.Discipline) (Shape, error) {
	switch d {
	case crafting.DisciplineSmithing:
		return Shape{Height: SmithingImageSize, Width: SmithingImageSize, Channels: 3, Length: TensorLen(d)}, nil
	case crafting.DisciplineAdornment:
		return Shape{Height: AdornmentImageSize, Width: AdornmentImageSize, Channels: 3, Length: TensorLen(d)}, nil
	case crafting.DisciplineAlchemy, crafting.DisciplineRefining, crafting.DisciplineEngineering:
		return Shape{Length: TensorLen(d)}, nil
	}
	return Shape{}, fmt.Errorf("unknown discipline: %q", d)
}

package app

import (
	"fmt"

	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
)

// LayoutRequest is one layout in a batch: the discipline tag plus exactly one
// payload matching it
type LayoutRequest struct {
	Discipline  crafting.Discipline        `json:"discipline"`
	Smithing    *crafting.SmithingInput    `json:"smithing,omitempty"`
	Adornment   *crafting.AdornmentInput   `json:"adornment,omitempty"`
	Alchemy     *crafting.AlchemyInput     `json:"alchemy,omitempty"`
	Refining    *crafting.RefiningInput    `json:"refining,omitempty"`
	Engineering *crafting.EngineeringInput `json:"engineering,omitempty"`
}

// Check verifies the tag is known and only its payload is set
func (r LayoutRequest) Check() error {
	if !r.Discipline.IsValid() {
		return errors.InvalidInput(fmt.Sprintf("unknown discipline: %q", r.Discipline))
	}
	set := map[crafting.Discipline]bool{
		crafting.DisciplineSmithing:    r.Smithing != nil,
		crafting.DisciplineAdornment:   r.Adornment != nil,
		crafting.DisciplineAlchemy:     r.Alchemy != nil,
		crafting.DisciplineRefining:    r.Refining != nil,
		crafting.DisciplineEngineering: r.Engineering != nil,
	}
	if !set[r.Discipline] {
		return errors.InvalidInput(fmt.Sprintf("%s request has no %s payload", r.Discipline, r.Discipline))
	}
	for d, ok := range set {
		if ok && d != r.Discipline {
			return errors.InvalidInput(fmt.Sprintf("%s request also carries a %s payload", r.Discipline, d))
		}
	}
	return nil
}

// SmithingRequest wraps a smithing layout
func SmithingRequest(in crafting.SmithingInput) LayoutRequest {
	return LayoutRequest{Discipline: crafting.DisciplineSmithing, Smithing: &in}
}

// AdornmentRequest wraps an adornment layout
func AdornmentRequest(in crafting.AdornmentInput) LayoutRequest {
	return LayoutRequest{Discipline: crafting.DisciplineAdornment, Adornment: &in}
}

// AlchemyRequest wraps an alchemy layout
func AlchemyRequest(in crafting.AlchemyInput) LayoutRequest {
	return LayoutRequest{Discipline: crafting.DisciplineAlchemy, Alchemy: &in}
}

// RefiningRequest wraps a refining layout
func RefiningRequest(in crafting.RefiningInput) LayoutRequest {
	return LayoutRequest{Discipline: crafting.DisciplineRefining, Refining: &in}
}

// EngineeringRequest wraps an engineering layout
func EngineeringRequest(in crafting.EngineeringInput) LayoutRequest {
	return LayoutRequest{Discipline: crafting.DisciplineEngineering, Engineering: &in}
}

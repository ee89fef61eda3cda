package ports

import (
	"context"

	"craftcheck/domain/crafting"
)

// MaterialLookup resolves material ids to crafting metadata.
// Implementations must be safe for concurrent reads.
type MaterialLookup interface {
	// Lookup returns false when the id is unknown
	Lookup(materialID string) (crafting.MaterialInfo, bool)
}

// MaterialRepository is the persistent source a lookup catalog is loaded from
type MaterialRepository interface {
	ListMaterials(ctx context.Context) ([]crafting.MaterialInfo, error)
	UpsertMaterial(ctx context.Context, m crafting.MaterialInfo) error
}

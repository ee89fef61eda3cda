package postgres

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"craftcheck/adapters/catalog"
	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
	"craftcheck/ports"
)

// MaterialRepositoryImpl implements MaterialRepository for PostgreSQL
type MaterialRepositoryImpl struct {
	db *sqlx.DB
}

// NewMaterialRepository creates a new PostgreSQL material repository
func NewMaterialRepository(db *sqlx.DB) *MaterialRepositoryImpl {
	return &MaterialRepositoryImpl{db: db}
}

// ListMaterials returns every material ordered by id
func (r *MaterialRepositoryImpl) ListMaterials(ctx context.Context) ([]crafting.MaterialInfo, error) {
	var materials []crafting.MaterialInfo
	err := r.db.SelectContext(ctx, &materials, `
		SELECT id, name, category, tier, rarity, element
		FROM materials
		ORDER BY id
	`)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return materials, nil
}

// UpsertMaterial inserts or replaces a material
func (r *MaterialRepositoryImpl) UpsertMaterial(ctx context.Context, m crafting.MaterialInfo) error {
	m = catalog.Normalize(m)
	if m.ID == "" {
		return errors.ValidationError("material id is required")
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO materials (id, name, category, tier, rarity, element, updated_at)
		VALUES (:id, :name, :category, :tier, :rarity, :element, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			tier = EXCLUDED.tier,
			rarity = EXCLUDED.rarity,
			element = EXCLUDED.element,
			updated_at = NOW()
	`, m)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// ImportMaterials upserts a batch inside one transaction
func (r *MaterialRepositoryImpl) ImportMaterials(ctx context.Context, materials []crafting.MaterialInfo) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer tx.Rollback()

	n := 0
	for _, m := range materials {
		m = catalog.Normalize(m)
		if m.ID == "" {
			continue
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO materials (id, name, category, tier, rarity, element, updated_at)
			VALUES (:id, :name, :category, :tier, :rarity, :element, NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				tier = EXCLUDED.tier,
				rarity = EXCLUDED.rarity,
				element = EXCLUDED.element,
				updated_at = NOW()
		`, m); err != nil {
			return 0, errors.Wrapf(err, "failed to import material %s", m.ID)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.WithCode(errors.CodeDatabaseError, err)
	}
	log.Printf("[MaterialRepository] Imported %d materials", n)
	return n, nil
}

// LoadCatalog snapshots a repository into an in-memory catalog
func LoadCatalog(ctx context.Context, repo ports.MaterialRepository) (*catalog.Catalog, error) {
	materials, err := repo.ListMaterials(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load materials")
	}
	c := catalog.FromMaterials(materials)
	log.Printf("[MaterialRepository] Loaded %d materials into catalog", c.Len())
	return c, nil
}

var _ ports.MaterialRepository = (*MaterialRepositoryImpl)(nil)

package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"craftcheck/adapters/backend"
	"craftcheck/adapters/catalog"
	"craftcheck/adapters/excel"
	"craftcheck/adapters/memory"
	"craftcheck/adapters/postgres"
	"craftcheck/app"
	domainclassifier "craftcheck/domain/classifier"
	"craftcheck/internal/classifier"
	"craftcheck/internal/config"
	"craftcheck/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	MaterialRepo *postgres.MaterialRepositoryImpl
	Ledger       ports.ResultLedger

	// Classification
	Materials *catalog.Catalog
	Factory   ports.BackendFactory
	Manager   *classifier.Manager
	Service   *app.ValidationService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{
		Config:  cfg,
		Factory: backend.NewFactory(),
	}, nil
}

// InitWithDatabase wires the postgres repositories
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db
	c.MaterialRepo = postgres.NewMaterialRepository(db)
	c.Ledger = postgres.NewResultLedger(db)
	log.Printf("[Container] Database repositories initialized")
	return nil
}

// Init loads the material catalog, initializes the classifier manager and
// builds the validation service. Without a database the ledger is in memory.
func (c *Container) Init(ctx context.Context) error {
	materials, err := c.loadMaterials(ctx)
	if err != nil {
		return fmt.Errorf("failed to load materials: %w", err)
	}
	c.Materials = materials

	if c.Ledger == nil {
		c.Ledger = memory.NewResultLedger(c.Config.Data.LedgerCapacity)
	}

	c.Manager = classifier.NewManager(c.Materials)
	if err := c.Manager.Initialize(c.Factory, domainclassifier.OverridesOf(c.Config.Classifier)); err != nil {
		// every discipline failed; keep serving so status explains why
		log.Printf("[Container] Warning: %v", err)
	}

	if c.Config.Data.Preload {
		start := time.Now()
		if err := c.Manager.Preload(); err != nil {
			log.Printf("[Container] Warning: preload failed: %v", err)
		} else {
			log.Printf("[Container] Preload finished in %v", time.Since(start))
		}
	}

	c.Service = app.NewValidationService(c.Manager, c.Ledger)
	log.Printf("[Container] Initialized with %d materials", c.Materials.Len())
	return nil
}

// loadMaterials merges the database catalog with the materials file; file
// entries win on conflicting ids
func (c *Container) loadMaterials(ctx context.Context) (*catalog.Catalog, error) {
	cat := catalog.New()
	if c.MaterialRepo != nil {
		fromDB, err := postgres.LoadCatalog(ctx, c.MaterialRepo)
		if err != nil {
			return nil, err
		}
		for _, m := range fromDB.All() {
			cat.Put(m)
		}
	}

	if path := c.Config.Data.MaterialsFile; path != "" {
		fromFile, err := LoadMaterialsFile(path)
		if err != nil {
			return nil, err
		}
		for _, m := range fromFile.All() {
			cat.Put(m)
		}
	}

	if cat.Len() == 0 {
		log.Printf("[Container] Warning: no materials loaded; every id encodes as neutral")
	}
	return cat, nil
}

// LoadMaterialsFile reads a catalog from .json/.yaml/.yml or a .xlsx/.csv sheet
func LoadMaterialsFile(path string) (*catalog.Catalog, error) {
	if excel.IsSheetFile(path) {
		materials, err := excel.NewMaterialReader(path).ReadMaterials()
		if err != nil {
			return nil, err
		}
		return catalog.FromMaterials(materials), nil
	}
	return catalog.LoadFile(path)
}

// Close releases backends and the database connection
func (c *Container) Close() error {
	if c.Manager != nil {
		c.Manager.Unload()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
	"craftcheck/ports"
)

// Catalog is an in-memory material table
type Catalog struct {
	mu        sync.RWMutex
	materials map[string]crafting.MaterialInfo
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{materials: make(map[string]crafting.MaterialInfo)}
}

// FromMaterials builds a catalog; later duplicates win
func FromMaterials(materials []crafting.MaterialInfo) *Catalog {
	c := New()
	for _, m := range materials {
		c.Put(m)
	}
	return c
}

// Lookup implements ports.MaterialLookup
func (c *Catalog) Lookup(materialID string) (crafting.MaterialInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.materials[materialID]
	return m, ok
}

// Put inserts or replaces a material after normalising its enums
func (c *Catalog) Put(m crafting.MaterialInfo) {
	m = Normalize(m)
	if m.ID == "" {
		return
	}
	c.mu.Lock()
	c.materials[m.ID] = m
	c.mu.Unlock()
}

// Len returns the number of materials
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.materials)
}

// All returns every material sorted by id
func (c *Catalog) All() []crafting.MaterialInfo {
	c.mu.RLock()
	out := make([]crafting.MaterialInfo, 0, len(c.materials))
	for _, m := range c.materials {
		out = append(out, m)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Normalize canonicalises the string enums of a material and clamps its tier.
// A missing rarity reads as common.
func Normalize(m crafting.MaterialInfo) crafting.MaterialInfo {
	m.ID = strings.TrimSpace(m.ID)
	m.Category = crafting.ParseCategory(string(m.Category))
	if m.Rarity == "" {
		m.Rarity = crafting.RarityCommon
	} else {
		m.Rarity = crafting.ParseRarity(string(m.Rarity))
	}
	m.Element = crafting.ParseElement(string(m.Element))
	m.Tier = crafting.ClampTier(m.Tier)
	return m
}

// file is the on-disk catalog document
type file struct {
	Materials []crafting.MaterialInfo `json:"materials" yaml:"materials"`
}

// LoadFile reads a .json, .yaml or .yml catalog
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}

	var doc file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported catalog format %q", ext))
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse catalog %s: %w", path, err))
	}

	c := FromMaterials(doc.Materials)
	log.Printf("[Catalog] Loaded %d materials from %s", c.Len(), path)
	return c, nil
}

// WriteYAML stores the catalog in the yaml file format
func (c *Catalog) WriteYAML(path string) error {
	data, err := yaml.Marshal(file{Materials: c.All()})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var _ ports.MaterialLookup = (*Catalog)(nil)

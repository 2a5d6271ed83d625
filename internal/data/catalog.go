package data

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalog bundles spells and the three lookup tables. Read-only after
// construction; shared by every caster.
type Catalog struct {
	spells map[string]*Spell

	Recipes    *SpellRecipeTable
	Injections *InjectionEffectTable
	Chains     *ChainEffectTable
}

// CatalogFile is the on-disk layout of a catalog.
type CatalogFile struct {
	Spells       []Spell                `yaml:"spells"`
	Recipes      []SpellRecipeEntry     `yaml:"recipes"`
	Injections   []InjectionEffectEntry `yaml:"injection_effects"`
	ChainEffects []ChainEffectEntry     `yaml:"chain_effects"`
}

// NewCatalog builds a catalog. Spells without an ID are skipped; duplicate
// spell IDs follow the same first-wins policy as the tables.
func NewCatalog(f CatalogFile) *Catalog {
	c := &Catalog{
		spells:     make(map[string]*Spell, len(f.Spells)),
		Recipes:    NewSpellRecipeTable(f.Recipes),
		Injections: NewInjectionEffectTable(f.Injections),
		Chains:     NewChainEffectTable(f.ChainEffects),
	}

	for i := range f.Spells {
		s := f.Spells[i]
		if s.ID == "" {
			slog.Warn("spell without id skipped", "index", i)
			continue
		}
		if _, exists := c.spells[s.ID]; exists {
			slog.Warn("duplicate spell id ignored", "id", s.ID, "index", i)
			continue
		}
		s.normalize()
		c.spells[s.ID] = &s
	}

	for _, r := range c.Recipes.Entries() {
		if r.SpellOverride != "" && c.spells[r.SpellOverride] == nil {
			slog.Warn("recipe references unknown spell", "key", r.Key(), "spell", r.SpellOverride)
		}
	}

	slog.Info("loaded spell catalog",
		"spells", len(c.spells),
		"recipes", c.Recipes.Len(),
		"injection_effects", c.Injections.Len(),
		"chain_effects", c.Chains.Len())
	return c
}

// Spell returns the spell by ID.
func (c *Catalog) Spell(id string) (*Spell, bool) {
	if c == nil || id == "" {
		return nil, false
	}
	s, ok := c.spells[id]
	return s, ok
}

// SpellIDs returns all spell IDs, sorted.
func (c *Catalog) SpellIDs() []string {
	ids := make([]string, 0, len(c.spells))
	for id := range c.spells {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var f CatalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return NewCatalog(f), nil
}

// LoadCatalog reads a catalog from path. An empty path or a missing file
// yields DefaultCatalog().
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("catalog file not found, using built-in catalog", "path", path)
			return DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

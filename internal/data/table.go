package data

import (
	"fmt"
	"log/slog"
)

// Table — read-only индекс записей по составному ключу.
// Строится один раз; при дубликате ключа побеждает первая запись, остальные
// логируются и сохраняются в Duplicates(). После построения безопасен для
// конкурентного чтения.
type Table[K comparable, V any] struct {
	name       string
	entries    map[K]V
	order      []K
	duplicates []K
}

func newTable[K comparable, V any](name string, entries []V, key func(V) K) *Table[K, V] {
	t := &Table[K, V]{
		name:    name,
		entries: make(map[K]V, len(entries)),
		order:   make([]K, 0, len(entries)),
	}
	for i, e := range entries {
		k := key(e)
		if _, exists := t.entries[k]; exists {
			slog.Warn("duplicate table key ignored",
				"table", name,
				"key", fmt.Sprint(k),
				"index", i)
			t.duplicates = append(t.duplicates, k)
			continue
		}
		t.entries[k] = e
		t.order = append(t.order, k)
	}
	return t
}

// TryGet returns the entry stored under key. A nil table behaves as empty.
func (t *Table[K, V]) TryGet(key K) (V, bool) {
	if t == nil {
		var zero V
		return zero, false
	}
	v, ok := t.entries[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (t *Table[K, V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Name returns the table name used in diagnostics.
func (t *Table[K, V]) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Duplicates returns keys that were rejected at build time, in input order.
func (t *Table[K, V]) Duplicates() []K {
	if t == nil {
		return nil
	}
	out := make([]K, len(t.duplicates))
	copy(out, t.duplicates)
	return out
}

// Entries returns accepted entries in insertion order.
func (t *Table[K, V]) Entries() []V {
	if t == nil {
		return nil
	}
	out := make([]V, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.entries[k])
	}
	return out
}

type (
	SpellRecipeTable     = Table[SpellRecipeKey, SpellRecipeEntry]
	InjectionEffectTable = Table[InjectionEffectKey, InjectionEffectEntry]
	ChainEffectTable     = Table[ChainEffectKey, ChainEffectEntry]
)

// NewSpellRecipeTable builds a recipe table, first entry wins.
func NewSpellRecipeTable(entries []SpellRecipeEntry) *SpellRecipeTable {
	return newTable("spell_recipe", entries, SpellRecipeEntry.Key)
}

// NewInjectionEffectTable builds an injection table. Entries are normalized first.
func NewInjectionEffectTable(entries []InjectionEffectEntry) *InjectionEffectTable {
	normalized := make([]InjectionEffectEntry, len(entries))
	for i, e := range entries {
		e.normalize()
		normalized[i] = e
	}
	return newTable("injection_effect", normalized, InjectionEffectEntry.Key)
}

// NewChainEffectTable builds a chain effect table. Entries are normalized first.
func NewChainEffectTable(entries []ChainEffectEntry) *ChainEffectTable {
	normalized := make([]ChainEffectEntry, len(entries))
	for i, e := range entries {
		e.normalize()
		normalized[i] = e
	}
	return newTable("chain_effect", normalized, ChainEffectEntry.Key)
}

package data

import (
	"testing"

	"github.com/udisondev/spellchain/internal/element"
)

func TestChainEffectTable_FirstWins(t *testing.T) {
	key := ChainEffectKey{Stage: StageDebuffToCrowdControl, From: element.R, To: element.B}
	tbl := NewChainEffectTable([]ChainEffectEntry{
		{Stage: key.Stage, From: key.From, To: key.To, EffectType: EffectStun, AllowChainUltimate: true},
		{Stage: key.Stage, From: key.From, To: key.To, EffectType: EffectSlow},
		{Stage: StageCrowdControlToUltimate, From: element.B, To: element.Y},
	})

	got, ok := tbl.TryGet(key)
	if !ok {
		t.Fatal("TryGet: entry not found")
	}
	if got.EffectType != EffectStun || !got.AllowChainUltimate {
		t.Errorf("TryGet returned %+v, want first-inserted entry", got)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
	if dups := tbl.Duplicates(); len(dups) != 1 || dups[0] != key {
		t.Errorf("Duplicates() = %v, want [%v]", dups, key)
	}
}

func TestSpellRecipeTable_FirstWins(t *testing.T) {
	tbl := NewSpellRecipeTable([]SpellRecipeEntry{
		{Stage: StageDebuffToCrowdControl, From: element.R, To: element.Y, SpellOverride: "first"},
		{Stage: StageDebuffToCrowdControl, From: element.R, To: element.Y, SpellOverride: "second"},
	})

	got, ok := tbl.TryGet(SpellRecipeKey{Stage: StageDebuffToCrowdControl, From: element.R, To: element.Y})
	if !ok || got.SpellOverride != "first" {
		t.Errorf("TryGet = %+v, %v; want first", got, ok)
	}
}

func TestInjectionEffectTable_FirstWinsAndNormalize(t *testing.T) {
	tbl := NewInjectionEffectTable([]InjectionEffectEntry{
		{Impact: ImpactDebuff, Element: element.R, DamageMultiplier: 0.5, ShieldAmount: -3, EffectDuration: -1},
		{Impact: ImpactDebuff, Element: element.R, DamageBonusFlat: 99},
	})

	got, ok := tbl.TryGet(InjectionEffectKey{Impact: ImpactDebuff, Element: element.R})
	if !ok {
		t.Fatal("entry not found")
	}
	if got.DamageBonusFlat != 0 {
		t.Errorf("second entry leaked: %+v", got)
	}
	if got.DamageMultiplier != 1 || got.ShieldAmount != 0 || got.EffectDuration != 0 {
		t.Errorf("entry not normalized: %+v", got)
	}
}

func TestTable_KeysAreDistinct(t *testing.T) {
	tbl := NewChainEffectTable([]ChainEffectEntry{
		{Stage: StageDebuffToCrowdControl, From: element.R, To: element.B},
	})

	for _, k := range []ChainEffectKey{
		{Stage: StageDebuffToCrowdControl, From: element.B, To: element.R},
		{Stage: StageCrowdControlToUltimate, From: element.R, To: element.B},
	} {
		if _, ok := tbl.TryGet(k); ok {
			t.Errorf("TryGet(%v) hit, want miss", k)
		}
	}
}

func TestTable_NilIsEmpty(t *testing.T) {
	var tbl *ChainEffectTable
	if _, ok := tbl.TryGet(ChainEffectKey{}); ok {
		t.Error("nil table returned an entry")
	}
	if tbl.Len() != 0 || tbl.Duplicates() != nil {
		t.Error("nil table not empty")
	}
}

func TestChainEffectEntry_Normalize(t *testing.T) {
	tbl := NewChainEffectTable([]ChainEffectEntry{
		{Stage: StageDebuffToCrowdControl, From: element.Y, To: element.Y, EffectDuration: -2, EffectRadius: -1, UltimateDamageMultiplier: 0},
	})
	got, _ := tbl.TryGet(ChainEffectKey{Stage: StageDebuffToCrowdControl, From: element.Y, To: element.Y})
	if got.EffectDuration != 0 || got.EffectRadius != 0 || got.UltimateDamageMultiplier != 1 {
		t.Errorf("normalize: %+v", got)
	}
}

func TestKeyString(t *testing.T) {
	k := ChainEffectKey{Stage: StageCrowdControlToUltimate, From: element.B, To: element.Y}
	if got, want := k.String(), "CrowdControlToUltimate:B->Y"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	ik := InjectionEffectKey{Impact: ImpactUltimate, Element: element.R}
	if got, want := ik.String(), "Ultimate:R"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

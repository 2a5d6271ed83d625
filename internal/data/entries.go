package data

import (
	"log/slog"

	"github.com/udisondev/spellchain/internal/element"
)

// SpellRecipeEntry may override the spell fired for a chain step and how it
// is delivered and classified. Auto values defer to the base spell.
type SpellRecipeEntry struct {
	Stage         ChainStage      `yaml:"stage"`
	From          element.Element `yaml:"from"`
	To            element.Element `yaml:"to"`
	SpellOverride string          `yaml:"spell_override"`
	Delivery      DeliveryType    `yaml:"delivery"`
	Impact        ImpactType      `yaml:"impact"`
}

func (e SpellRecipeEntry) Key() SpellRecipeKey {
	return SpellRecipeKey{Stage: e.Stage, From: e.From, To: e.To}
}

// InjectionEffectEntry is a minor bonus layered on a cast that consumed an element.
type InjectionEffectEntry struct {
	Impact           ImpactType      `yaml:"impact"`
	Element          element.Element `yaml:"element"`
	EffectType       EffectType      `yaml:"effect"`
	EffectDuration   float64         `yaml:"effect_duration"`
	DamageBonusFlat  float64         `yaml:"damage_bonus_flat"`
	DamageMultiplier float64         `yaml:"damage_multiplier"`
	ShieldAmount     float64         `yaml:"shield_amount"`
}

func (e InjectionEffectEntry) Key() InjectionEffectKey {
	return InjectionEffectKey{Impact: e.Impact, Element: e.Element}
}

// ChainEffectEntry is the major effect of a chain step plus the gate that
// decides whether the enhanced ultimate may be armed.
type ChainEffectEntry struct {
	Stage                    ChainStage      `yaml:"stage"`
	From                     element.Element `yaml:"from"`
	To                       element.Element `yaml:"to"`
	EffectType               EffectType      `yaml:"effect"`
	EffectDuration           float64         `yaml:"effect_duration"`
	EffectRadius             float64         `yaml:"effect_radius"`
	TargetMask               uint32          `yaml:"target_mask"`
	StunDurationBonus        float64         `yaml:"stun_duration_bonus"`
	UltimateDamageMultiplier float64         `yaml:"ultimate_damage_multiplier"`
	AllowChainUltimate       bool            `yaml:"allow_chain_ultimate"`
}

func (e ChainEffectEntry) Key() ChainEffectKey {
	return ChainEffectKey{Stage: e.Stage, From: e.From, To: e.To}
}

// normalize clamps values that must stay in range.
func (e *InjectionEffectEntry) normalize() {
	if e.EffectDuration < 0 {
		slog.Warn("injection effect duration clamped", "key", e.Key(), "value", e.EffectDuration)
		e.EffectDuration = 0
	}
	if e.DamageMultiplier < 1 {
		if e.DamageMultiplier != 0 {
			slog.Warn("injection damage multiplier clamped", "key", e.Key(), "value", e.DamageMultiplier)
		}
		e.DamageMultiplier = 1
	}
	if e.ShieldAmount < 0 {
		slog.Warn("injection shield clamped", "key", e.Key(), "value", e.ShieldAmount)
		e.ShieldAmount = 0
	}
}

func (e *ChainEffectEntry) normalize() {
	if e.EffectDuration < 0 {
		slog.Warn("chain effect duration clamped", "key", e.Key(), "value", e.EffectDuration)
		e.EffectDuration = 0
	}
	if e.EffectRadius < 0 {
		slog.Warn("chain effect radius clamped", "key", e.Key(), "value", e.EffectRadius)
		e.EffectRadius = 0
	}
	if e.StunDurationBonus < 0 {
		e.StunDurationBonus = 0
	}
	if e.UltimateDamageMultiplier < 1 {
		if e.UltimateDamageMultiplier != 0 {
			slog.Warn("ultimate damage multiplier clamped", "key", e.Key(), "value", e.UltimateDamageMultiplier)
		}
		e.UltimateDamageMultiplier = 1
	}
}

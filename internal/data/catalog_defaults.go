package data

import (
	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/status"
)

// Built-in spell IDs.
const (
	SpellFrostHex           = "frost_hex"
	SpellShockBind          = "shock_bind"
	SpellSkyBreaker         = "sky_breaker"
	SpellSkyBreakerEnhanced = "sky_breaker_enhanced"
	SpellEmberMeteor        = "ember_meteor"
	SpellSapMist            = "sap_mist"
	SpellBossBolt           = "boss_bolt"
)

// DefaultCatalog строит встроенный каталог из Go-литералов.
func DefaultCatalog() *Catalog {
	return NewCatalog(CatalogFile{
		Spells:       defaultSpells,
		Recipes:      defaultRecipes,
		Injections:   defaultInjections,
		ChainEffects: defaultChainEffects,
	})
}

var defaultSpells = []Spell{
	{
		ID: SpellFrostHex, Name: "Frost Hex", Category: CategoryDebuff,
		ManaCost: 10, Cooldown: 1, Windup: 0.2, Recovery: 0.3,
		Debuff: DebuffSpec{Type: status.DefenseDown, Duration: 4, Magnitude: 0.25},
		Radius: 4, TargetMask: MaskEnemy,
	},
	{
		ID: SpellSapMist, Name: "Sap Mist", Category: CategoryDebuff, Delivery: DeliveryArea,
		ManaCost: 15, Cooldown: 3, Windup: 0.4, Recovery: 0.4,
		Debuff: DebuffSpec{Type: status.Weaken, Duration: 5, Magnitude: 0.5},
		Radius: 6, TargetMask: MaskEnemy,
	},
	{
		ID: SpellShockBind, Name: "Shock Bind", Category: CategoryCrowdControl,
		ManaCost: 15, Cooldown: 2, Windup: 0.25, Recovery: 0.35,
		CrowdControl: CrowdControlSpec{Type: status.Stun, Duration: 1.5, Strength: 1},
		Radius: 4, TargetMask: MaskEnemy,
	},
	{
		ID: SpellEmberMeteor, Name: "Ember Meteor", Category: CategoryCrowdControl, Delivery: DeliveryMeteor,
		ManaCost: 20, Cooldown: 4, Windup: 0.6, Recovery: 0.5,
		Damage: 25, Radius: 5, TargetMask: MaskEnemy,
		CrowdControl: CrowdControlSpec{Type: status.Knockdown, Duration: 2, Strength: 1},
	},
	{
		ID: SpellSkyBreaker, Name: "Sky Breaker", Category: CategoryProjectile, UltimateHit: true,
		ManaCost: 40, Cooldown: 8, Windup: 0.5, Recovery: 0.8,
		Damage: 120, Radius: 3, TargetMask: MaskEnemy,
	},
	{
		ID: SpellSkyBreakerEnhanced, Name: "Sky Breaker (Chained)", Category: CategoryProjectile, UltimateHit: true,
		ManaCost: 40, Cooldown: 8, Windup: 0.5, Recovery: 0.8,
		Damage: 150, Radius: 4, TargetMask: MaskEnemy,
	},
	{
		ID: SpellBossBolt, Name: "Boss Bolt", Category: CategoryProjectile, Impact: ImpactNone,
		Cooldown: 2, Windup: 0.8,
		Damage: 15, Radius: 2, TargetMask: MaskPlayer,
		Parryable: true, ParryElement: element.R,
	},
}

var defaultRecipes = []SpellRecipeEntry{
	{Stage: StageDebuffToCrowdControl, From: element.R, To: element.Y, SpellOverride: SpellEmberMeteor, Delivery: DeliveryMeteor},
	{Stage: StageCrowdControlToUltimate, From: element.B, To: element.R, Delivery: DeliveryArea},
}

var defaultInjections = []InjectionEffectEntry{
	{Impact: ImpactDebuff, Element: element.R, DamageBonusFlat: 5},
	{Impact: ImpactDebuff, Element: element.B, ShieldAmount: 10},
	{Impact: ImpactCrowdControl, Element: element.B, EffectType: EffectSlow, EffectDuration: 2},
	{Impact: ImpactCrowdControl, Element: element.Y, EffectType: EffectRoot, EffectDuration: 1},
	{Impact: ImpactUltimate, Element: element.Y, DamageMultiplier: 1.2, ShieldAmount: 20},
}

var defaultChainEffects = []ChainEffectEntry{
	{
		Stage: StageDebuffToCrowdControl, From: element.R, To: element.Y,
		EffectType: EffectStun, EffectDuration: 2, EffectRadius: 5, TargetMask: MaskEnemy,
		StunDurationBonus: 0.5, AllowChainUltimate: true,
	},
	{
		Stage: StageDebuffToCrowdControl, From: element.B, To: element.B,
		EffectType: EffectFreeze, EffectDuration: 1.5, EffectRadius: 4, TargetMask: MaskEnemy,
		AllowChainUltimate: true,
	},
	{
		Stage: StageDebuffToCrowdControl, From: element.Y, To: element.R,
		EffectType: EffectSlow, EffectDuration: 3, EffectRadius: 6, TargetMask: MaskEnemy,
	},
	{
		Stage: StageCrowdControlToUltimate, From: element.Y, To: element.R,
		EffectType: EffectStun, EffectDuration: 1, EffectRadius: 4, TargetMask: MaskEnemy,
		UltimateDamageMultiplier: 1.5,
	},
	{
		Stage: StageCrowdControlToUltimate, From: element.B, To: element.Y,
		UltimateDamageMultiplier: 1.25,
	},
}

package data

import (
	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/status"
)

// Target layer bits used by spell and chain entry masks.
const (
	MaskPlayer uint32 = 1 << iota
	MaskEnemy

	MaskAll uint32 = ^uint32(0)
)

// DebuffSpec — дебафф, который накладывает заклинание категории Debuff.
type DebuffSpec struct {
	Type      status.DebuffType `yaml:"type"`
	Duration  float64           `yaml:"duration"`
	Magnitude float64           `yaml:"magnitude"`
}

// CrowdControlSpec — контроль, который накладывает заклинание категории CrowdControl.
type CrowdControlSpec struct {
	Type     status.CrowdControlType `yaml:"type"`
	Duration float64                 `yaml:"duration"`
	Strength float64                 `yaml:"strength"`
}

// Spell — неизменяемое описание заклинания (mana, cooldown, тайминги, эффект).
type Spell struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Category SpellCategory `yaml:"category"`

	ManaCost float64 `yaml:"mana_cost"`
	Cooldown float64 `yaml:"cooldown"`
	Windup   float64 `yaml:"windup"`
	Recovery float64 `yaml:"recovery"`

	// Impact/Delivery: Auto означает вывод из категории.
	Impact   ImpactType   `yaml:"impact"`
	Delivery DeliveryType `yaml:"delivery"`

	Damage      float64 `yaml:"damage"`
	UltimateHit bool    `yaml:"ultimate_hit"`

	Debuff       DebuffSpec       `yaml:"debuff"`
	CrowdControl CrowdControlSpec `yaml:"crowd_control"`

	Radius     float64 `yaml:"radius"`
	TargetMask uint32  `yaml:"target_mask"`

	Parryable    bool            `yaml:"parryable"`
	ParryElement element.Element `yaml:"parry_element"`
}

// DataImpact returns the explicit impact, else the one implied by the category.
// ImpactAuto means the caller must fall back to its own rule.
func (s *Spell) DataImpact() ImpactType {
	if s.Impact != ImpactAuto {
		return s.Impact
	}
	switch s.Category {
	case CategoryDebuff:
		return ImpactDebuff
	case CategoryCrowdControl:
		return ImpactCrowdControl
	case CategoryProjectile:
		if s.UltimateHit {
			return ImpactUltimate
		}
	}
	return ImpactAuto
}

// EffectiveDelivery returns the explicit delivery or Projectile.
func (s *Spell) EffectiveDelivery() DeliveryType {
	if s.Delivery == DeliveryAuto {
		return DeliveryProjectile
	}
	return s.Delivery
}

func (s *Spell) normalize() {
	s.ManaCost = max(0, s.ManaCost)
	s.Cooldown = max(0, s.Cooldown)
	s.Windup = max(0, s.Windup)
	s.Recovery = max(0, s.Recovery)
	s.Damage = max(0, s.Damage)
	s.Radius = max(0, s.Radius)
	if s.Name == "" {
		s.Name = s.ID
	}
}

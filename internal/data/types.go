package data

import (
	"fmt"
	"strings"
)

// ChainStage — переход цепочки, часть ключа рецепта и chain-эффекта.
type ChainStage uint8

const (
	StageNone ChainStage = iota
	StageDebuffToCrowdControl
	StageCrowdControlToUltimate
)

var stageNames = [...]string{"None", "DebuffToCrowdControl", "CrowdControlToUltimate"}

func (s ChainStage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("ChainStage(%d)", s)
}

func (s ChainStage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ChainStage) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), stageNames[:])
	if err != nil {
		return fmt.Errorf("chain stage: %w", err)
	}
	*s = ChainStage(v)
	return nil
}

// ImpactType classifies a cast for chain purposes. Auto means "decide from the spell".
type ImpactType uint8

const (
	ImpactAuto ImpactType = iota
	ImpactDebuff
	ImpactCrowdControl
	ImpactUltimate
	ImpactNone
)

var impactNames = [...]string{"Auto", "Debuff", "CrowdControl", "Ultimate", "None"}

func (t ImpactType) String() string {
	if int(t) < len(impactNames) {
		return impactNames[t]
	}
	return fmt.Sprintf("ImpactType(%d)", t)
}

func (t ImpactType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ImpactType) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), impactNames[:])
	if err != nil {
		return fmt.Errorf("impact type: %w", err)
	}
	*t = ImpactType(v)
	return nil
}

// DeliveryType describes how a spell reaches its target. Area and Meteor
// require target confirmation.
type DeliveryType uint8

const (
	DeliveryAuto DeliveryType = iota
	DeliveryProjectile
	DeliveryArea
	DeliveryMeteor
	DeliveryNone
)

var deliveryNames = [...]string{"Auto", "Projectile", "Area", "Meteor", "None"}

func (d DeliveryType) String() string {
	if int(d) < len(deliveryNames) {
		return deliveryNames[d]
	}
	return fmt.Sprintf("DeliveryType(%d)", d)
}

// RequiresTarget reports whether the delivery waits for target confirmation.
func (d DeliveryType) RequiresTarget() bool {
	return d == DeliveryArea || d == DeliveryMeteor
}

func (d DeliveryType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DeliveryType) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), deliveryNames[:])
	if err != nil {
		return fmt.Errorf("delivery type: %w", err)
	}
	*d = DeliveryType(v)
	return nil
}

// EffectType is the major or minor effect applied by chain and injection entries.
type EffectType uint8

const (
	EffectNone EffectType = iota
	EffectStun
	EffectRoot
	EffectFreeze
	EffectSlow
)

var effectNames = [...]string{"None", "Stun", "Root", "Freeze", "Slow"}

func (e EffectType) String() string {
	if int(e) < len(effectNames) {
		return effectNames[e]
	}
	return fmt.Sprintf("EffectType(%d)", e)
}

func (e EffectType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *EffectType) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), effectNames[:])
	if err != nil {
		return fmt.Errorf("effect type: %w", err)
	}
	*e = EffectType(v)
	return nil
}

// SpellCategory — базовая категория заклинания, используется для вывода ImpactType.
type SpellCategory uint8

const (
	CategoryProjectile SpellCategory = iota
	CategoryDebuff
	CategoryCrowdControl
)

var categoryNames = [...]string{"Projectile", "Debuff", "CrowdControl"}

func (c SpellCategory) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("SpellCategory(%d)", c)
}

func (c SpellCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *SpellCategory) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), categoryNames[:])
	if err != nil {
		return fmt.Errorf("spell category: %w", err)
	}
	*c = SpellCategory(v)
	return nil
}

func parseEnum(s string, names []string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	for i, n := range names {
		if strings.EqualFold(s, n) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", s)
}

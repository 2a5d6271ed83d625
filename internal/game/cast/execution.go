package cast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/chain"
	"github.com/udisondev/spellchain/internal/model"
)

var (
	ErrMissingMagic   = errors.New("no spell assigned to slot")
	ErrCastLocked     = errors.New("caster is busy")
	ErrCasterDisabled = errors.New("caster cannot act")
	ErrNotEnoughMana  = errors.New("not enough mana")
	ErrOnCooldown     = errors.New("spell on cooldown")
	ErrNoPendingCast  = errors.New("no pending cast")
	ErrTargetPending  = errors.New("a cast is waiting for target confirmation")
)

// Slot is an input slot bound to a spell.
type Slot uint8

const (
	SlotNone Slot = iota
	SlotQ
	SlotE
	SlotR
)

func (s Slot) String() string {
	switch s {
	case SlotQ:
		return "Q"
	case SlotE:
		return "E"
	case SlotR:
		return "R"
	default:
		return "None"
	}
}

func (s Slot) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Slot) UnmarshalText(text []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(text))) {
	case "Q":
		*s = SlotQ
	case "E":
		*s = SlotE
	case "R":
		*s = SlotR
	case "", "NONE":
		*s = SlotNone
	default:
		return fmt.Errorf("unknown cast slot %q", text)
	}
	return nil
}

// Loadout binds slots to spell IDs. EnhancedUltimate replaces the R spell
// when the chain arms it.
type Loadout struct {
	Q                string `yaml:"q"`
	E                string `yaml:"e"`
	R                string `yaml:"r"`
	EnhancedUltimate string `yaml:"enhanced_ultimate"`
}

// SpellID returns the spell bound to slot.
func (l Loadout) SpellID(slot Slot) string {
	switch slot {
	case SlotQ:
		return l.Q
	case SlotE:
		return l.E
	case SlotR:
		return l.R
	default:
		return ""
	}
}

// DefaultLoadout uses the built-in catalog spells.
func DefaultLoadout() Loadout {
	return Loadout{
		Q:                data.SpellFrostHex,
		E:                data.SpellShockBind,
		R:                data.SpellSkyBreaker,
		EnhancedUltimate: data.SpellSkyBreakerEnhanced,
	}
}

// Execution is the full record of one resolved cast.
type Execution struct {
	CasterID    string
	Slot        Slot
	BaseSpellID string
	SpellID     string

	Impact   data.ImpactType
	Delivery data.DeliveryType

	InjectedElement element.Element
	Combination     element.Combination

	HasChainKey bool
	ChainKey    data.ChainEffectKey
	RecipeHit   bool
	Enhanced    bool

	Target     model.Vec3
	Radius     float64
	TargetMask uint32

	Damage float64
	At     float64
}

// HasInjection reports whether an element was consumed by this cast.
func (e *Execution) HasInjection() bool { return e.InjectedElement.Valid() }

// InjectionResolution is the result of the injection-effect lookup.
type InjectionResolution struct {
	Hit   bool
	Entry data.InjectionEffectEntry
}

// ChainResolution is the result of the chain-effect lookup.
type ChainResolution struct {
	Hit   bool
	Entry data.ChainEffectEntry
}

// Outcome of a cast request.
type Outcome uint8

const (
	OutcomeBlocked Outcome = iota
	OutcomeCast
	OutcomePending
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCast:
		return "Cast"
	case OutcomePending:
		return "Pending"
	default:
		return "Blocked"
	}
}

// Result is returned by Cast and Confirm.
type Result struct {
	Outcome   Outcome
	Execution *Execution
	Injection InjectionResolution
	Chain     ChainResolution
	State     chain.Transition
}

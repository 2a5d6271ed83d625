// Package chain tracks the direct-cast chain: which element last succeeded at
// the debuff or crowd-control stage and whether the enhanced ultimate is armed.
package chain

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/translog"
)

// Phase is the chain progress of one caster.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseDebuffReady
	PhaseCrowdControlReady
)

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "None"
	case PhaseDebuffReady:
		return "DebuffReady"
	case PhaseCrowdControlReady:
		return "CrowdControlReady"
	default:
		return fmt.Sprintf("Phase(%d)", p)
	}
}

// State is the phase plus the element that reached it.
type State struct {
	Phase   Phase
	Element element.Element
}

func (s State) String() string {
	if s.Phase == PhaseNone {
		return "None"
	}
	return s.Phase.String() + "(" + s.Element.String() + ")"
}

// Transition describes one tracker update.
type Transition struct {
	From   State
	To     State
	Reason string
}

// Changed reports whether the state moved.
func (t Transition) Changed() bool { return t.From != t.To }

// Tracker owns the chain state of one caster. Not safe for concurrent use.
type Tracker struct {
	state State

	// lastAllowChainUltimate is the AllowChainUltimate flag of the most recent
	// crowd-control stage lookup; false on a miss.
	lastAllowChainUltimate bool
	// gateSpent: запомненный gate уже взвёл одну цепочку.
	gateSpent bool

	rec translog.Recorder
}

// NewTracker creates an empty tracker.
func NewTracker(rec translog.Recorder) *Tracker {
	return &Tracker{rec: translog.OrDiscard(rec)}
}

// State returns the current chain state.
func (t *Tracker) State() State { return t.state }

// LastAllowChainUltimate returns the remembered ultimate gate.
func (t *Tracker) LastAllowChainUltimate() bool { return t.lastAllowChainUltimate }

// UltimateArmed reports whether the enhanced ultimate may fire.
func (t *Tracker) UltimateArmed() bool {
	return t.state.Phase == PhaseCrowdControlReady && t.lastAllowChainUltimate
}

// BuildKey returns the chain key for a cast of impact with injected.
// Crowd-control casts chain from DebuffReady, ultimate casts from
// CrowdControlReady. ok is false when no prior stage succeeded; the cast is
// then evaluated as unchained.
func (t *Tracker) BuildKey(impact data.ImpactType, injected element.Element) (key data.ChainEffectKey, combo element.Combination, ok bool) {
	if !injected.Valid() {
		return data.ChainEffectKey{}, element.CombinationNone, false
	}

	switch {
	case impact == data.ImpactCrowdControl && t.state.Phase == PhaseDebuffReady:
		key = data.ChainEffectKey{Stage: data.StageDebuffToCrowdControl, From: t.state.Element, To: injected}
	case impact == data.ImpactUltimate && t.state.Phase == PhaseCrowdControlReady:
		key = data.ChainEffectKey{Stage: data.StageCrowdControlToUltimate, From: t.state.Element, To: injected}
	default:
		return data.ChainEffectKey{}, element.CombinationNone, false
	}

	combo, _ = element.TryResolve(key.From, injected)
	return key, combo, true
}

// NoteChainLookup remembers the gate of a crowd-control stage lookup.
func (t *Tracker) NoteChainLookup(hit, allowChainUltimate bool) {
	t.lastAllowChainUltimate = hit && allowChainUltimate
	t.gateSpent = false
}

// RecordDebuff arms DebuffReady with injected.
func (t *Tracker) RecordDebuff(injected element.Element) Transition {
	if !injected.Valid() {
		return t.Reset("debuff_without_injection")
	}
	return t.move(State{Phase: PhaseDebuffReady, Element: injected}, "arm_debuff")
}

// RecordCrowdControl resolves a successful crowd-control cast.
//
// From DebuffReady the remembered gate decides between arming
// CrowdControlReady and consuming the chain. Without a prior debuff the cast
// still arms CrowdControlReady when the remembered gate allows it and has not
// armed a chain yet. One lookup arms at most one chain.
func (t *Tracker) RecordCrowdControl(injected element.Element) Transition {
	if !injected.Valid() {
		return t.Reset("cc_without_injection")
	}

	armed := State{Phase: PhaseCrowdControlReady, Element: injected}
	if t.state.Phase == PhaseDebuffReady {
		if t.lastAllowChainUltimate {
			t.gateSpent = true
			return t.move(armed, "arm_cc_to_ultimate")
		}
		return t.move(State{}, "debuff_to_cc_consumed")
	}

	if t.lastAllowChainUltimate && !t.gateSpent {
		t.gateSpent = true
		return t.move(armed, "arm_cc_to_ultimate_by_cc_only")
	}
	return t.move(State{}, "cc_chain_not_allowed")
}

// ConsumeUltimate clears the chain after any ultimate attempt.
func (t *Tracker) ConsumeUltimate(reason string) Transition {
	t.lastAllowChainUltimate = false
	return t.move(State{}, reason)
}

// Reset clears the chain state and the remembered gate.
func (t *Tracker) Reset(reason string) Transition {
	t.lastAllowChainUltimate = false
	return t.move(State{}, reason)
}

func (t *Tracker) move(to State, reason string) Transition {
	tr := Transition{From: t.state, To: to, Reason: reason}
	t.state = to

	slog.Debug("chain state", "from", tr.From, "to", tr.To, "reason", reason)
	t.rec.Record(translog.Record{
		Kind:   translog.KindChain,
		Type:   "state",
		Reason: reason,
		Detail: tr.From.String() + "->" + tr.To.String(),
	})
	return tr
}

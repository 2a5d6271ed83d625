package status

import (
	"github.com/udisondev/spellchain/internal/translog"
)

// DebuffHandler tracks the debuff window and the multipliers debuffs raise.
// All until-timestamps only ever grow while active.
type DebuffHandler struct {
	windowUntil    float64
	damageAmpUntil float64
	weakenUntil    float64

	incomingDamageMultiplier float64
	attackDelayMultiplier    float64
}

// NewDebuffHandler returns a handler with neutral multipliers.
func NewDebuffHandler() *DebuffHandler {
	return &DebuffHandler{
		incomingDamageMultiplier: 1,
		attackDelayMultiplier:    1,
	}
}

// IncomingDamageMultiplier returns the current incoming damage multiplier (>= 1).
func (h *DebuffHandler) IncomingDamageMultiplier() float64 { return h.incomingDamageMultiplier }

// AttackDelayMultiplier returns the current attack delay multiplier (>= 1).
func (h *DebuffHandler) AttackDelayMultiplier() float64 { return h.attackDelayMultiplier }

// IsWindowActive reports whether the debuff window is open at now.
func (h *DebuffHandler) IsWindowActive(now float64) bool {
	return now < h.windowUntil
}

// Apply extends the debuff window and raises the matching multiplier.
func (h *DebuffHandler) Apply(ev Event) translog.Record {
	if ev.Debuff == DebuffNone {
		return translog.Record{Kind: translog.KindBlocked, Type: "Debuff", Reason: "missing_debuff_type"}
	}

	now := ev.At
	duration := max(0, ev.Duration)
	magnitude := max(0, ev.Magnitude)

	h.windowUntil = max(h.windowUntil, now+duration)

	switch ev.Debuff {
	case DefenseDown, Vulnerability:
		h.incomingDamageMultiplier = max(h.incomingDamageMultiplier, 1+magnitude)
		h.damageAmpUntil = max(h.damageAmpUntil, now+duration)
	case Weaken:
		h.attackDelayMultiplier = max(h.attackDelayMultiplier, 1+magnitude)
		h.weakenUntil = max(h.weakenUntil, now+duration)
	}

	return translog.Record{
		Kind:      translog.KindEnter,
		Type:      "Debuff:" + ev.Debuff.String(),
		Duration:  duration,
		Magnitude: magnitude,
		Reason:    "debuff_applied",
	}
}

// Tick expires the window and multipliers whose until-timestamp has passed.
// Each expiry is emitted exactly once.
func (h *DebuffHandler) Tick(now float64, emit func(translog.Record)) {
	if emit == nil {
		emit = func(translog.Record) {}
	}

	if h.windowUntil > 0 && now >= h.windowUntil {
		h.windowUntil = 0
		emit(translog.Record{Kind: translog.KindExpire, Type: "DebuffWindow", Reason: "timeout"})
	}

	if h.incomingDamageMultiplier > 1 && now >= h.damageAmpUntil {
		h.incomingDamageMultiplier = 1
		h.damageAmpUntil = 0
		emit(translog.Record{Kind: translog.KindExpire, Type: "Debuff:DamageAmp", Reason: "timeout"})
	}

	if h.attackDelayMultiplier > 1 && now >= h.weakenUntil {
		h.attackDelayMultiplier = 1
		h.weakenUntil = 0
		emit(translog.Record{Kind: translog.KindExpire, Type: "Debuff:Weaken", Reason: "timeout"})
	}
}

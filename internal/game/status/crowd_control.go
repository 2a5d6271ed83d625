package status

import (
	"github.com/udisondev/spellchain/internal/translog"
)

const (
	minSlowMultiplier = 0.1
	maxSlowMultiplier = 1.0
)

// CrowdControlHandler arbitrates Stun, WeakStagger and Slow, and owns the CC
// chain window consumed by ultimate damage.
//
// Priority for non-Slow applications:
//  1. debuff window open → Stun (+ CC window)
//  2. already stunned → blocked
//  3. otherwise → WeakStagger (+ CC window)
//
// Slow is applied independently and only ever lowers the move multiplier.
type CrowdControlHandler struct {
	stunUntil        float64
	weakStaggerUntil float64
	slowUntil        float64
	windowUntil      float64

	slowMultiplier float64
}

// NewCrowdControlHandler returns a handler with no active states.
func NewCrowdControlHandler() *CrowdControlHandler {
	return &CrowdControlHandler{slowMultiplier: 1}
}

// IsStunned reports whether a stun is active at now.
func (h *CrowdControlHandler) IsStunned(now float64) bool { return now < h.stunUntil }

// IsWeakStaggered reports whether a weak stagger is active at now.
func (h *CrowdControlHandler) IsWeakStaggered(now float64) bool { return now < h.weakStaggerUntil }

// IsSlowed reports whether a slow is active at now.
func (h *CrowdControlHandler) IsSlowed(now float64) bool { return now < h.slowUntil }

// IsWindowActive reports whether the CC chain window is open at now.
func (h *CrowdControlHandler) IsWindowActive(now float64) bool { return now < h.windowUntil }

// MoveMultiplier returns 0 while stunned or weak-staggered, the slow multiplier
// while slowed, and 1 otherwise.
func (h *CrowdControlHandler) MoveMultiplier(now float64) float64 {
	if h.IsStunned(now) || h.IsWeakStaggered(now) {
		return 0
	}
	if h.IsSlowed(now) {
		return h.slowMultiplier
	}
	return 1
}

// ConsumeWindow closes the CC chain window immediately.
func (h *CrowdControlHandler) ConsumeWindow() {
	h.windowUntil = 0
}

// Apply resolves a CC application. hasDebuffWindow must be evaluated at ev.At.
func (h *CrowdControlHandler) Apply(ev Event, hasDebuffWindow bool) translog.Record {
	if ev.CrowdControl == CrowdControlNone {
		return translog.Record{Kind: translog.KindBlocked, Type: "CrowdControl", Reason: "missing_control_type"}
	}

	now := ev.At
	duration := max(0, ev.Duration)
	magnitude := clamp(ev.Magnitude, 0, 1)

	if ev.CrowdControl == Slow {
		h.slowUntil = max(h.slowUntil, now+duration)
		h.slowMultiplier = min(h.slowMultiplier, clamp(1-magnitude, minSlowMultiplier, maxSlowMultiplier))
		return translog.Record{
			Kind:      translog.KindEnter,
			Type:      "Slow",
			Duration:  duration,
			Magnitude: magnitude,
			Reason:    "slow_applied",
		}
	}

	if hasDebuffWindow {
		h.stunUntil = max(h.stunUntil, now+duration)
		h.windowUntil = max(h.windowUntil, now+duration)
		return translog.Record{
			Kind:      translog.KindEnter,
			Type:      "Stun",
			Duration:  duration,
			Magnitude: magnitude,
			Reason:    "debuff_window",
			Detail:    "requested=" + ev.CrowdControl.String(),
		}
	}

	if h.IsStunned(now) {
		return translog.Record{
			Kind:     translog.KindBlocked,
			Type:     "WeakStagger",
			Duration: duration,
			Reason:   "stun_priority",
		}
	}

	h.weakStaggerUntil = max(h.weakStaggerUntil, now+duration)
	h.windowUntil = max(h.windowUntil, now+duration)
	return translog.Record{
		Kind:      translog.KindEnter,
		Type:      "WeakStagger",
		Duration:  duration,
		Magnitude: magnitude,
		Reason:    "no_debuff_window",
		Detail:    "requested=" + ev.CrowdControl.String(),
	}
}

// Tick expires Stun, WeakStagger, Slow and the CC window, each exactly once.
func (h *CrowdControlHandler) Tick(now float64, emit func(translog.Record)) {
	if emit == nil {
		emit = func(translog.Record) {}
	}

	if h.stunUntil > 0 && now >= h.stunUntil {
		h.stunUntil = 0
		emit(translog.Record{Kind: translog.KindExpire, Type: "Stun", Reason: "timeout"})
	}

	if h.weakStaggerUntil > 0 && now >= h.weakStaggerUntil {
		h.weakStaggerUntil = 0
		emit(translog.Record{Kind: translog.KindExpire, Type: "WeakStagger", Reason: "timeout"})
	}

	if (h.slowUntil > 0 || h.slowMultiplier < 1) && now >= h.slowUntil {
		h.slowMultiplier = 1
		h.slowUntil = 0
		emit(translog.Record{Kind: translog.KindExpire, Type: "Slow", Reason: "timeout"})
	}

	if h.windowUntil > 0 && now >= h.windowUntil {
		h.windowUntil = 0
		emit(translog.Record{Kind: translog.KindExpire, Type: "CrowdControlWindow", Reason: "timeout"})
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

package status

import (
	"github.com/udisondev/spellchain/internal/translog"
)

// Controller is the per-actor status facade. It routes events to the debuff,
// crowd-control and damage handlers and writes every transition to the recorder.
//
// Owned by a single actor and driven from the simulation tick; not safe for
// concurrent use.
type Controller struct {
	debuff       *DebuffHandler
	crowdControl *CrowdControlHandler
	damage       DamageHandler

	health HealthPool
	rec    translog.Recorder
}

// NewController creates a controller forwarding damage to health.
func NewController(health HealthPool, rec translog.Recorder) *Controller {
	return &Controller{
		debuff:       NewDebuffHandler(),
		crowdControl: NewCrowdControlHandler(),
		health:       health,
		rec:          translog.OrDiscard(rec),
	}
}

// IncomingDamageMultiplier returns the debuff-driven incoming damage multiplier.
func (c *Controller) IncomingDamageMultiplier() float64 { return c.debuff.IncomingDamageMultiplier() }

// AttackDelayMultiplier returns the debuff-driven attack delay multiplier.
func (c *Controller) AttackDelayMultiplier() float64 { return c.debuff.AttackDelayMultiplier() }

// IsStunned reports whether the actor is stunned at now.
func (c *Controller) IsStunned(now float64) bool { return c.crowdControl.IsStunned(now) }

// IsWeakStaggered reports whether the actor is weak-staggered at now.
func (c *Controller) IsWeakStaggered(now float64) bool { return c.crowdControl.IsWeakStaggered(now) }

// CanAct reports whether the actor may start an action at now.
func (c *Controller) CanAct(now float64) bool {
	return !c.IsStunned(now) && !c.IsWeakStaggered(now)
}

// MoveMultiplier returns the composed movement multiplier at now.
func (c *Controller) MoveMultiplier(now float64) float64 { return c.crowdControl.MoveMultiplier(now) }

// HasDebuffWindow reports whether the debuff window is open at now.
func (c *Controller) HasDebuffWindow(now float64) bool { return c.debuff.IsWindowActive(now) }

// IsUltimateChainReady reports whether the CC chain window is open at now.
func (c *Controller) IsUltimateChainReady(now float64) bool {
	return c.crowdControl.IsWindowActive(now)
}

// Apply routes ev by kind. Window checks are evaluated at ev.At.
func (c *Controller) Apply(ev Event) {
	switch ev.Kind {
	case KindDebuff:
		c.emit(ev.At, c.debuff.Apply(ev))
	case KindCrowdControl:
		hasDebuffWindow := c.debuff.IsWindowActive(ev.At)
		c.emit(ev.At, c.crowdControl.Apply(ev, hasDebuffWindow))
	case KindDamage:
		hasCCWindow := c.crowdControl.IsWindowActive(ev.At)
		rec, consumed := c.damage.Apply(ev, c.health, c.debuff.IncomingDamageMultiplier(), hasCCWindow)
		c.emit(ev.At, rec)
		if consumed {
			c.crowdControl.ConsumeWindow()
			c.emit(ev.At, translog.Record{
				Kind:   translog.KindConsume,
				Type:   "CrowdControlWindow",
				Reason: "ultimate_chain_success",
			})
		}
	default:
		c.emit(ev.At, translog.Record{
			Kind:   translog.KindBlocked,
			Type:   ev.Kind.String(),
			Reason: "unsupported_kind",
		})
	}
}

// Tick runs the expiry sweeps: debuff first, since crowd control reads the
// debuff window.
func (c *Controller) Tick(now float64) {
	emit := func(rec translog.Record) { c.emit(now, rec) }
	c.debuff.Tick(now, emit)
	c.crowdControl.Tick(now, emit)
}

// Snapshot is a read-only view of the composed status at a point in time.
type Snapshot struct {
	Stunned                  bool    `json:"stunned"`
	WeakStaggered            bool    `json:"weak_staggered"`
	Slowed                   bool    `json:"slowed"`
	DebuffWindow             bool    `json:"debuff_window"`
	UltimateChainReady       bool    `json:"ultimate_chain_ready"`
	MoveMultiplier           float64 `json:"move_multiplier"`
	IncomingDamageMultiplier float64 `json:"incoming_damage_multiplier"`
	AttackDelayMultiplier    float64 `json:"attack_delay_multiplier"`
}

// Snapshot returns the composed status at now.
func (c *Controller) Snapshot(now float64) Snapshot {
	return Snapshot{
		Stunned:                  c.IsStunned(now),
		WeakStaggered:            c.IsWeakStaggered(now),
		Slowed:                   c.crowdControl.IsSlowed(now),
		DebuffWindow:             c.HasDebuffWindow(now),
		UltimateChainReady:       c.IsUltimateChainReady(now),
		MoveMultiplier:           c.MoveMultiplier(now),
		IncomingDamageMultiplier: c.IncomingDamageMultiplier(),
		AttackDelayMultiplier:    c.AttackDelayMultiplier(),
	}
}

func (c *Controller) emit(at float64, rec translog.Record) {
	rec.At = at
	c.rec.Record(rec)
}

package cast

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/chain"
	"github.com/udisondev/spellchain/internal/game/status"
	"github.com/udisondev/spellchain/internal/model"
	"github.com/udisondev/spellchain/internal/translog"
)

// Caster runs the cast resolution pipeline for one actor: slot selection,
// impact classification, element injection, recipe/injection/chain lookups,
// chain state update and sink notification.
//
// Owned by the simulation loop; not safe for concurrent use.
type Caster struct {
	actor   *model.Actor
	catalog *data.Catalog
	loadout Loadout
	targets Targets
	sink    Sink
	rec     translog.Recorder

	tracker   *chain.Tracker
	injection InjectionState
	timer     Timer

	// cooldowns: spellID → game time when the spell is ready again.
	cooldowns map[string]float64

	pending *pendingCast
}

type pendingCast struct {
	slot        Slot
	requestedAt float64
}

// plan is the resolution of steps that do not mutate state.
type plan struct {
	slot      Slot
	base      *data.Spell
	spell     *data.Spell
	impact    data.ImpactType
	delivery  data.DeliveryType
	injected  element.Element
	key       data.ChainEffectKey
	hasKey    bool
	combo     element.Combination
	recipeHit bool
}

// NewCaster creates a caster for actor. targets may be nil (no base effect
// application); sink may be nil (no listeners).
func NewCaster(actor *model.Actor, catalog *data.Catalog, loadout Loadout, targets Targets, sink Sink, rec translog.Recorder) *Caster {
	rec = translog.WithActor(actor.ID(), rec)
	if sink == nil {
		sink = CompositeSink(nil)
	}
	return &Caster{
		actor:     actor,
		catalog:   catalog,
		loadout:   loadout,
		targets:   targets,
		sink:      sink,
		rec:       rec,
		tracker:   chain.NewTracker(rec),
		cooldowns: make(map[string]float64),
	}
}

// Actor returns the owning actor.
func (c *Caster) Actor() *model.Actor { return c.actor }

// ChainState returns the chain tracker state.
func (c *Caster) ChainState() chain.State { return c.tracker.State() }

// UltimateArmed reports whether the enhanced ultimate would fire.
func (c *Caster) UltimateArmed() bool { return c.tracker.UltimateArmed() }

// Armed reports whether injection is armed.
func (c *Caster) Armed() bool { return c.injection.Armed() }

// HasPending reports whether a targeted cast waits for confirmation.
func (c *Caster) HasPending() bool { return c.pending != nil }

// Phase returns the windup/recovery phase at now.
func (c *Caster) Phase(now float64) TimerPhase { return c.timer.Phase(now) }

// CooldownRemaining returns seconds until spellID is ready.
func (c *Caster) CooldownRemaining(spellID string, now float64) float64 {
	return max(0, c.cooldowns[spellID]-now)
}

// ToggleArm flips the injection arm flag.
func (c *Caster) ToggleArm(now float64) bool {
	armed := c.injection.Toggle()
	c.record(translog.Record{At: now, Kind: translog.KindCast, Type: "arm", Reason: fmt.Sprintf("armed=%t", armed)})
	return armed
}

// Cast requests a cast from slot aimed at target. Targeted deliveries return
// OutcomePending and lock the element slots until Confirm or Cancel.
func (c *Caster) Cast(slot Slot, target model.Vec3, now float64) (Result, error) {
	if c.pending != nil {
		return c.block(now, "target_pending", ErrTargetPending)
	}
	if err := c.ready(now); err != nil {
		return Result{}, err
	}

	p, err := c.plan(slot, now)
	if err != nil {
		return Result{}, err
	}

	if p.delivery.RequiresTarget() {
		if err := c.previewGate(p, now); err != nil {
			if p.impact == data.ImpactUltimate {
				c.tracker.ConsumeUltimate("ultimate_blocked")
			}
			return c.block(now, gateReason(err), err)
		}

		c.pending = &pendingCast{slot: slot, requestedAt: now}
		if p.injected.Valid() {
			c.injection.Queue(p.impact, p.injected)
		}
		c.actor.Slots().SetLocked(true)
		c.record(translog.Record{
			At:     now,
			Kind:   translog.KindCast,
			Type:   p.spell.ID,
			Reason: "awaiting_target",
			Detail: fmt.Sprintf("delivery=%s impact=%s injected=%s", p.delivery, p.impact, p.injected),
		})
		return Result{Outcome: OutcomePending}, nil
	}

	return c.execute(p, target, now, "")
}

// Confirm resolves the pending targeted cast at target.
// A blocked confirmation cancels the pending cast.
func (c *Caster) Confirm(target model.Vec3, now float64) (Result, error) {
	if c.pending == nil {
		return c.block(now, "no_pending_cast", ErrNoPendingCast)
	}
	if err := c.ready(now); err != nil {
		return Result{}, err
	}

	p, err := c.plan(c.pending.slot, now)
	if err != nil {
		c.Cancel("confirm_failed", now)
		return Result{}, err
	}

	res, err := c.execute(p, target, now, element.ConfirmReasonPrefix+":")
	if err != nil {
		c.Cancel("confirm_blocked", now)
		return res, err
	}

	c.pending = nil
	c.actor.Slots().SetLocked(false)
	return res, nil
}

// Cancel drops the pending cast and re-arms a queued injection. Calling it
// without a pending cast is a no-op returning false.
func (c *Caster) Cancel(reason string, now float64) bool {
	if c.pending == nil {
		return false
	}

	rearmed := c.injection.CancelQueued()
	c.actor.Slots().SetLocked(false)
	c.pending = nil

	c.record(translog.Record{
		At:     now,
		Kind:   translog.KindCast,
		Type:   "pending",
		Reason: "cancelled",
		Detail: fmt.Sprintf("reason=%s rearmed=%t", reason, rearmed),
	})
	return true
}

// Reset clears chain state, injection and timers (respawn).
func (c *Caster) Reset(reason string) {
	c.Cancel(reason, 0)
	c.injection.Reset()
	c.timer.Cancel()
	c.tracker.Reset(reason)
}

// ready checks the caster may start or confirm a cast.
func (c *Caster) ready(now float64) error {
	switch {
	case c.actor.IsDead():
		_, err := c.block(now, "caster_dead", ErrCasterDisabled)
		return err
	case !c.actor.StatusController().CanAct(now):
		_, err := c.block(now, "crowd_controlled", ErrCasterDisabled)
		return err
	case c.timer.Locked(now):
		_, err := c.block(now, "cast_locked", ErrCastLocked)
		return err
	}
	return nil
}

// plan resolves slot, classification, injection preview and recipe without
// touching any state.
func (c *Caster) plan(slot Slot, now float64) (plan, error) {
	id := c.loadout.SpellID(slot)
	base, ok := c.catalog.Spell(id)
	if !ok {
		slog.Warn("slot has no spell", "caster", c.actor.ID(), "slot", slot, "spell", id)
		_, err := c.block(now, "missing_magic", fmt.Errorf("slot %s: %w", slot, ErrMissingMagic))
		return plan{}, err
	}

	p := plan{
		slot:     slot,
		base:     base,
		spell:    base,
		impact:   Classify(base, slot),
		delivery: base.EffectiveDelivery(),
	}

	p.injected, _ = c.injection.Prepare(c.actor.Slots().State().Front())
	if !p.injected.Valid() {
		return p, nil
	}

	p.key, p.combo, p.hasKey = c.tracker.BuildKey(p.impact, p.injected)
	if !p.hasKey {
		return p, nil
	}

	recipe, hit := c.catalog.Recipes.TryGet(p.key.RecipeKey())
	if !hit {
		return p, nil
	}
	p.recipeHit = true

	if recipe.SpellOverride != "" {
		if s, ok := c.catalog.Spell(recipe.SpellOverride); ok {
			p.spell = s
		} else {
			slog.Warn("recipe spell override not found, using base spell",
				"key", p.key, "spell", recipe.SpellOverride)
		}
	}
	if recipe.Delivery != data.DeliveryAuto {
		p.delivery = recipe.Delivery
	} else if p.spell != base {
		p.delivery = p.spell.EffectiveDelivery()
	}
	if recipe.Impact != data.ImpactAuto {
		p.impact = recipe.Impact
	}
	return p, nil
}

// execute commits the plan: ultimate branch, resource gate, element consume,
// injection and chain lookups, base effect, chain state update, sink.
func (c *Caster) execute(p plan, target model.Vec3, now float64, reasonPrefix string) (Result, error) {
	spell := p.spell
	enhanced := false

	if p.impact == data.ImpactUltimate {
		if c.tracker.UltimateArmed() {
			if enh, ok := c.catalog.Spell(c.loadout.EnhancedUltimate); !ok {
				slog.Warn("enhanced ultimate not configured", "caster", c.actor.ID(), "spell", c.loadout.EnhancedUltimate)
			} else if c.gate(enh, now) == nil {
				spell = enh
				enhanced = true
			}
		}
		if !enhanced {
			if err := c.gate(spell, now); err != nil {
				tr := c.tracker.ConsumeUltimate("ultimate_blocked")
				res, err := c.block(now, gateReason(err), err)
				res.State = tr
				return res, err
			}
		}
	} else if err := c.gate(spell, now); err != nil {
		return c.block(now, gateReason(err), err)
	}

	c.commit(spell, now)

	injected := element.None
	if p.injected.Valid() {
		reason := reasonPrefix + "inject:" + p.impact.String()
		if e, _, ok := c.actor.Slots().TryConsumeFront(reason); ok {
			injected = e
		}
		c.injection.Consumed()
	}

	exec := &Execution{
		CasterID:        c.actor.ID(),
		Slot:            p.slot,
		BaseSpellID:     p.base.ID,
		SpellID:         spell.ID,
		Impact:          p.impact,
		Delivery:        p.delivery,
		InjectedElement: injected,
		Combination:     p.combo,
		HasChainKey:     p.hasKey && injected.Valid(),
		ChainKey:        p.key,
		RecipeHit:       p.recipeHit,
		Enhanced:        enhanced,
		Target:          target,
		Radius:          spell.Radius,
		TargetMask:      spell.TargetMask,
		At:              now,
	}

	var inj InjectionResolution
	if injected.Valid() {
		inj.Entry, inj.Hit = c.catalog.Injections.TryGet(data.InjectionEffectKey{Impact: p.impact, Element: injected})
	}

	var ch ChainResolution
	if exec.HasChainKey {
		ch.Entry, ch.Hit = c.catalog.Chains.TryGet(p.key)
		if p.key.Stage == data.StageDebuffToCrowdControl {
			c.tracker.NoteChainLookup(ch.Hit, ch.Entry.AllowChainUltimate)
		}
	}

	exec.Damage = castDamage(spell, inj, ch, enhanced)
	if inj.Hit && inj.Entry.ShieldAmount > 0 {
		c.actor.Health().AddShield(inj.Entry.ShieldAmount)
	}

	c.applySpell(exec, spell)

	var tr chain.Transition
	switch {
	case p.impact == data.ImpactUltimate:
		reason := "ultimate_base"
		if enhanced {
			reason = "ultimate_enhanced"
		}
		tr = c.tracker.ConsumeUltimate(reason)
	case !injected.Valid():
		tr = c.tracker.Reset("cast_without_injection")
	case p.impact == data.ImpactDebuff:
		tr = c.tracker.RecordDebuff(injected)
	case p.impact == data.ImpactCrowdControl:
		tr = c.tracker.RecordCrowdControl(injected)
	default:
		tr = chain.Transition{From: c.tracker.State(), To: c.tracker.State(), Reason: "impact_not_chained"}
	}

	c.record(translog.Record{
		At:        now,
		Kind:      translog.KindCast,
		Type:      spell.ID,
		Magnitude: exec.Damage,
		Reason:    "resolved",
		Detail: fmt.Sprintf("impact=%s delivery=%s injected=%s recipe=%t injection=%t chain=%t enhanced=%t",
			p.impact, p.delivery, injected, p.recipeHit, inj.Hit, ch.Hit, enhanced),
	})
	slog.Debug("spell cast",
		"caster", c.actor.ID(),
		"spell", spell.ID,
		"slot", p.slot,
		"impact", p.impact,
		"injected", injected,
		"enhanced", enhanced,
		"damage", exec.Damage)

	c.sink.OnCastEffectResolved(exec, inj, ch)

	return Result{Outcome: OutcomeCast, Execution: exec, Injection: inj, Chain: ch, State: tr}, nil
}

// gate checks cooldown and mana without consuming anything.
func (c *Caster) gate(s *data.Spell, now float64) error {
	if readyAt, ok := c.cooldowns[s.ID]; ok && now < readyAt {
		return fmt.Errorf("%s ready in %.2fs: %w", s.ID, readyAt-now, ErrOnCooldown)
	}
	if !c.actor.Mana().IsAvailable(s.ManaCost) {
		return fmt.Errorf("%s needs %.0f, have %.0f: %w", s.ID, s.ManaCost, c.actor.Mana().Current(), ErrNotEnoughMana)
	}
	return nil
}

// previewGate checks the spell a targeted cast would fire once confirmed.
func (c *Caster) previewGate(p plan, now float64) error {
	if p.impact == data.ImpactUltimate && c.tracker.UltimateArmed() {
		if enh, ok := c.catalog.Spell(c.loadout.EnhancedUltimate); ok && c.gate(enh, now) == nil {
			return nil
		}
	}
	return c.gate(p.spell, now)
}

// commit pays mana, starts the cooldown and the windup/recovery timer.
// Timings are stretched by the caster's attack delay multiplier.
func (c *Caster) commit(s *data.Spell, now float64) {
	c.actor.Mana().Use(s.ManaCost)
	if s.Cooldown > 0 {
		c.cooldowns[s.ID] = now + s.Cooldown
	}
	delay := max(1, c.actor.StatusController().AttackDelayMultiplier())
	c.timer.Start(now, s.Windup*delay, s.Recovery*delay)
}

// applySpell sends the spell's own effect to every target in radius.
func (c *Caster) applySpell(exec *Execution, s *data.Spell) {
	if c.targets == nil {
		return
	}

	var events []status.Event
	switch s.Category {
	case data.CategoryDebuff:
		if s.Debuff.Type != status.DebuffNone {
			events = append(events, status.NewDebuff(s.Debuff.Type, s.Debuff.Duration, s.Debuff.Magnitude, exec.CasterID, exec.At))
		}
	case data.CategoryCrowdControl:
		if s.CrowdControl.Type != status.CrowdControlNone {
			events = append(events, status.NewCrowdControl(s.CrowdControl.Type, s.CrowdControl.Duration, s.CrowdControl.Strength, exec.CasterID, exec.At))
		}
	}
	if exec.Damage > 0 {
		events = append(events, status.NewDamage(exec.Damage, s.UltimateHit, exec.CasterID, exec.At))
	}
	if len(events) == 0 {
		return
	}

	ids := TargetsExcluding(c.targets.QueryActorsInRadius(exec.Target, exec.Radius, exec.TargetMask), exec.CasterID)
	for _, id := range ids {
		r, ok := c.targets.Receiver(id)
		if !ok {
			continue
		}
		for _, ev := range events {
			r.ApplyStatus(ev)
		}
	}
}

func (c *Caster) block(now float64, reason string, err error) (Result, error) {
	slog.Debug("cast blocked", "caster", c.actor.ID(), "reason", reason, "error", err)
	c.record(translog.Record{At: now, Kind: translog.KindBlocked, Type: "cast", Reason: reason})
	return Result{Outcome: OutcomeBlocked}, err
}

func (c *Caster) record(rec translog.Record) {
	c.rec.Record(rec)
}

// Classify resolves the impact of spell cast from slot: explicit data, then
// spell category, then the slot fallback Q→Debuff, E→CrowdControl, R→Ultimate.
func Classify(spell *data.Spell, slot Slot) data.ImpactType {
	if impact := spell.DataImpact(); impact != data.ImpactAuto {
		return impact
	}
	switch slot {
	case SlotQ:
		return data.ImpactDebuff
	case SlotE:
		return data.ImpactCrowdControl
	case SlotR:
		return data.ImpactUltimate
	default:
		return data.ImpactNone
	}
}

// castDamage = (spell + flat) × injection multiplier × chain ultimate multiplier (enhanced only).
func castDamage(s *data.Spell, inj InjectionResolution, ch ChainResolution, enhanced bool) float64 {
	dmg := s.Damage
	if inj.Hit {
		dmg = (dmg + inj.Entry.DamageBonusFlat) * max(1, inj.Entry.DamageMultiplier)
	}
	if enhanced && ch.Hit && ch.Entry.Stage == data.StageCrowdControlToUltimate {
		dmg *= max(1, ch.Entry.UltimateDamageMultiplier)
	}
	return max(0, dmg)
}

func gateReason(err error) string {
	switch {
	case errors.Is(err, ErrOnCooldown):
		return "on_cooldown"
	case errors.Is(err, ErrNotEnoughMana):
		return "not_enough_mana"
	default:
		return "gate_failed"
	}
}

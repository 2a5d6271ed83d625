package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/cast"
	"github.com/udisondev/spellchain/internal/model"
	"github.com/udisondev/spellchain/internal/translog"
	"github.com/udisondev/spellchain/internal/world"
)

var (
	ErrUnknownActor = errors.New("unknown actor")
	ErrNotCaster    = errors.New("actor has no caster")
	ErrActorDead    = errors.New("actor is dead")
	ErrUnknownCmd   = errors.New("unknown command")
	ErrRooted       = errors.New("actor cannot move")
	ErrNoTarget     = errors.New("command has no target")
)

// DefaultParryManaGain is the mana restored by a successful parry.
const DefaultParryManaGain = 10

// StepObserver is notified after every Step.
type StepObserver interface {
	ObserveStep(actors int)
}

// Config — параметры арены.
type Config struct {
	ParryManaGain float64
	Loadout       cast.Loadout
	Handlers      *cast.HandlerRegistry
	Observer      StepObserver
}

// DefaultConfig returns the built-in loadout and parry gain.
func DefaultConfig() Config {
	return Config{
		ParryManaGain: DefaultParryManaGain,
		Loadout:       cast.DefaultLoadout(),
	}
}

// ActorSpec describes an actor to spawn. Casters get a cast pipeline with
// Loadout, or the arena default when Loadout is nil.
type ActorSpec struct {
	model.ActorConfig `yaml:",inline"`
	Caster            bool          `yaml:"caster"`
	Loadout           *cast.Loadout `yaml:"loadout"`
}

// Snapshot — неизменяемое состояние арены после Step.
type Snapshot struct {
	At     float64               `json:"at"`
	Actors []model.ActorSnapshot `json:"actors"`
}

// Actor returns the snapshot of id.
func (s *Snapshot) Actor(id string) (model.ActorSnapshot, bool) {
	if s == nil {
		return model.ActorSnapshot{}, false
	}
	i := sort.Search(len(s.Actors), func(i int) bool { return s.Actors[i].ID >= id })
	if i < len(s.Actors) && s.Actors[i].ID == id {
		return s.Actors[i], true
	}
	return model.ActorSnapshot{}, false
}

// Arena hosts the simulation: the world, one Caster per casting actor and a
// FIFO command queue. Enqueue is safe from any goroutine; Step must be called
// from a single loop.
type Arena struct {
	cfg     Config
	catalog *data.Catalog
	world   *world.World
	sink    cast.Sink
	rec     translog.Recorder

	casters map[string]*cast.Caster

	queueMu sync.Mutex
	queue   []Command

	stepMu sync.Mutex
	now    float64

	snapshot atomic.Pointer[Snapshot]
	steps    atomic.Uint64
}

// New creates an arena. listeners receive every resolved cast after the
// built-in runtime effect applier.
func New(cfg Config, catalog *data.Catalog, rec translog.Recorder, listeners ...cast.Sink) *Arena {
	if catalog == nil {
		catalog = data.DefaultCatalog()
	}
	rec = translog.OrDiscard(rec)
	w := world.New()

	sink := cast.CompositeSink{cast.NewRuntimeApplierSink(w, cfg.Handlers, rec)}
	sink = append(sink, listeners...)

	a := &Arena{
		cfg:     cfg,
		catalog: catalog,
		world:   w,
		sink:    sink,
		rec:     rec,
		casters: make(map[string]*cast.Caster),
	}
	a.publish()
	return a
}

// World returns the actor registry.
func (a *Arena) World() *world.World { return a.world }

// Catalog returns the spell catalog.
func (a *Arena) Catalog() *data.Catalog { return a.catalog }

// Now returns the time of the last Step.
func (a *Arena) Now() float64 {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()
	return a.now
}

// Steps returns how many Step calls completed.
func (a *Arena) Steps() uint64 { return a.steps.Load() }

// Spawn adds an actor.
func (a *Arena) Spawn(spec ActorSpec) (*model.Actor, error) {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()

	actor := model.NewActor(spec.ActorConfig, a.rec)
	if err := a.world.AddActor(actor); err != nil {
		return nil, fmt.Errorf("spawning %q: %w", spec.ID, err)
	}

	if spec.Caster {
		loadout := a.cfg.Loadout
		if spec.Loadout != nil {
			loadout = *spec.Loadout
		}
		a.casters[spec.ID] = cast.NewCaster(actor, a.catalog, loadout, a.world, a.sink, a.rec)
	}

	slog.Info("actor spawned",
		"actor", spec.ID,
		"layer", spec.Layer,
		"caster", spec.Caster,
		"hp", spec.MaxHP,
		"mana", spec.MaxMana)
	a.publishLocked()
	return actor, nil
}

// Caster returns the cast pipeline of id.
func (a *Arena) Caster(id string) (*cast.Caster, bool) {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()
	c, ok := a.casters[id]
	return c, ok
}

// Enqueue appends cmd to the queue. It runs on the next Step.
func (a *Arena) Enqueue(cmd Command) {
	a.queueMu.Lock()
	a.queue = append(a.queue, cmd)
	a.queueMu.Unlock()
}

// Pending returns the number of queued commands.
func (a *Arena) Pending() int {
	a.queueMu.Lock()
	defer a.queueMu.Unlock()
	return len(a.queue)
}

// Parry enqueues an element save for actor.
func (a *Arena) Parry(actor string, e element.Element) {
	a.Enqueue(Command{Action: ActionParry, Actor: actor, Element: e})
}

// Cast enqueues a cast request aimed at target.
func (a *Arena) Cast(actor string, slot cast.Slot, target model.Vec3) {
	a.Enqueue(Command{Action: ActionCast, Actor: actor, Slot: slot, Target: &target})
}

// Step drains the queue in FIFO order, runs the status expiry sweep for every
// actor in sorted ID order and publishes a new snapshot.
func (a *Arena) Step(now float64) []CommandResult {
	a.queueMu.Lock()
	cmds := a.queue
	a.queue = nil
	a.queueMu.Unlock()

	a.stepMu.Lock()
	defer a.stepMu.Unlock()

	if now < a.now {
		slog.Warn("arena clock went backwards, holding", "now", now, "last", a.now)
		now = a.now
	}
	a.now = now

	var results []CommandResult
	if len(cmds) > 0 {
		results = make([]CommandResult, 0, len(cmds))
	}
	for _, cmd := range cmds {
		res, err := a.execute(cmd, now)
		if err != nil {
			slog.Debug("arena command failed",
				"action", cmd.Action,
				"actor", cmd.Actor,
				"error", err)
		}
		results = append(results, CommandResult{Command: cmd, Cast: res, Err: err})
	}

	for _, actor := range a.world.Actors() {
		actor.Tick(now)
	}

	a.publishLocked()
	a.steps.Add(1)
	if a.cfg.Observer != nil {
		a.cfg.Observer.ObserveStep(a.world.ActorCount())
	}
	return results
}

// Run steps the arena every tick until ctx is cancelled. Game time is the
// wall-clock time elapsed since Run started.
func (a *Arena) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		return fmt.Errorf("arena tick must be positive, got %s", tick)
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	base := a.Now()
	start := time.Now()
	slog.Info("arena loop started", "tick", tick)

	for {
		select {
		case <-ctx.Done():
			slog.Info("arena loop stopping", "steps", a.Steps())
			return ctx.Err()
		case t := <-ticker.C:
			a.Step(base + t.Sub(start).Seconds())
		}
	}
}

// Snapshot returns the last published snapshot. Safe for concurrent readers.
func (a *Arena) Snapshot() *Snapshot {
	return a.snapshot.Load()
}

func (a *Arena) execute(cmd Command, now float64) (cast.Result, error) {
	actor, ok := a.world.Actor(cmd.Actor)
	if !ok {
		return cast.Result{}, fmt.Errorf("%s %q: %w", cmd.Action, cmd.Actor, ErrUnknownActor)
	}

	switch cmd.Action {
	case ActionParry:
		return cast.Result{}, a.parry(actor, cmd.Element, now)

	case ActionApplyStatus:
		ev := cmd.Status
		ev.At = now
		actor.ApplyStatus(ev)
		return cast.Result{}, nil

	case ActionMove:
		return cast.Result{}, a.move(actor, cmd.Target, now)
	}

	caster, ok := a.casters[cmd.Actor]
	if !ok {
		return cast.Result{}, fmt.Errorf("%s %q: %w", cmd.Action, cmd.Actor, ErrNotCaster)
	}

	switch cmd.Action {
	case ActionToggleArm:
		caster.ToggleArm(now)
		return cast.Result{}, nil
	case ActionCast:
		return caster.Cast(cmd.Slot, a.resolveTarget(actor, cmd), now)
	case ActionConfirm:
		return caster.Confirm(a.resolveTarget(actor, cmd), now)
	case ActionCancel:
		reason := cmd.Reason
		if reason == "" {
			reason = "cancelled_by_input"
		}
		caster.Cancel(reason, now)
		return cast.Result{}, nil
	default:
		return cast.Result{}, fmt.Errorf("%s: %w", cmd.Action, ErrUnknownCmd)
	}
}

// parry saves e into the actor's slots and restores mana when the save landed.
func (a *Arena) parry(actor *model.Actor, e element.Element, now float64) error {
	if actor.IsDead() {
		return fmt.Errorf("parry %q: %w", actor.ID(), ErrActorDead)
	}

	// A locked store rejects the save; no mana for a parry that stored nothing.
	locked := actor.Slots().Locked()
	res := actor.Slots().Save(e, "parry:"+e.String())
	if !e.Valid() || locked {
		return nil
	}
	if a.cfg.ParryManaGain > 0 {
		actor.Mana().Restore(a.cfg.ParryManaGain)
	}
	slog.Debug("parry",
		"actor", actor.ID(),
		"element", e,
		"slots", res.After,
		"at", now)
	return nil
}

// move places the actor at target. Stun and WeakStagger pin it in place;
// Slow only scales speed, which the arena does not simulate.
func (a *Arena) move(actor *model.Actor, target *model.Vec3, now float64) error {
	if target == nil {
		return fmt.Errorf("move %q: %w", actor.ID(), ErrNoTarget)
	}
	if actor.IsDead() {
		return fmt.Errorf("move %q: %w", actor.ID(), ErrActorDead)
	}
	if actor.StatusController().MoveMultiplier(now) <= 0 {
		return fmt.Errorf("move %q: %w", actor.ID(), ErrRooted)
	}
	return a.world.MoveActor(actor.ID(), *target)
}

func (a *Arena) resolveTarget(actor *model.Actor, cmd Command) model.Vec3 {
	if cmd.TargetActor != "" {
		if t, ok := a.world.Actor(cmd.TargetActor); ok {
			return t.Position()
		}
		slog.Warn("target actor not found, using explicit target",
			"actor", cmd.Actor,
			"target", cmd.TargetActor)
	}
	if cmd.Target != nil {
		return *cmd.Target
	}
	return actor.Position()
}

func (a *Arena) publish() {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()
	a.publishLocked()
}

func (a *Arena) publishLocked() {
	actors := a.world.Actors()
	snap := &Snapshot{At: a.now, Actors: make([]model.ActorSnapshot, 0, len(actors))}
	for _, actor := range actors {
		s := actor.Snapshot(a.now)
		if c, ok := a.casters[actor.ID()]; ok {
			s.Chain = c.ChainState().String()
		}
		snap.Actors = append(snap.Actors, s)
	}
	a.snapshot.Store(snap)
}

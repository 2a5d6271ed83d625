package cast

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/game/status"
	"github.com/udisondev/spellchain/internal/model"
	"github.com/udisondev/spellchain/internal/translog"
	"github.com/udisondev/spellchain/internal/world"
)

// slowEffectStrength is the slow magnitude applied by chain and injection Slow effects.
const slowEffectStrength = 0.5

// Targets is the spatial collaborator used to find and reach effect targets.
type Targets interface {
	QueryActorsInRadius(point model.Vec3, radius float64, mask uint32) []string
	Receiver(id string) (world.StatusReceiver, bool)
}

// EffectRequest describes one runtime application of a chain or injection effect.
type EffectRequest struct {
	Source    string
	Type      data.EffectType
	Duration  float64
	StunBonus float64
	At        float64
}

// EffectHandler converts a request into the status event sent to each target.
type EffectHandler func(req EffectRequest) status.Event

// HandlerRegistry maps effect type → handler.
type HandlerRegistry struct {
	handlers map[data.EffectType]EffectHandler
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[data.EffectType]EffectHandler)}
}

// DefaultHandlers registers Stun, Root, Freeze (applied as Root) and Slow.
func DefaultHandlers() *HandlerRegistry {
	r := NewHandlerRegistry()
	r.Register(data.EffectStun, func(req EffectRequest) status.Event {
		return status.NewCrowdControl(status.Stun, req.Duration+req.StunBonus, 1, req.Source, req.At)
	})
	r.Register(data.EffectRoot, rootHandler)
	r.Register(data.EffectFreeze, rootHandler)
	r.Register(data.EffectSlow, func(req EffectRequest) status.Event {
		return status.NewCrowdControl(status.Slow, req.Duration, slowEffectStrength, req.Source, req.At)
	})
	return r
}

func rootHandler(req EffectRequest) status.Event {
	return status.NewCrowdControl(status.Root, req.Duration, 1, req.Source, req.At)
}

// Register sets the handler for t, replacing any previous one.
func (r *HandlerRegistry) Register(t data.EffectType, h EffectHandler) {
	r.handlers[t] = h
}

// Handler returns the handler for t.
func (r *HandlerRegistry) Handler(t data.EffectType) (EffectHandler, error) {
	h, ok := r.handlers[t]
	if !ok {
		return nil, fmt.Errorf("no handler for effect %s", t)
	}
	return h, nil
}

// RuntimeApplierSink applies the chain major effect and the injection minor
// effect to targets around the cast point. The caster is never a target.
type RuntimeApplierSink struct {
	targets  Targets
	handlers *HandlerRegistry
	rec      translog.Recorder
}

// NewRuntimeApplierSink creates the applier. handlers defaults to DefaultHandlers().
func NewRuntimeApplierSink(targets Targets, handlers *HandlerRegistry, rec translog.Recorder) *RuntimeApplierSink {
	if handlers == nil {
		handlers = DefaultHandlers()
	}
	return &RuntimeApplierSink{targets: targets, handlers: handlers, rec: translog.OrDiscard(rec)}
}

// OnCastEffectResolved implements Sink.
func (s *RuntimeApplierSink) OnCastEffectResolved(exec *Execution, injection InjectionResolution, chain ChainResolution) {
	if chain.Hit && chain.Entry.EffectType != data.EffectNone {
		e := chain.Entry
		radius := exec.Radius
		if e.EffectRadius > 0 {
			radius = e.EffectRadius
		}
		mask := exec.TargetMask
		if e.TargetMask != 0 {
			mask = e.TargetMask
		}
		s.apply(exec, "chain", EffectRequest{
			Type:      e.EffectType,
			Duration:  e.EffectDuration,
			StunBonus: e.StunDurationBonus,
		}, radius, mask)
	}

	if injection.Hit && injection.Entry.EffectType != data.EffectNone {
		s.apply(exec, "injection", EffectRequest{
			Type:     injection.Entry.EffectType,
			Duration: injection.Entry.EffectDuration,
		}, exec.Radius, exec.TargetMask)
	}
}

func (s *RuntimeApplierSink) apply(exec *Execution, layer string, req EffectRequest, radius float64, mask uint32) {
	req.Source = exec.CasterID
	req.At = exec.At

	if radius <= 0 || mask == 0 {
		slog.Warn("effect has no targeting",
			"layer", layer,
			"effect", req.Type,
			"caster", exec.CasterID,
			"radius", radius,
			"mask", mask)
		s.rec.Record(translog.Record{
			Actor:  exec.CasterID,
			At:     exec.At,
			Kind:   translog.KindBlocked,
			Type:   layer + ":" + req.Type.String(),
			Reason: "invalid_targeting",
		})
		return
	}

	handler, err := s.handlers.Handler(req.Type)
	if err != nil {
		slog.Warn("effect handler missing", "layer", layer, "error", err)
		return
	}
	if s.targets == nil {
		return
	}

	ev := handler(req)
	applied := 0
	for _, id := range TargetsExcluding(s.targets.QueryActorsInRadius(exec.Target, radius, mask), exec.CasterID) {
		r, ok := s.targets.Receiver(id)
		if !ok {
			continue
		}
		r.ApplyStatus(ev)
		applied++
	}

	s.rec.Record(translog.Record{
		Actor:     exec.CasterID,
		At:        exec.At,
		Kind:      translog.KindCast,
		Type:      layer + ":" + req.Type.String(),
		Duration:  ev.Duration,
		Magnitude: ev.Magnitude,
		Reason:    "effect_applied",
		Detail:    fmt.Sprintf("targets=%d radius=%.2f", applied, radius),
	})
}

// TargetsExcluding returns ids without self.
func TargetsExcluding(ids []string, self string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

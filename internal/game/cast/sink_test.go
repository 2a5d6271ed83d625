package cast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/status"
	"github.com/udisondev/spellchain/internal/model"
	"github.com/udisondev/spellchain/internal/translog"
	"github.com/udisondev/spellchain/internal/world"
)

func newSinkWorld(t *testing.T, buf *translog.Buffer) (*world.World, *model.Actor, *model.Actor) {
	t.Helper()
	w := world.New()
	player := model.NewActor(model.ActorConfig{ID: "player", Layer: data.MaskPlayer, MaxHP: 100}, buf)
	enemy := model.NewActor(model.ActorConfig{ID: "enemy", Layer: data.MaskEnemy, Position: model.NewVec3(1, 0, 0), MaxHP: 100}, buf)
	require.NoError(t, w.AddActor(player))
	require.NoError(t, w.AddActor(enemy))
	return w, player, enemy
}

func TestRuntimeApplierSink_ChainEffectSkipsCaster(t *testing.T) {
	buf := translog.NewBuffer(0)
	w, player, enemy := newSinkWorld(t, buf)
	sink := NewRuntimeApplierSink(w, nil, buf)

	exec := &Execution{CasterID: "player", Radius: 0, TargetMask: 0, At: 1}
	sink.OnCastEffectResolved(exec, InjectionResolution{}, ChainResolution{
		Hit: true,
		Entry: data.ChainEffectEntry{
			EffectType:        data.EffectStun,
			EffectDuration:    1,
			EffectRadius:      5,
			TargetMask:        data.MaskAll,
			StunDurationBonus: 0.5,
		},
	})

	// No debuff window on the enemy: the stun degrades to WeakStagger.
	assert.True(t, enemy.StatusController().IsWeakStaggered(2.4))
	assert.False(t, enemy.StatusController().IsWeakStaggered(2.5))
	assert.True(t, player.StatusController().CanAct(1.5))

	applied := buf.Filter(translog.KindCast, "chain:Stun")
	require.Len(t, applied, 1)
	assert.Equal(t, "effect_applied", applied[0].Reason)
	assert.Equal(t, "targets=1 radius=5.00", applied[0].Detail)
}

func TestRuntimeApplierSink_InjectionSlowUsesCastTargeting(t *testing.T) {
	buf := translog.NewBuffer(0)
	w, _, enemy := newSinkWorld(t, buf)
	sink := NewRuntimeApplierSink(w, nil, buf)

	exec := &Execution{CasterID: "player", Radius: 3, TargetMask: data.MaskEnemy, At: 0}
	sink.OnCastEffectResolved(exec, InjectionResolution{
		Hit:   true,
		Entry: data.InjectionEffectEntry{EffectType: data.EffectSlow, EffectDuration: 2},
	}, ChainResolution{})

	assert.InDelta(t, 1-slowEffectStrength, enemy.StatusController().MoveMultiplier(1), 1e-9)
	assert.InDelta(t, 1, enemy.StatusController().MoveMultiplier(2), 1e-9)
}

func TestRuntimeApplierSink_InvalidTargeting(t *testing.T) {
	buf := translog.NewBuffer(0)
	w, _, enemy := newSinkWorld(t, buf)
	sink := NewRuntimeApplierSink(w, nil, buf)

	exec := &Execution{CasterID: "player", At: 0}
	sink.OnCastEffectResolved(exec, InjectionResolution{
		Hit:   true,
		Entry: data.InjectionEffectEntry{EffectType: data.EffectRoot, EffectDuration: 2},
	}, ChainResolution{})

	blocked := buf.Filter(translog.KindBlocked, "injection:Root")
	require.Len(t, blocked, 1)
	assert.Equal(t, "invalid_targeting", blocked[0].Reason)
	assert.True(t, enemy.StatusController().CanAct(0.5))
}

func TestRuntimeApplierSink_NoEffectOnMiss(t *testing.T) {
	buf := translog.NewBuffer(0)
	w, _, _ := newSinkWorld(t, buf)
	sink := NewRuntimeApplierSink(w, nil, buf)

	exec := &Execution{CasterID: "player", Radius: 5, TargetMask: data.MaskAll}
	sink.OnCastEffectResolved(exec, InjectionResolution{}, ChainResolution{Entry: data.ChainEffectEntry{EffectType: data.EffectStun}})

	assert.Empty(t, buf.Filter(translog.KindCast, ""))
}

func TestHandlerRegistry(t *testing.T) {
	r := DefaultHandlers()

	h, err := r.Handler(data.EffectFreeze)
	require.NoError(t, err)
	ev := h(EffectRequest{Source: "p", Type: data.EffectFreeze, Duration: 1.5, At: 2})
	assert.Equal(t, status.Root, ev.CrowdControl)
	assert.Equal(t, 1.5, ev.Duration)

	_, err = NewHandlerRegistry().Handler(data.EffectStun)
	assert.Error(t, err)

	r.Register(data.EffectStun, func(req EffectRequest) status.Event {
		return status.NewCrowdControl(status.Stun, 9, 1, req.Source, req.At)
	})
	h, err = r.Handler(data.EffectStun)
	require.NoError(t, err)
	assert.Equal(t, 9.0, h(EffectRequest{}).Duration)
}

func TestCompositeSink(t *testing.T) {
	assert.NotPanics(t, func() {
		CompositeSink(nil).OnCastEffectResolved(&Execution{}, InjectionResolution{}, ChainResolution{})
	})

	var calls []string
	c := CompositeSink{
		SinkFunc(func(*Execution, InjectionResolution, ChainResolution) { calls = append(calls, "a") }),
		nil,
		SinkFunc(func(*Execution, InjectionResolution, ChainResolution) { calls = append(calls, "b") }),
	}
	c.OnCastEffectResolved(&Execution{}, InjectionResolution{}, ChainResolution{})
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestChainEffectFunc_OnlyOnHit(t *testing.T) {
	var got []data.ChainEffectEntry
	f := ChainEffectFunc(func(_ *Execution, e data.ChainEffectEntry) { got = append(got, e) })

	f.OnCastEffectResolved(&Execution{}, InjectionResolution{Hit: true}, ChainResolution{})
	require.Empty(t, got)

	entry := data.ChainEffectEntry{Stage: data.StageDebuffToCrowdControl, From: element.R, To: element.Y}
	f.OnCastEffectResolved(&Execution{}, InjectionResolution{}, ChainResolution{Hit: true, Entry: entry})
	require.Len(t, got, 1)
	assert.Equal(t, entry.Key(), got[0].Key())
}

func TestInjectionState(t *testing.T) {
	var s InjectionState

	_, ok := s.Prepare(element.R)
	assert.False(t, ok, "not armed")

	s.Toggle()
	e, ok := s.Prepare(element.None)
	assert.False(t, ok)
	assert.Equal(t, element.None, e)

	s.Queue(data.ImpactCrowdControl, element.R)
	assert.False(t, s.Armed())
	assert.True(t, s.Queued())
	e, ok = s.Prepare(element.R)
	assert.True(t, ok)
	assert.Equal(t, element.R, e)

	assert.True(t, s.CancelQueued())
	assert.True(t, s.Armed())
	assert.False(t, s.CancelQueued())

	s.Consumed()
	assert.False(t, s.Armed())
	assert.False(t, s.Queued())
}

func TestTimer(t *testing.T) {
	var tm Timer
	assert.False(t, tm.Locked(0))

	tm.Start(1, 0.5, 1)
	assert.Equal(t, PhaseCasting, tm.Phase(1.2))
	assert.Equal(t, PhaseRecovery, tm.Phase(1.5))
	assert.Equal(t, PhaseIdle, tm.Phase(2.5))
	assert.Equal(t, 2.5, tm.ReadyAt())

	tm.Cancel()
	assert.False(t, tm.Locked(1.2))
}

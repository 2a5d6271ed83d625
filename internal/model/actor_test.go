package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/status"
	"github.com/udisondev/spellchain/internal/translog"
)

func TestHealth_ShieldAbsorbsFirst(t *testing.T) {
	h := NewHealth(100)
	h.AddShield(30)

	h.TakeDamage(50)
	assert.Equal(t, 0.0, h.Shield())
	assert.Equal(t, 80.0, h.Current())

	h.TakeDamage(10)
	assert.Equal(t, 70.0, h.Current())
}

func TestHealth_DiesOnce(t *testing.T) {
	h := NewHealth(10)
	deaths := 0
	h.OnDeath(func() { deaths++ })

	h.TakeDamage(25)
	h.TakeDamage(5)

	assert.True(t, h.IsDead())
	assert.Equal(t, 0.0, h.Current())
	assert.Equal(t, 1, deaths)

	h.Heal(10)
	assert.Equal(t, 0.0, h.Current(), "dead pool stays dead")
}

func TestMana_UseAndRestore(t *testing.T) {
	m := NewMana(50)

	require.True(t, m.Use(30))
	assert.False(t, m.IsAvailable(25))
	assert.False(t, m.Use(25))
	assert.Equal(t, 20.0, m.Current(), "failed Use changes nothing")

	m.Restore(100)
	assert.Equal(t, 50.0, m.Current())
	assert.True(t, m.Use(0))
}

func TestActor_StatusRoutingAndDeath(t *testing.T) {
	buf := translog.NewBuffer(0)
	a := NewActor(ActorConfig{ID: "dummy", Layer: 2, MaxHP: 100, MaxMana: 10}, buf)

	a.ApplyStatus(status.NewCrowdControl(status.Root, 2, 1, "player", 0))
	assert.True(t, a.IsUltimateChainReady(1))

	a.ApplyStatus(status.NewDamage(80, true, "player", 1))
	assert.Zero(t, a.Health().Current(), "health clamps at 0")
	assert.True(t, a.IsDead())

	hits := buf.Filter(translog.KindEnter, "Damage")
	require.Len(t, hits, 1)
	assert.InDelta(t, 80*1.5, hits[0].Magnitude, 1e-9)
	assert.Equal(t, "ultimate_chain_bonus", hits[0].Reason)

	// Dead actors ignore further events.
	n := len(buf.Records())
	a.ApplyStatus(status.NewDebuff(status.Weaken, 1, 1, "player", 2))
	assert.Len(t, buf.Records(), n)

	deaths := buf.Filter(translog.KindEnter, "Death")
	require.Len(t, deaths, 1)
	assert.Equal(t, "dummy", deaths[0].Actor)
}

func TestActor_Snapshot(t *testing.T) {
	a := NewActor(ActorConfig{ID: "p1", Layer: 1, Position: NewVec3(1, 0, 2), MaxHP: 50, MaxMana: 40}, nil)
	a.Slots().Save(element.R, "parry:R")
	a.Health().AddShield(5)

	s := a.Snapshot(0)
	assert.Equal(t, "p1", s.ID)
	assert.Equal(t, NewVec3(1, 0, 2), s.Position)
	assert.Equal(t, "[R,None]", s.Slots)
	assert.Equal(t, 5.0, s.Shield)
	assert.Equal(t, 40.0, s.Mana)
	assert.Equal(t, 1.0, s.Status.MoveMultiplier)
}

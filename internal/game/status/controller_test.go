package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spellchain/internal/translog"
)

type fakeHealth struct {
	taken []float64
}

func (h *fakeHealth) TakeDamage(amount float64) { h.taken = append(h.taken, amount) }

func newTestController() (*Controller, *fakeHealth, *translog.Buffer) {
	h := &fakeHealth{}
	buf := translog.NewBuffer(0)
	return NewController(h, buf), h, buf
}

func TestCrowdControl_StunInsideDebuffWindow(t *testing.T) {
	c, _, buf := newTestController()

	c.Apply(NewDebuff(DefenseDown, 3, 0.2, "player", 10))
	c.Apply(NewCrowdControl(Stun, 1.5, 1, "player", 10))

	assert.True(t, c.IsStunned(10))
	assert.False(t, c.IsWeakStaggered(10))
	assert.True(t, c.IsUltimateChainReady(10))

	enters := buf.Filter(translog.KindEnter, "Stun")
	require.Len(t, enters, 1)
	assert.Equal(t, "debuff_window", enters[0].Reason)
	assert.Equal(t, 10.0, enters[0].At)
}

func TestCrowdControl_WeakStaggerAfterWindow(t *testing.T) {
	c, _, buf := newTestController()

	c.Apply(NewDebuff(Vulnerability, 3, 0.2, "player", 10))
	c.Apply(NewCrowdControl(Stun, 1.5, 1, "player", 13))

	assert.False(t, c.IsStunned(13))
	assert.True(t, c.IsWeakStaggered(13))
	assert.Len(t, buf.Filter(translog.KindEnter, "WeakStagger"), 1)
}

func TestCrowdControl_StunBlocksWeakStagger(t *testing.T) {
	c, _, buf := newTestController()

	c.Apply(NewDebuff(DefenseDown, 1, 0.1, "player", 0))
	c.Apply(NewCrowdControl(Stun, 5, 1, "player", 0.5))

	// Debuff window closed at t=1; stun still active until 5.5.
	c.Apply(NewCrowdControl(Root, 2, 1, "player", 2))

	assert.True(t, c.IsStunned(2))
	assert.False(t, c.IsWeakStaggered(2))
	blocked := buf.Filter(translog.KindBlocked, "WeakStagger")
	require.Len(t, blocked, 1)
	assert.Equal(t, "stun_priority", blocked[0].Reason)
}

func TestCrowdControl_SameInstantBlocked(t *testing.T) {
	c, _, _ := newTestController()

	c.Apply(NewDebuff(DefenseDown, 0.5, 0.1, "player", 0))
	c.Apply(NewCrowdControl(Stun, 3, 1, "player", 0.1))
	c.Tick(0.6)

	c.Apply(NewCrowdControl(Knockdown, 1, 1, "player", 0.6))
	assert.False(t, c.IsWeakStaggered(0.6))
	assert.True(t, c.IsStunned(0.6))
}

func TestMoveMultiplier_Priority(t *testing.T) {
	c, _, _ := newTestController()

	c.Apply(NewCrowdControl(Slow, 10, 0.4, "player", 0))
	c.Apply(NewCrowdControl(Root, 2, 1, "player", 0))

	assert.Equal(t, 0.0, c.MoveMultiplier(1), "weak stagger dominates slow")

	c.Tick(2)
	assert.InDelta(t, 0.6, c.MoveMultiplier(2), 1e-9)

	c.Tick(10)
	assert.Equal(t, 1.0, c.MoveMultiplier(10))
}

func TestSlow_OnlyLowersAndClamps(t *testing.T) {
	c, _, _ := newTestController()

	c.Apply(NewCrowdControl(Slow, 5, 0.3, "player", 0))
	c.Apply(NewCrowdControl(Slow, 5, 0.1, "player", 0))
	assert.InDelta(t, 0.7, c.MoveMultiplier(1), 1e-9)

	c.Apply(NewCrowdControl(Slow, 5, 5, "player", 0))
	assert.InDelta(t, 0.1, c.MoveMultiplier(1), 1e-9)
}

func TestDebuff_Multipliers(t *testing.T) {
	c, _, buf := newTestController()

	c.Apply(NewDebuff(DefenseDown, 2, 0.3, "player", 0))
	c.Apply(NewDebuff(Vulnerability, 1, 0.1, "player", 0))
	c.Apply(NewDebuff(Weaken, 4, 0.5, "player", 0))

	assert.InDelta(t, 1.3, c.IncomingDamageMultiplier(), 1e-9)
	assert.InDelta(t, 1.5, c.AttackDelayMultiplier(), 1e-9)

	c.Tick(2)
	assert.Equal(t, 1.0, c.IncomingDamageMultiplier())
	assert.InDelta(t, 1.5, c.AttackDelayMultiplier(), 1e-9)

	c.Tick(4)
	assert.Equal(t, 1.0, c.AttackDelayMultiplier())

	assert.Len(t, buf.Filter(translog.KindExpire, "Debuff:DamageAmp"), 1)
	assert.Len(t, buf.Filter(translog.KindExpire, "Debuff:Weaken"), 1)
	assert.Len(t, buf.Filter(translog.KindExpire, "DebuffWindow"), 1)
}

func TestDebuff_RefreshOnlyExtends(t *testing.T) {
	c, _, _ := newTestController()

	c.Apply(NewDebuff(DefenseDown, 5, 0.2, "player", 0))
	c.Apply(NewDebuff(DefenseDown, 1, 0.2, "player", 1))

	assert.True(t, c.HasDebuffWindow(4.9))
	assert.False(t, c.HasDebuffWindow(5))
}

func TestTick_ExpiresExactlyOnce(t *testing.T) {
	c, _, buf := newTestController()

	c.Apply(NewDebuff(DefenseDown, 1, 0.2, "player", 0))
	c.Apply(NewCrowdControl(Stun, 2, 1, "player", 0))
	c.Apply(NewCrowdControl(Slow, 3, 0.5, "player", 0))

	c.Tick(0.5)
	assert.Empty(t, buf.Filter(translog.KindExpire, ""))

	c.Tick(2) // exactly at stun until
	c.Tick(2)
	c.Tick(2.5)
	c.Tick(3)
	c.Tick(10)
	c.Tick(11)

	expires := buf.Filter(translog.KindExpire, "")
	counts := map[string]int{}
	for _, r := range expires {
		counts[r.Type]++
	}
	assert.Equal(t, map[string]int{
		"DebuffWindow":       1,
		"Debuff:DamageAmp":   1,
		"Stun":               1,
		"CrowdControlWindow": 1,
		"Slow":               1,
	}, counts)
}

func TestTick_DebuffBeforeCrowdControl(t *testing.T) {
	c, _, buf := newTestController()

	c.Apply(NewDebuff(DefenseDown, 1, 0.2, "player", 0))
	c.Apply(NewCrowdControl(Stun, 1, 1, "player", 0))
	c.Tick(1)

	expires := buf.Filter(translog.KindExpire, "")
	require.Len(t, expires, 4)
	assert.Equal(t, "DebuffWindow", expires[0].Type)
	assert.Equal(t, "Debuff:DamageAmp", expires[1].Type)
	assert.Equal(t, "Stun", expires[2].Type)
	assert.Equal(t, "CrowdControlWindow", expires[3].Type)
}

func TestDamage_UltimateInsideWindow(t *testing.T) {
	c, h, buf := newTestController()

	c.Apply(NewDebuff(Vulnerability, 5, 0.2, "player", 0))
	c.Apply(NewCrowdControl(Stun, 2, 1, "player", 0))
	c.Apply(NewDamage(100, true, "player", 1))

	require.Len(t, h.taken, 1)
	assert.InDelta(t, 100*1.2*1.5, h.taken[0], 1e-9)
	assert.False(t, c.IsUltimateChainReady(1), "window consumed")

	consumes := buf.Filter(translog.KindConsume, "CrowdControlWindow")
	require.Len(t, consumes, 1)
	assert.Equal(t, "ultimate_chain_success", consumes[0].Reason)

	// Second ultimate in the same window gets no bonus and no consume.
	c.Apply(NewDamage(100, true, "player", 1.2))
	require.Len(t, h.taken, 2)
	assert.InDelta(t, 120, h.taken[1], 1e-9)
	assert.Len(t, buf.Filter(translog.KindConsume, ""), 1)

	// Consumed window never reports an expiry.
	c.Tick(3)
	assert.Empty(t, buf.Filter(translog.KindExpire, "CrowdControlWindow"))
}

func TestDamage_UltimateWithoutWindow(t *testing.T) {
	c, h, buf := newTestController()

	c.Apply(NewDamage(80, true, "player", 0))
	require.Len(t, h.taken, 1)
	assert.Equal(t, 80.0, h.taken[0])
	assert.Empty(t, buf.Filter(translog.KindConsume, ""))
}

func TestDamage_NonUltimateKeepsWindow(t *testing.T) {
	c, h, _ := newTestController()

	c.Apply(NewCrowdControl(Root, 2, 1, "player", 0))
	c.Apply(NewDamage(10, false, "player", 0.5))

	assert.Equal(t, []float64{10}, h.taken)
	assert.True(t, c.IsUltimateChainReady(0.5))
}

func TestDamageHandler_MissingHealth(t *testing.T) {
	rec, consumed := DamageHandler{}.Apply(NewDamage(10, true, "x", 0), nil, 1, true)
	assert.False(t, consumed)
	assert.Equal(t, translog.KindBlocked, rec.Kind)
}

func TestApply_MissingTypesBlocked(t *testing.T) {
	c, _, buf := newTestController()

	c.Apply(Event{Kind: KindDebuff, At: 0})
	c.Apply(Event{Kind: KindCrowdControl, At: 0})
	c.Apply(Event{Kind: KindUnknown, At: 0})

	blocked := buf.Filter(translog.KindBlocked, "")
	require.Len(t, blocked, 3)
	assert.Equal(t, "missing_debuff_type", blocked[0].Reason)
	assert.Equal(t, "missing_control_type", blocked[1].Reason)
	assert.Equal(t, "unsupported_kind", blocked[2].Reason)
}

func TestSnapshot(t *testing.T) {
	c, _, _ := newTestController()
	c.Apply(NewDebuff(DefenseDown, 3, 0.25, "player", 0))
	c.Apply(NewCrowdControl(Stun, 1, 1, "player", 0))

	s := c.Snapshot(0.5)
	assert.True(t, s.Stunned)
	assert.True(t, s.DebuffWindow)
	assert.True(t, s.UltimateChainReady)
	assert.Equal(t, 0.0, s.MoveMultiplier)
	assert.InDelta(t, 1.25, s.IncomingDamageMultiplier, 1e-9)
	assert.False(t, c.CanAct(0.5))
	assert.True(t, c.CanAct(1))
}

func TestTypeText(t *testing.T) {
	var d DebuffType
	require.NoError(t, d.UnmarshalText([]byte("weaken")))
	assert.Equal(t, Weaken, d)
	assert.Error(t, d.UnmarshalText([]byte("poison")))

	var cc CrowdControlType
	require.NoError(t, cc.UnmarshalText([]byte("Slow")))
	assert.Equal(t, Slow, cc)
}

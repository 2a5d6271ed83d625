package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/translog"
)

func TestBuildKey_RequiresPriorStage(t *testing.T) {
	tr := NewTracker(nil)

	_, _, ok := tr.BuildKey(data.ImpactCrowdControl, element.B)
	assert.False(t, ok, "no debuff recorded")

	tr.RecordDebuff(element.R)

	key, combo, ok := tr.BuildKey(data.ImpactCrowdControl, element.B)
	require.True(t, ok)
	assert.Equal(t, data.ChainEffectKey{Stage: data.StageDebuffToCrowdControl, From: element.R, To: element.B}, key)
	assert.Equal(t, element.CombinationRB, combo)

	_, _, ok = tr.BuildKey(data.ImpactUltimate, element.B)
	assert.False(t, ok, "ultimate needs CrowdControlReady")

	_, _, ok = tr.BuildKey(data.ImpactCrowdControl, element.None)
	assert.False(t, ok, "no injection")
}

func TestRecordCrowdControl_FromDebuff(t *testing.T) {
	tests := []struct {
		name      string
		hit       bool
		allow     bool
		wantPhase Phase
		reason    string
	}{
		{"allowed", true, true, PhaseCrowdControlReady, "arm_cc_to_ultimate"},
		{"entry denies", true, false, PhaseNone, "debuff_to_cc_consumed"},
		{"no entry", false, true, PhaseNone, "debuff_to_cc_consumed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(nil)
			tr.RecordDebuff(element.R)
			tr.NoteChainLookup(tt.hit, tt.allow)

			got := tr.RecordCrowdControl(element.B)
			assert.Equal(t, tt.wantPhase, tr.State().Phase)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, State{Phase: PhaseDebuffReady, Element: element.R}, got.From)
		})
	}
}

func TestRecordCrowdControl_CCOnlyArm(t *testing.T) {
	tr := NewTracker(nil)
	tr.NoteChainLookup(true, true)

	got := tr.RecordCrowdControl(element.Y)
	assert.Equal(t, "arm_cc_to_ultimate_by_cc_only", got.Reason)
	assert.Equal(t, State{Phase: PhaseCrowdControlReady, Element: element.Y}, tr.State())
	assert.True(t, tr.UltimateArmed())
}

func TestRecordCrowdControl_GateArmsOnce(t *testing.T) {
	tr := NewTracker(nil)
	tr.RecordDebuff(element.R)
	tr.NoteChainLookup(true, true)
	tr.RecordCrowdControl(element.B)
	require.Equal(t, State{Phase: PhaseCrowdControlReady, Element: element.B}, tr.State())

	// Второй CC без lookup не может взвести цепочку тем же gate.
	got := tr.RecordCrowdControl(element.Y)
	assert.Equal(t, "cc_chain_not_allowed", got.Reason)
	assert.Equal(t, PhaseNone, tr.State().Phase)
	assert.False(t, tr.UltimateArmed())

	// Новый lookup снова открывает gate.
	tr.NoteChainLookup(true, true)
	got = tr.RecordCrowdControl(element.Y)
	assert.Equal(t, "arm_cc_to_ultimate_by_cc_only", got.Reason)
}

func TestRecordCrowdControl_CCOnlyWithoutGate(t *testing.T) {
	tr := NewTracker(nil)

	got := tr.RecordCrowdControl(element.Y)
	assert.Equal(t, "cc_chain_not_allowed", got.Reason)
	assert.Equal(t, PhaseNone, tr.State().Phase)
	assert.False(t, tr.UltimateArmed())
}

func TestConsumeUltimate_ClearsGate(t *testing.T) {
	tr := NewTracker(nil)
	tr.RecordDebuff(element.R)
	tr.NoteChainLookup(true, true)
	tr.RecordCrowdControl(element.B)

	tr.ConsumeUltimate("ultimate_enhanced")
	assert.Equal(t, State{}, tr.State())
	assert.False(t, tr.LastAllowChainUltimate())

	tr.RecordCrowdControl(element.B)
	assert.Equal(t, PhaseNone, tr.State().Phase)
}

func TestNoInjectionResets(t *testing.T) {
	tr := NewTracker(nil)
	tr.RecordDebuff(element.R)

	got := tr.RecordDebuff(element.None)
	assert.Equal(t, State{}, got.To)
	assert.True(t, got.Changed())
}

func TestTracker_RecordsTransitions(t *testing.T) {
	buf := translog.NewBuffer(0)
	tr := NewTracker(buf)

	tr.RecordDebuff(element.Y)
	tr.Reset("manual")

	recs := buf.Filter(translog.KindChain, "")
	require.Len(t, recs, 2)
	assert.Equal(t, "arm_debuff", recs[0].Reason)
	assert.Equal(t, "None->DebuffReady(Y)", recs[0].Detail)
	assert.Equal(t, "DebuffReady(Y)->None", recs[1].Detail)
}

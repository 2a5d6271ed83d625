package status

import (
	"fmt"

	"github.com/udisondev/spellchain/internal/translog"
)

// UltimateChainBonus multiplies ultimate damage landing inside an open CC window.
const UltimateChainBonus = 1.5

// HealthPool receives final damage.
type HealthPool interface {
	TakeDamage(amount float64)
}

// DamageHandler computes final damage from the debuff multiplier and the CC window.
type DamageHandler struct{}

// Apply forwards
//
//	base × max(1, incomingMultiplier) × (isUltimate && hasCCWindow ? 1.5 : 1)
//
// to pool. Returns true only when the chain bonus was applied; the caller is
// expected to consume the CC window in that case.
func (DamageHandler) Apply(ev Event, pool HealthPool, incomingMultiplier float64, hasCCWindow bool) (translog.Record, bool) {
	if pool == nil {
		return translog.Record{Kind: translog.KindBlocked, Type: "Damage", Reason: "missing_health"}, false
	}

	base := max(0, ev.Damage)
	incoming := max(1, incomingMultiplier)
	enhanced := ev.IsUltimate && hasCCWindow
	chainMul := 1.0
	if enhanced {
		chainMul = UltimateChainBonus
	}
	final := base * incoming * chainMul

	pool.TakeDamage(final)

	reason := "base"
	if enhanced {
		reason = "ultimate_chain_bonus"
	}
	return translog.Record{
		Kind:      translog.KindEnter,
		Type:      "Damage",
		Magnitude: final,
		Reason:    reason,
		Detail: fmt.Sprintf("base=%.2f incomingMul=%.2f chainMul=%.2f isUltimate=%t",
			base, incoming, chainMul, ev.IsUltimate),
	}, enhanced
}

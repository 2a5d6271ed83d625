package cast

// TimerPhase is the windup/recovery state derived from now.
type TimerPhase uint8

const (
	PhaseIdle TimerPhase = iota
	PhaseCasting
	PhaseRecovery
)

func (p TimerPhase) String() string {
	switch p {
	case PhaseCasting:
		return "Casting"
	case PhaseRecovery:
		return "Recovery"
	default:
		return "Idle"
	}
}

// Timer models cast windup and recovery as timestamps. Cancel clears them.
type Timer struct {
	castingUntil  float64
	recoveryUntil float64
}

// Start begins a cast at now.
func (t *Timer) Start(now, windup, recovery float64) {
	t.castingUntil = now + max(0, windup)
	t.recoveryUntil = t.castingUntil + max(0, recovery)
}

// Phase returns the phase at now.
func (t *Timer) Phase(now float64) TimerPhase {
	switch {
	case now < t.castingUntil:
		return PhaseCasting
	case now < t.recoveryUntil:
		return PhaseRecovery
	default:
		return PhaseIdle
	}
}

// Locked reports whether a new cast must wait.
func (t *Timer) Locked(now float64) bool { return t.Phase(now) != PhaseIdle }

// ReadyAt returns when the caster becomes idle.
func (t *Timer) ReadyAt() float64 { return t.recoveryUntil }

// Cancel clears both timestamps.
func (t *Timer) Cancel() {
	t.castingUntil = 0
	t.recoveryUntil = 0
}

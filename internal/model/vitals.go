package model

import (
	"sync"
)

// Health — пул здоровья с щитом. Щит поглощает урон первым.
// Смерть фиксируется один раз (first caller wins).
//
// Thread-safe: simulation writes, the debug API reads.
type Health struct {
	mu sync.RWMutex

	current float64
	max     float64
	shield  float64

	deathOnce sync.Once
	dead      bool
	onDeath   func()
}

// NewHealth создаёт полный пул здоровья.
func NewHealth(maxHP float64) *Health {
	maxHP = max(maxHP, 1)
	return &Health{current: maxHP, max: maxHP}
}

// OnDeath sets a callback fired once when health reaches zero.
func (h *Health) OnDeath(fn func()) {
	h.mu.Lock()
	h.onDeath = fn
	h.mu.Unlock()
}

// Current возвращает текущее HP.
func (h *Health) Current() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Max возвращает максимальное HP.
func (h *Health) Max() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.max
}

// Shield возвращает текущий щит.
func (h *Health) Shield() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.shield
}

// IsDead returns true once health has reached zero.
func (h *Health) IsDead() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dead
}

// AddShield grants a damage-absorbing shield. Non-positive amounts are ignored.
func (h *Health) AddShield(amount float64) {
	if amount <= 0 {
		return
	}
	h.mu.Lock()
	h.shield += amount
	h.mu.Unlock()
}

// TakeDamage reduces shield first, then HP (clamped at 0).
// Damage to a dead pool is ignored.
func (h *Health) TakeDamage(amount float64) {
	if amount <= 0 {
		return
	}

	h.mu.Lock()
	if h.dead {
		h.mu.Unlock()
		return
	}
	absorbed := min(h.shield, amount)
	h.shield -= absorbed
	h.current = max(h.current-(amount-absorbed), 0)
	died := h.current == 0
	h.mu.Unlock()

	if died {
		h.doDie()
	}
}

// Heal restores HP up to max. Dead pools stay dead.
func (h *Health) Heal(amount float64) {
	if amount <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dead {
		return
	}
	h.current = min(h.current+amount, h.max)
}

func (h *Health) doDie() {
	h.deathOnce.Do(func() {
		h.mu.Lock()
		h.dead = true
		fn := h.onDeath
		h.mu.Unlock()

		if fn != nil {
			fn()
		}
	})
}

// Mana — ресурс заклинаний, всегда в [0, max].
type Mana struct {
	mu      sync.RWMutex
	current float64
	max     float64
}

// NewMana создаёт полный пул маны.
func NewMana(maxMana float64) *Mana {
	maxMana = max(maxMana, 0)
	return &Mana{current: maxMana, max: maxMana}
}

// Current возвращает текущую ману.
func (m *Mana) Current() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Max возвращает максимальную ману.
func (m *Mana) Max() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.max
}

// IsAvailable reports whether cost can be paid.
func (m *Mana) IsAvailable(cost float64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current >= cost
}

// Use pays cost. Returns false and changes nothing when mana is short.
func (m *Mana) Use(cost float64) bool {
	if cost <= 0 {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current < cost {
		return false
	}
	m.current -= cost
	return true
}

// Restore adds amount, clamped to max.
func (m *Mana) Restore(amount float64) {
	if amount <= 0 {
		return
	}
	m.mu.Lock()
	m.current = min(m.current+amount, m.max)
	m.mu.Unlock()
}

package model

import (
	"log/slog"
	"sync"

	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/status"
	"github.com/udisondev/spellchain/internal/translog"
)

// Actor — участник боя: здоровье, мана, слоты элементов и статус-контроллер.
// Each actor exclusively owns its slot store and status controller.
type Actor struct {
	id    string
	layer uint32

	mu  sync.RWMutex
	pos Vec3

	health *Health
	mana   *Mana
	slots  *element.SlotStore
	status *status.Controller
}

// ActorConfig describes an actor at spawn.
type ActorConfig struct {
	ID       string  `yaml:"id"`
	Layer    uint32  `yaml:"layer"`
	Position Vec3    `yaml:"position"`
	MaxHP    float64 `yaml:"max_hp"`
	MaxMana  float64 `yaml:"max_mana"`
}

// NewActor создаёт актёра. Все записи переходов проходят через rec с
// проставленным ID актёра.
func NewActor(cfg ActorConfig, rec translog.Recorder) *Actor {
	rec = translog.WithActor(cfg.ID, rec)
	health := NewHealth(cfg.MaxHP)

	a := &Actor{
		id:     cfg.ID,
		layer:  cfg.Layer,
		pos:    cfg.Position,
		health: health,
		mana:   NewMana(cfg.MaxMana),
		slots:  element.NewSlotStore(rec),
		status: status.NewController(health, rec),
	}
	health.OnDeath(func() {
		slog.Info("actor died", "actor", cfg.ID)
		rec.Record(translog.Record{Kind: translog.KindEnter, Type: "Death", Reason: "health_depleted"})
	})
	return a
}

// ID возвращает идентификатор актёра.
func (a *Actor) ID() string { return a.id }

// Layer returns the actor's target layer bits.
func (a *Actor) Layer() uint32 { return a.layer }

// Position возвращает текущую позицию.
func (a *Actor) Position() Vec3 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pos
}

// SetPosition обновляет позицию.
func (a *Actor) SetPosition(p Vec3) {
	a.mu.Lock()
	a.pos = p
	a.mu.Unlock()
}

func (a *Actor) Health() *Health { return a.health }

func (a *Actor) Mana() *Mana { return a.mana }

// Slots returns the actor's element slot store.
func (a *Actor) Slots() *element.SlotStore { return a.slots }

// StatusController returns the actor's status controller.
func (a *Actor) StatusController() *status.Controller { return a.status }

// IsDead reports whether the actor has died.
func (a *Actor) IsDead() bool { return a.health.IsDead() }

// ApplyStatus routes ev to the status controller. Dead actors ignore events.
func (a *Actor) ApplyStatus(ev status.Event) {
	if a.IsDead() {
		slog.Debug("status ignored for dead actor", "actor", a.id, "kind", ev.Kind)
		return
	}
	a.status.Apply(ev)
}

// IsUltimateChainReady reports whether the CC chain window is open at now.
func (a *Actor) IsUltimateChainReady(now float64) bool {
	return a.status.IsUltimateChainReady(now)
}

// Tick runs the status expiry sweep.
func (a *Actor) Tick(now float64) {
	a.status.Tick(now)
}

// ActorSnapshot — read-only состояние актёра для отладочного API.
type ActorSnapshot struct {
	ID       string          `json:"id"`
	Layer    uint32          `json:"layer"`
	Position Vec3            `json:"position"`
	HP       float64         `json:"hp"`
	MaxHP    float64         `json:"max_hp"`
	Shield   float64         `json:"shield"`
	Mana     float64         `json:"mana"`
	Dead     bool            `json:"dead"`
	Slots    string          `json:"slots"`
	Status   status.Snapshot `json:"status"`
	Chain    string          `json:"chain,omitempty"`
}

// Snapshot captures the actor at now.
func (a *Actor) Snapshot(now float64) ActorSnapshot {
	return ActorSnapshot{
		ID:       a.id,
		Layer:    a.layer,
		Position: a.Position(),
		HP:       a.health.Current(),
		MaxHP:    a.health.Max(),
		Shield:   a.health.Shield(),
		Mana:     a.mana.Current(),
		Dead:     a.health.IsDead(),
		Slots:    a.slots.State().String(),
		Status:   a.status.Snapshot(now),
	}
}

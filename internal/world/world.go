package world

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/udisondev/spellchain/internal/game/status"
	"github.com/udisondev/spellchain/internal/model"
)

var (
	ErrEmptyID       = errors.New("actor id is empty")
	ErrDuplicateID   = errors.New("actor already registered")
	ErrActorNotFound = errors.New("actor not found")
)

// StatusReceiver is the target side of a status event.
type StatusReceiver interface {
	ApplyStatus(ev status.Event)
	IsUltimateChainReady(now float64) bool
}

// World is the actor registry of one arena plus the spatial query used by
// effect application. Actors are indexed into square regions by position;
// moves must go through MoveActor to keep the index current.
type World struct {
	actors sync.Map // map[string]*model.Actor — actorID → actor
	placed sync.Map // map[string]*Region — actorID → region it is indexed in

	grid   *grid
	moveMu sync.Mutex
}

// New creates an empty world with DefaultRegionSize regions.
func New() *World {
	return NewWithRegionSize(DefaultRegionSize)
}

// NewWithRegionSize creates an empty world. Non-positive sizes fall back to
// DefaultRegionSize.
func NewWithRegionSize(size float64) *World {
	return &World{grid: newGrid(size)}
}

// AddActor registers actor.
func (w *World) AddActor(a *model.Actor) error {
	if a.ID() == "" {
		return ErrEmptyID
	}
	if _, loaded := w.actors.LoadOrStore(a.ID(), a); loaded {
		return fmt.Errorf("adding actor %q: %w", a.ID(), ErrDuplicateID)
	}

	w.moveMu.Lock()
	defer w.moveMu.Unlock()
	r := w.grid.region(w.grid.keyOf(a.Position()))
	r.add(a)
	w.placed.Store(a.ID(), r)
	return nil
}

// RemoveActor removes actor by ID.
func (w *World) RemoveActor(id string) {
	w.moveMu.Lock()
	defer w.moveMu.Unlock()
	if v, ok := w.placed.LoadAndDelete(id); ok {
		v.(*Region).remove(id)
	}
	w.actors.Delete(id)
}

// MoveActor sets the actor position and re-indexes it when it crossed into
// another region.
func (w *World) MoveActor(id string, p model.Vec3) error {
	a, ok := w.Actor(id)
	if !ok {
		return fmt.Errorf("moving actor %q: %w", id, ErrActorNotFound)
	}

	w.moveMu.Lock()
	defer w.moveMu.Unlock()
	a.SetPosition(p)

	key := w.grid.keyOf(p)
	if v, ok := w.placed.Load(id); ok && v.(*Region).key == key {
		return nil
	} else if ok {
		v.(*Region).remove(id)
	}
	r := w.grid.region(key)
	r.add(a)
	w.placed.Store(id, r)
	return nil
}

// RegionOf returns the region actor id is indexed in.
func (w *World) RegionOf(id string) (*Region, bool) {
	v, ok := w.placed.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Region), true
}

// Actor returns actor by ID.
func (w *World) Actor(id string) (*model.Actor, bool) {
	v, ok := w.actors.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*model.Actor), true
}

// Receiver returns the status receiver for id.
func (w *World) Receiver(id string) (StatusReceiver, bool) {
	a, ok := w.Actor(id)
	if !ok {
		return nil, false
	}
	return a, true
}

// Actors returns all actors sorted by ID.
func (w *World) Actors() []*model.Actor {
	var out []*model.Actor
	w.actors.Range(func(_, v any) bool {
		out = append(out, v.(*model.Actor))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// ActorCount returns number of registered actors (O(N)).
func (w *World) ActorCount() int {
	count := 0
	w.actors.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// QueryActorsInRadius returns IDs of living actors whose layer intersects
// mask and whose position lies within radius of point, sorted by ID.
// radius <= 0 or mask == 0 yields nothing.
func (w *World) QueryActorsInRadius(point model.Vec3, radius float64, mask uint32) []string {
	if radius <= 0 || mask == 0 {
		return nil
	}

	var ids []string
	w.grid.forEachInBox(point, radius, func(r *Region) {
		r.ForEachActor(func(a *model.Actor) bool {
			if a.Layer()&mask == 0 || a.IsDead() {
				return true
			}
			if point.Within(a.Position(), radius) {
				ids = append(ids, a.ID())
			}
			return true
		})
	})
	sort.Strings(ids)
	return ids
}

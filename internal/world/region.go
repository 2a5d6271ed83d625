package world

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/udisondev/spellchain/internal/model"
)

// DefaultRegionSize is the edge length of one region in arena units.
const DefaultRegionSize = 8.0

// regionKey indexes a region on the XY plane. Z does not split regions.
type regionKey struct {
	rx, ry int32
}

// Region is one square cell of the arena floor holding the actors whose
// last indexed position falls inside it.
type Region struct {
	key regionKey

	actors sync.Map // map[string]*model.Actor — actorID → actor
}

func newRegion(key regionKey) *Region {
	return &Region{key: key}
}

func (r *Region) add(a *model.Actor) {
	r.actors.Store(a.ID(), a)
}

func (r *Region) remove(id string) {
	r.actors.Delete(id)
}

// ForEachActor iterates over the region's actors. If fn returns false,
// iteration stops.
func (r *Region) ForEachActor(fn func(*model.Actor) bool) {
	r.actors.Range(func(_, v any) bool {
		return fn(v.(*model.Actor))
	})
}

// grid maps positions to regions. Regions are created on first use and
// never freed; an arena only touches a handful.
type grid struct {
	size    float64
	regions sync.Map // map[regionKey]*Region
	count   atomic.Int64
}

func newGrid(size float64) *grid {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		size = DefaultRegionSize
	}
	return &grid{size: size}
}

func (g *grid) keyOf(p model.Vec3) regionKey {
	return regionKey{rx: g.index(p.X), ry: g.index(p.Y)}
}

func (g *grid) index(c float64) int32 {
	f := math.Floor(c / g.size)
	switch {
	case math.IsNaN(f):
		return 0
	case f <= math.MinInt32:
		return math.MinInt32
	case f >= math.MaxInt32:
		return math.MaxInt32
	}
	return int32(f)
}

func (g *grid) region(key regionKey) *Region {
	if v, ok := g.regions.Load(key); ok {
		return v.(*Region)
	}
	v, loaded := g.regions.LoadOrStore(key, newRegion(key))
	if !loaded {
		g.count.Add(1)
	}
	return v.(*Region)
}

// forEachInBox visits every existing region overlapping the square of
// half-width radius around p. Boxes wider than the populated grid fall back
// to a scan of the existing regions.
func (g *grid) forEachInBox(p model.Vec3, radius float64, fn func(*Region)) {
	lo := g.keyOf(model.Vec3{X: p.X - radius, Y: p.Y - radius})
	hi := g.keyOf(model.Vec3{X: p.X + radius, Y: p.Y + radius})

	// Ширина по оси до 2^32, произведение не влезает в int64.
	n := g.count.Load()
	wx := int64(hi.rx) - int64(lo.rx) + 1
	wy := int64(hi.ry) - int64(lo.ry) + 1
	if wx > n || wy > n || wx*wy > n {
		g.regions.Range(func(k, v any) bool {
			key := k.(regionKey)
			if key.rx >= lo.rx && key.rx <= hi.rx && key.ry >= lo.ry && key.ry <= hi.ry {
				fn(v.(*Region))
			}
			return true
		})
		return
	}

	for rx := int64(lo.rx); rx <= int64(hi.rx); rx++ {
		for ry := int64(lo.ry); ry <= int64(hi.ry); ry++ {
			if v, ok := g.regions.Load(regionKey{int32(rx), int32(ry)}); ok {
				fn(v.(*Region))
			}
		}
	}
}

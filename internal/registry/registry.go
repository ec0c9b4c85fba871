package registry

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/atharv3903/roamer/internal/model"
)

// ErrNotFound means a node id is unknown to the registry. Seen during a walk
// it points at a mismatch between the graph source and the seeded nodes.
var ErrNotFound = errors.New("registry: node not found")

// cellDeg is the side of a grid bucket used by Nearby.
const cellDeg = 0.01

type cell struct{ lat, lng int32 }

// Registry holds the static node table. It is written once by Seed and read
// concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	nodes map[int64]model.Node
	grid  map[cell][]int64
}

func New() *Registry {
	return &Registry{
		nodes: make(map[int64]model.Node),
		grid:  make(map[cell][]int64),
	}
}

// Seed loads nodes into the registry. Seeding an id twice replaces its
// coordinates.
func (r *Registry) Seed(nodes []model.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range nodes {
		if old, ok := r.nodes[n.ID]; ok {
			r.unindex(old)
		}
		r.nodes[n.ID] = n
		k := cellOf(n.Lat, n.Lng)
		r.grid[k] = append(r.grid[k], n.ID)
	}
}

func (r *Registry) unindex(n model.Node) {
	k := cellOf(n.Lat, n.Lng)
	ids := r.grid[k]
	for i, id := range ids {
		if id == n.ID {
			r.grid[k] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(r.grid[k]) == 0 {
		delete(r.grid, k)
	}
}

func (r *Registry) Get(id int64) (model.Node, error) {
	r.mu.RLock()
	n, ok := r.nodes[id]
	r.mu.RUnlock()
	if !ok {
		return model.Node{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return n, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// Nearby returns every node inside the box of half-width tol degrees around
// c, ordered by id.
func (r *Registry) Nearby(c model.Coord, tol float64) []model.Node {
	lo := cellOf(c.Lat-tol, c.Lng-tol)
	hi := cellOf(c.Lat+tol, c.Lng+tol)

	r.mu.RLock()
	var out []model.Node
	for la := lo.lat; la <= hi.lat; la++ {
		for ln := lo.lng; ln <= hi.lng; ln++ {
			for _, id := range r.grid[cell{la, ln}] {
				n := r.nodes[id]
				if math.Abs(n.Lat-c.Lat) <= tol && math.Abs(n.Lng-c.Lng) <= tol {
					out = append(out, n)
				}
			}
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cellOf(lat, lng float64) cell {
	return cell{
		lat: int32(math.Floor(lat / cellDeg)),
		lng: int32(math.Floor(lng / cellDeg)),
	}
}

package algo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/atharv3903/roamer/internal/cache"
	"github.com/atharv3903/roamer/internal/geo"
	"github.com/atharv3903/roamer/internal/model"
	"github.com/atharv3903/roamer/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adjacency is an in-memory NeighborLookup that records every expansion.
type adjacency struct {
	m     map[int64][]int64
	calls map[int64]int
	err   map[int64]error
}

func newAdjacency() *adjacency {
	return &adjacency{m: map[int64][]int64{}, calls: map[int64]int{}, err: map[int64]error{}}
}

func (a *adjacency) link(x, y int64) {
	a.m[x] = append(a.m[x], y)
	a.m[y] = append(a.m[y], x)
}

func (a *adjacency) Neighbors(_ context.Context, id int64) ([]int64, error) {
	a.calls[id]++
	if err := a.err[id]; err != nil {
		return nil, err
	}
	return a.m[id], nil
}

// kmLat is the latitude delta, in degrees, of one kilometre along a meridian.
var kmLat = 1 / (geo.EarthRadiusKm * math.Pi / 180)

// line builds S(1)-A(2)-B(3)-C(4) with 2 km edges heading north.
func line() (*registry.Registry, *adjacency) {
	reg := registry.New()
	reg.Seed([]model.Node{
		{ID: 1, Lat: 1.300, Lng: 103.800},
		{ID: 2, Lat: 1.300 + 2*kmLat, Lng: 103.800},
		{ID: 3, Lat: 1.300 + 4*kmLat, Lng: 103.800},
		{ID: 4, Lat: 1.300 + 6*kmLat, Lng: 103.800},
	})
	adj := newAdjacency()
	adj.link(1, 2)
	adj.link(2, 3)
	adj.link(3, 4)
	return reg, adj
}

// grid builds an n*n lattice with roughly 111 m spacing.
func grid(n int) (*registry.Registry, *adjacency) {
	reg := registry.New()
	adj := newAdjacency()
	id := func(r, c int) int64 { return int64(r*n + c + 1) }
	var nodes []model.Node
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			nodes = append(nodes, model.Node{ID: id(r, c), Lat: 1.3 + float64(r)*0.001, Lng: 103.8 + float64(c)*0.001})
			if r > 0 {
				adj.link(id(r, c), id(r-1, c))
			}
			if c > 0 {
				adj.link(id(r, c), id(r, c-1))
			}
		}
	}
	reg.Seed(nodes)
	return reg, adj
}

func rng(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

func TestWalkLine(t *testing.T) {
	reg, adj := line()
	w := Walker{Registry: reg, Lookup: adj}

	res, err := w.Walk(context.Background(), rng(1), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Terminal)
	assert.InDelta(t, 6.0, res.Distance, 1e-9)
	assert.Equal(t, 3, res.Expanded)

	path, err := Reconstruct(reg, res)
	require.NoError(t, err)
	want := []model.Coord{}
	for _, id := range []int64{1, 2, 3, 4} {
		n, _ := reg.Get(id)
		want = append(want, n.Coord())
	}
	assert.Equal(t, want, path)
}

func TestWalkIsolatedStart(t *testing.T) {
	reg := registry.New()
	reg.Seed([]model.Node{{ID: 1, Lat: 1.3, Lng: 103.8}})
	w := Walker{Registry: reg, Lookup: newAdjacency()}

	_, err := w.Walk(context.Background(), rng(1), 1, 5)
	assert.ErrorIs(t, err, ErrNoRouteFound)
}

func TestWalkComponentTooSmall(t *testing.T) {
	reg, adj := line()
	w := Walker{Registry: reg, Lookup: adj}

	_, err := w.Walk(context.Background(), rng(1), 1, 6.5)
	assert.ErrorIs(t, err, ErrNoRouteFound)
}

func TestWalkPreconditions(t *testing.T) {
	reg, adj := line()
	w := Walker{Registry: reg, Lookup: adj}

	_, err := w.Walk(context.Background(), rng(1), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = w.Walk(context.Background(), rng(1), 1, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = w.Walk(context.Background(), rng(1), 42, 1)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestWalkSkipsIsolatedSignal(t *testing.T) {
	reg, adj := line()
	// A star from S: one dead end reporting ErrIsolated, one real branch.
	reg.Seed([]model.Node{{ID: 9, Lat: 1.3, Lng: 103.8 + 0.001}})
	adj.link(1, 9)
	adj.err[9] = ErrIsolated
	w := Walker{Registry: reg, Lookup: adj}

	res, err := w.Walk(context.Background(), rng(3), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Terminal)
}

func TestWalkLookupFailure(t *testing.T) {
	reg, adj := line()
	boom := errors.New("db down")
	adj.err[2] = boom
	w := Walker{Registry: reg, Lookup: adj}

	_, err := w.Walk(context.Background(), rng(1), 1, 5)
	assert.ErrorIs(t, err, boom)
}

func TestWalkNeighborMissingFromRegistry(t *testing.T) {
	reg, adj := line()
	adj.link(2, 77)
	w := Walker{Registry: reg, Lookup: adj}

	_, err := w.Walk(context.Background(), rng(1), 2, 100)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestWalkCancelled(t *testing.T) {
	reg, adj := grid(5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walker{Registry: reg, Lookup: adj}.Walk(ctx, rng(1), 1, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalkProperties(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		reg, adj := grid(20)
		w := Walker{Registry: reg, Lookup: adj}

		res, err := w.Walk(context.Background(), rng(seed), 1, 2.5)
		require.NoError(t, err)

		roots := 0
		res.State.Each(func(id int64, st registry.Step) {
			if !st.HasParent {
				roots++
				assert.Equal(t, int64(1), id)
				return
			}
			// Accumulated distance equals the sum of edges along the chain.
			parent, ok := res.State.Step(st.Parent)
			require.True(t, ok)
			a, _ := reg.Get(st.Parent)
			b, _ := reg.Get(id)
			assert.InDelta(t, parent.Dist+geo.Distance(a.Coord(), b.Coord()), st.Dist, 1e-9)
			assert.GreaterOrEqual(t, st.Dist, parent.Dist)
		})
		assert.Equal(t, 1, roots)

		for id, n := range adj.calls {
			assert.Equal(t, 1, n, "node %d expanded more than once", id)
		}

		assert.Greater(t, res.Distance, 2.5)
		term, _ := res.State.Step(res.Terminal)
		for st := term; st.HasParent; {
			st, _ = res.State.Step(st.Parent)
			assert.LessOrEqual(t, st.Dist, 2.5)
		}
	}
}

func TestWalkDeterministicForSeed(t *testing.T) {
	walk := func(seed int64) []model.Coord {
		reg, adj := grid(16)
		res, err := Walker{Registry: reg, Lookup: adj}.Walk(context.Background(), rng(seed), 45, 1.8)
		require.NoError(t, err)
		path, err := Reconstruct(reg, res)
		require.NoError(t, err)
		return path
	}

	assert.Equal(t, walk(11), walk(11))

	distinct := map[string]bool{}
	for seed := int64(0); seed < 10; seed++ {
		p := walk(seed)
		distinct[fmt.Sprint(p)] = true
	}
	assert.Greater(t, len(distinct), 1, "shuffling should vary the route")
}

func TestWalkDoesNotMutateCachedNeighbors(t *testing.T) {
	reg, adj := grid(4)
	lru := cache.NewAdjCache()
	ctxLookup := GraphCtx{Store: adj, Adj: lru}

	_, err := ctxLookup.Neighbors(context.Background(), 6)
	require.NoError(t, err)
	before, _ := lru.Get(6)
	snapshot := append([]int64(nil), before...)

	_, _ = Walker{Registry: reg, Lookup: ctxLookup}.Walk(context.Background(), rng(5), 6, 50)

	after, _ := lru.Get(6)
	assert.Equal(t, snapshot, after)
}

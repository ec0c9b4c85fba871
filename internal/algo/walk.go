package algo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/atharv3903/roamer/internal/geo"
	"github.com/atharv3903/roamer/internal/registry"
)

var (
	ErrIsolated      = errors.New("algo: node has no traversable neighbors")
	ErrNoRouteFound  = errors.New("algo: no route reaches the target distance")
	ErrInvalidTarget = errors.New("algo: target distance must be positive")
)

// WalkResult is the outcome of one walk. State holds the parent chain of
// every node reached, Terminal is the node that crossed the target.
type WalkResult struct {
	Start    int64
	Terminal int64
	Distance float64
	Expanded int
	State    *registry.WalkState
}

// Walker runs bounded random walks over a seeded registry. It is stateless;
// all walk state lives in the WalkState created per call.
type Walker struct {
	Registry *registry.Registry
	Lookup   NeighborLookup
}

// Walk explores depth-first from start, visiting each node's neighbours in a
// random order drawn from rng, and stops at the first node whose accumulated
// distance exceeds target kilometres.
func (w Walker) Walk(ctx context.Context, rng *rand.Rand, start int64, target float64) (*WalkResult, error) {
	if !(target > 0) {
		return nil, ErrInvalidTarget
	}
	if _, err := w.Registry.Get(start); err != nil {
		return nil, err
	}

	state := w.Registry.NewWalk()
	state.Root(start)
	stack := []int64{start}
	expanded := 0

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		expanded++

		nbrs, err := w.Lookup.Neighbors(ctx, cur)
		if errors.Is(err, ErrIsolated) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("neighbors of %d: %w", cur, err)
		}
		if len(nbrs) == 0 {
			continue
		}

		// Lookups may hand out cached slices; shuffle a copy.
		order := append([]int64(nil), nbrs...)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		curNode, err := w.Registry.Get(cur)
		if err != nil {
			return nil, err
		}
		curStep, _ := state.Step(cur)

		for _, id := range order {
			if id == cur || id == start || state.Visited(id) {
				continue
			}
			n, err := w.Registry.Get(id)
			if err != nil {
				return nil, err
			}

			d := curStep.Dist + geo.Distance(curNode.Coord(), n.Coord())
			state.Visit(id, cur, d)
			stack = append(stack, id)

			if d > target {
				return &WalkResult{
					Start:    start,
					Terminal: id,
					Distance: d,
					Expanded: expanded,
					State:    state,
				}, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: from %d within %d nodes", ErrNoRouteFound, start, state.Len())
}

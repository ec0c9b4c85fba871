package algo

import (
	"errors"
	"fmt"
	"slices"

	"github.com/atharv3903/roamer/internal/model"
	"github.com/atharv3903/roamer/internal/registry"
)

var ErrBrokenChain = errors.New("algo: broken parent chain")

// Reconstruct follows parent links from the terminal node back to the start
// and returns the coordinates in walking order, start first.
func Reconstruct(reg *registry.Registry, res *WalkResult) ([]model.Coord, error) {
	var path []model.Coord
	cur := res.Terminal

	// A chain can never be longer than the number of reached nodes.
	for hops := 0; hops <= res.State.Len(); hops++ {
		st, ok := res.State.Step(cur)
		if !ok {
			return nil, fmt.Errorf("%w: %d was never reached", ErrBrokenChain, cur)
		}
		n, err := reg.Get(cur)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBrokenChain, err)
		}
		path = append(path, n.Coord())

		if !st.HasParent {
			slices.Reverse(path)
			return path, nil
		}
		cur = st.Parent
	}
	return nil, fmt.Errorf("%w: cycle through %d", ErrBrokenChain, res.Terminal)
}

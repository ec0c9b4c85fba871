package algo

import (
	"context"

	"github.com/atharv3903/roamer/internal/cache"
)

// NeighborLookup returns the ids adjacent to a node. An isolated node yields
// an empty slice or ErrIsolated.
type NeighborLookup interface {
	Neighbors(ctx context.Context, id int64) ([]int64, error)
}

// GraphCtx is a NeighborLookup that reads through an adjacency LRU in front
// of a slower source such as the database.
type GraphCtx struct {
	Store NeighborLookup
	Adj   *cache.AdjCache
}

func (g GraphCtx) Neighbors(ctx context.Context, id int64) ([]int64, error) {
	if v, ok := g.Adj.Get(id); ok {
		return v, nil
	}

	ids, err := g.Store.Neighbors(ctx, id)
	if err != nil {
		return nil, err
	}

	g.Adj.Put(id, ids)
	return ids, nil
}

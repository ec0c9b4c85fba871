package loadgen

import (
	"context"
	"errors"

	"github.com/atharv3903/roamer/internal/db"
	"github.com/atharv3903/roamer/internal/graph"
	"github.com/atharv3903/roamer/internal/model"
)

var ErrNoNodes = errors.New("loadgen: graph has no nodes")

// LoadNodes reads start candidates from a graph file, or from the database
// when graphFile is empty. An empty graph is an error.
func LoadNodes(ctx context.Context, graphFile, driver, dsn string) ([]model.Node, error) {
	nodes, err := loadNodes(ctx, graphFile, driver, dsn)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	return nodes, nil
}

func loadNodes(ctx context.Context, graphFile, driver, dsn string) ([]model.Node, error) {
	if graphFile != "" {
		g, err := graph.LoadFile(graphFile)
		if err != nil {
			return nil, err
		}
		return g.Nodes(), nil
	}
	if dsn == "" {
		return nil, errors.New("loadgen: -graph or -dsn is required")
	}
	st, err := db.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	defer st.DB.Close()
	return st.Nodes(ctx)
}

package db

import (
	"context"
	"fmt"

	"github.com/atharv3903/roamer/internal/model"
)

var schema = map[string][]string{
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS nodes (node_id BIGINT PRIMARY KEY, lat DOUBLE NOT NULL, lng DOUBLE NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS edges (edge_id BIGINT AUTO_INCREMENT PRIMARY KEY, src_node BIGINT NOT NULL, dst_node BIGINT NOT NULL, closed BOOLEAN NOT NULL DEFAULT FALSE, INDEX idx_edges_src (src_node))`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS nodes (node_id BIGINT PRIMARY KEY, lat DOUBLE PRECISION NOT NULL, lng DOUBLE PRECISION NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS edges (edge_id BIGSERIAL PRIMARY KEY, src_node BIGINT NOT NULL, dst_node BIGINT NOT NULL, closed BOOLEAN NOT NULL DEFAULT FALSE)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_src ON edges (src_node)`,
	},
}

func (s Store) EnsureSchema(ctx context.Context) error {
	stmts, ok := schema[s.Driver]
	if !ok {
		return fmt.Errorf("db: no schema for driver %q", s.Driver)
	}
	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: ensure schema: %w", err)
		}
	}
	return nil
}

// Import writes nodes and directed edges in one transaction, replacing any
// existing graph.
func (s Store) Import(ctx context.Context, nodes []model.Node, edges []model.Edge) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return err
	}

	nodeStmt, err := tx.PrepareContext(ctx, s.q(`INSERT INTO nodes (node_id, lat, lng) VALUES (?, ?, ?)`))
	if err != nil {
		return err
	}
	defer nodeStmt.Close()
	for _, n := range nodes {
		if _, err := nodeStmt.ExecContext(ctx, n.ID, n.Lat, n.Lng); err != nil {
			return fmt.Errorf("db: insert node %d: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, s.q(`INSERT INTO edges (src_node, dst_node, closed) VALUES (?, ?, ?)`))
	if err != nil {
		return err
	}
	defer edgeStmt.Close()
	for _, e := range edges {
		if _, err := edgeStmt.ExecContext(ctx, e.Src, e.Dst, e.Closed); err != nil {
			return fmt.Errorf("db: insert edge %d->%d: %w", e.Src, e.Dst, err)
		}
	}

	return tx.Commit()
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/atharv3903/roamer/internal/model"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var ErrEdgeNotFound = errors.New("db: edge not found")

// Store reads the road network from the nodes and edges tables. Queries are
// written with ? placeholders and rebound for Postgres.
type Store struct {
	DB     *sql.DB
	Driver string
}

func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverMySQL, DriverPostgres:
	default:
		return Store{}, fmt.Errorf("db: unsupported driver %q", driver)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return Store{}, err
	}
	conn.SetMaxOpenConns(50)
	conn.SetMaxIdleConns(25)
	return Store{DB: conn, Driver: driver}, nil
}

func (s Store) q(query string) string {
	if s.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Nodes returns every node, used to seed the registry at startup.
func (s Store) Nodes(ctx context.Context) ([]model.Node, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT node_id, lat, lng FROM nodes ORDER BY node_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []model.Node
	for rows.Next() {
		var n model.Node
		if err := rows.Scan(&n.ID, &n.Lat, &n.Lng); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// Neighbors returns the open outgoing edges of src, ordered by destination so
// a seeded walk is reproducible.
func (s Store) Neighbors(ctx context.Context, src int64) ([]int64, error) {
	rows, err := s.DB.QueryContext(ctx, s.q(`SELECT dst_node, closed FROM edges WHERE src_node=? ORDER BY dst_node`), src)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0, 8)
	for rows.Next() {
		var dst int64
		var closed bool
		if err := rows.Scan(&dst, &closed); err != nil {
			return nil, err
		}
		if closed {
			continue
		}
		ids = append(ids, dst)
	}
	return ids, rows.Err()
}

func (s Store) UpdateEdgeClosed(ctx context.Context, edgeID int64, closed bool) error {
	res, err := s.DB.ExecContext(ctx, s.q(`UPDATE edges SET closed=? WHERE edge_id=?`), closed, edgeID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL counts changed rows, so an edge already in the requested
		// state also reports 0.
		_, err := s.EdgeSource(ctx, edgeID)
		return err
	}
	return nil
}

// EdgeSource returns the source node of an edge, needed to invalidate the
// adjacency cache after an update.
func (s Store) EdgeSource(ctx context.Context, edgeID int64) (int64, error) {
	var src int64
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT src_node FROM edges WHERE edge_id=?`), edgeID).Scan(&src)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", ErrEdgeNotFound, edgeID)
	}
	return src, err
}

// RandomEdge picks an edge uniformly at random. Used by the write load
// generator.
func (s Store) RandomEdge(ctx context.Context) (edgeID, src int64, err error) {
	fn := "RAND()"
	if s.Driver == DriverPostgres {
		fn = "RANDOM()"
	}
	err = s.DB.QueryRowContext(ctx, `SELECT edge_id, src_node FROM edges ORDER BY `+fn+` LIMIT 1`).Scan(&edgeID, &src)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrEdgeNotFound
	}
	return edgeID, src, err
}

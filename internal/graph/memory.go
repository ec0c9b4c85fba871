// Package graph holds an in-memory road network loaded from a YAML or JSON
// file. It serves small deployments and tests; larger graphs live in the
// database.
package graph

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/atharv3903/roamer/internal/model"
)

// File is the on-disk layout. JSON files parse too since JSON is YAML.
type File struct {
	Nodes []model.Node `yaml:"nodes"`
	Edges []model.Edge `yaml:"edges"`
}

// Memory is an immutable adjacency list. Edges are two-way unless marked
// oneway. Closed edges are kept for Edges but never returned by Neighbors.
type Memory struct {
	nodes []model.Node
	adj   map[int64][]int64
	edges []model.Edge
}

func LoadFile(path string) (*Memory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graph: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("graph: parse %s: %w", path, err)
	}
	return Build(f)
}

func Build(f File) (*Memory, error) {
	known := make(map[int64]struct{}, len(f.Nodes))
	for _, n := range f.Nodes {
		known[n.ID] = struct{}{}
	}

	// Directed edge to closed flag. A pair listed both open and closed is open.
	dir := make(map[[2]int64]bool, len(f.Edges)*2)
	add := func(s, d int64, closed bool) {
		if s == d {
			return
		}
		k := [2]int64{s, d}
		if prev, ok := dir[k]; ok {
			closed = prev && closed
		}
		dir[k] = closed
	}

	for _, e := range f.Edges {
		if _, ok := known[e.Src]; !ok {
			return nil, fmt.Errorf("graph: edge %d->%d: unknown source", e.Src, e.Dst)
		}
		if _, ok := known[e.Dst]; !ok {
			return nil, fmt.Errorf("graph: edge %d->%d: unknown destination", e.Src, e.Dst)
		}
		add(e.Src, e.Dst, e.Closed)
		if !e.OneWay {
			add(e.Dst, e.Src, e.Closed)
		}
	}

	m := &Memory{
		nodes: append([]model.Node(nil), f.Nodes...),
		adj:   make(map[int64][]int64, len(f.Nodes)),
		edges: make([]model.Edge, 0, len(dir)),
	}
	for k, closed := range dir {
		m.edges = append(m.edges, model.Edge{Src: k[0], Dst: k[1], OneWay: true, Closed: closed})
		if !closed {
			m.adj[k[0]] = append(m.adj[k[0]], k[1])
		}
	}
	for _, ids := range m.adj {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	sort.Slice(m.edges, func(i, j int) bool {
		if m.edges[i].Src != m.edges[j].Src {
			return m.edges[i].Src < m.edges[j].Src
		}
		return m.edges[i].Dst < m.edges[j].Dst
	})
	return m, nil
}

func (m *Memory) Nodes() []model.Node { return m.nodes }

// Neighbors never fails; unknown and isolated nodes have no neighbours.
func (m *Memory) Neighbors(_ context.Context, id int64) ([]int64, error) {
	return m.adj[id], nil
}

// Edges returns every directed edge, closed ones included, sorted by source
// then destination. Used to seed the database.
func (m *Memory) Edges() []model.Edge { return m.edges }

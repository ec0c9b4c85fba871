package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/atharv3903/roamer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	g, err := LoadFile(filepath.Join("testdata", "line.yaml"))
	require.NoError(t, err)
	assert.Len(t, g.Nodes(), 5)

	ctx := context.Background()
	cases := map[int64][]int64{
		1: {2, 5},
		2: {1, 3},
		4: {3},
		5: nil,
	}
	for id, want := range cases {
		got, err := g.Neighbors(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "node %d", id)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes":[{"id":1,"lat":1,"lng":2},{"id":2,"lat":1,"lng":2.1}],"edges":[{"src":1,"dst":2}]}`), 0o644))

	g, err := LoadFile(path)
	require.NoError(t, err)
	got, _ := g.Neighbors(context.Background(), 2)
	assert.Equal(t, []int64{1}, got)
}

func TestBuildRejectsDanglingEdge(t *testing.T) {
	_, err := Build(File{
		Nodes: []model.Node{{ID: 1}},
		Edges: []model.Edge{{Src: 1, Dst: 2}},
	})
	assert.Error(t, err)
}

func TestBuildDeduplicates(t *testing.T) {
	g, err := Build(File{
		Nodes: []model.Node{{ID: 1}, {ID: 2}},
		Edges: []model.Edge{{Src: 1, Dst: 2}, {Src: 2, Dst: 1}, {Src: 1, Dst: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Edge{
		{Src: 1, Dst: 2, OneWay: true},
		{Src: 2, Dst: 1, OneWay: true},
	}, g.Edges())
}

func TestEdgesKeepClosed(t *testing.T) {
	g, err := LoadFile(filepath.Join("testdata", "line.yaml"))
	require.NoError(t, err)

	assert.Contains(t, g.Edges(), model.Edge{Src: 4, Dst: 5, OneWay: true, Closed: true})
	assert.Contains(t, g.Edges(), model.Edge{Src: 5, Dst: 4, OneWay: true, Closed: true})
	assert.Contains(t, g.Edges(), model.Edge{Src: 1, Dst: 5, OneWay: true})
	assert.NotContains(t, g.Edges(), model.Edge{Src: 5, Dst: 1, OneWay: true})
	assert.Len(t, g.Edges(), 9)

	got, _ := g.Neighbors(context.Background(), 4)
	assert.Equal(t, []int64{3}, got)
}

func TestBuildOpenWinsOverClosed(t *testing.T) {
	g, err := Build(File{
		Nodes: []model.Node{{ID: 1}, {ID: 2}},
		Edges: []model.Edge{{Src: 1, Dst: 2, Closed: true}, {Src: 1, Dst: 2, OneWay: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.Edge{
		{Src: 1, Dst: 2, OneWay: true},
		{Src: 2, Dst: 1, OneWay: true, Closed: true},
	}, g.Edges())

	got, _ := g.Neighbors(context.Background(), 2)
	assert.Empty(t, got)
}

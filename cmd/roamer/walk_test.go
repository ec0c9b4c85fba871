package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"walk",
		"--graph", "../../internal/graph/testdata/line.yaml",
		"--lat", "1.3", "--lng", "103.8",
		"--km", "1", "--tolerance", "0.002", "--seed", "3", "--path",
	})
	require.NoError(t, rootCmd.Execute())

	var got struct {
		Geometry string  `json:"route_geom"`
		Distance float64 `json:"distance"`
		Path     []struct {
			Lat, Lng float64
		} `json:"path"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.NotEmpty(t, got.Geometry)
	assert.Greater(t, got.Distance, 1.0)
	require.Len(t, got.Path, 2)
	assert.Equal(t, 1.3, got.Path[0].Lat)
}

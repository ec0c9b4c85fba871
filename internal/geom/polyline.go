// Package geom encodes routes as Google encoded polylines (5-digit
// precision, latitude first).
package geom

import (
	"fmt"

	"github.com/twpayne/go-polyline"

	"github.com/atharv3903/roamer/internal/model"
)

// Precision is the coordinate resolution of the encoding in degrees.
const Precision = 1e-5

func Encode(path []model.Coord) string {
	coords := make([][]float64, len(path))
	for i, c := range path {
		coords[i] = []float64{c.Lat, c.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}

func Decode(s string) ([]model.Coord, error) {
	coords, rest, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("geom: decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("geom: %d trailing bytes after polyline", len(rest))
	}
	path := make([]model.Coord, len(coords))
	for i, c := range coords {
		path[i] = model.Coord{Lat: c[0], Lng: c[1]}
	}
	return path, nil
}

package geo

import (
	"math/rand"
	"testing"

	"github.com/atharv3903/roamer/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	p := model.Coord{Lat: 1.3, Lng: 103.8}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistanceSymmetric(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		a := model.Coord{Lat: rnd.Float64()*180 - 90, Lng: rnd.Float64()*360 - 180}
		b := model.Coord{Lat: rnd.Float64()*180 - 90, Lng: rnd.Float64()*360 - 180}
		assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// One degree of longitude on the equator.
	d := Distance(model.Coord{Lat: 0, Lng: 0}, model.Coord{Lat: 0, Lng: 1})
	assert.InDelta(t, 111.226, d, 0.01)

	// Nashville to Los Angeles, the usual haversine example.
	d = Distance(model.Coord{Lat: 36.12, Lng: -86.67}, model.Coord{Lat: 33.94, Lng: -118.40})
	assert.InDelta(t, 2887.26, d, 0.01)
}

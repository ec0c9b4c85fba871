package geo

import (
	"math"

	"github.com/atharv3903/roamer/internal/model"
)

// EarthRadiusKm is the mean radius used by Distance.
const EarthRadiusKm = 6372.8

// Distance returns the haversine great-circle distance between a and b in
// kilometres.
func Distance(a, b model.Coord) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

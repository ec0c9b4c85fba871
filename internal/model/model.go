package model

// Coord is a WGS84 position in degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Node is the static part of a graph vertex. Walk state lives in
// registry.WalkState, never here.
type Node struct {
	ID  int64   `json:"id" yaml:"id"`
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

func (n Node) Coord() Coord { return Coord{Lat: n.Lat, Lng: n.Lng} }

type Edge struct {
	Src    int64 `json:"src" yaml:"src"`
	Dst    int64 `json:"dst" yaml:"dst"`
	OneWay bool  `json:"oneway,omitempty" yaml:"oneway,omitempty"`
	Closed bool  `json:"closed,omitempty" yaml:"closed,omitempty"`
}

type RouteRequest struct {
	StartingLat *float64 `json:"starting_lat" validate:"required,latitude"`
	StartingLng *float64 `json:"starting_lng" validate:"required,longitude"`
	TargetDist  *int     `json:"target_dist" validate:"required,gt=0"`
}

type Point struct {
	Address string  `json:"pt_address,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Route is the response of /imfeelinglucky. Distance is in kilometres,
// Duration in minutes.
type Route struct {
	Geometry string   `json:"route_geom"`
	Distance float64  `json:"distance"`
	Duration *float64 `json:"duration,omitempty"`
	StartPt  Point    `json:"start_pt"`
	EndPt    Point    `json:"end_pt"`

	Path []Coord `json:"-"`
}

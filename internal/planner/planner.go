// Package planner turns a route request into a Route: it snaps the start
// coordinate to the graph, runs the random walk, rebuilds and encodes the
// path, then enriches it.
package planner

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/atharv3903/roamer/internal/algo"
	"github.com/atharv3903/roamer/internal/enrich"
	"github.com/atharv3903/roamer/internal/geom"
	"github.com/atharv3903/roamer/internal/metrics"
	"github.com/atharv3903/roamer/internal/model"
	"github.com/atharv3903/roamer/internal/registry"
)

// DefaultTolerance is the half-width in degrees of the box searched for a
// start node.
const DefaultTolerance = 0.001

var ErrNoNearbyStart = errors.New("planner: no graph node near the start point")

type Planner struct {
	registry  *registry.Registry
	walker    algo.Walker
	enricher  *enrich.Enricher
	tolerance float64
	log       *slog.Logger

	mu    sync.Mutex
	seeds *rand.Rand
}

type Option func(*Planner)

// WithSeed fixes the seed sequence so a series of requests is reproducible.
func WithSeed(seed int64) Option {
	return func(p *Planner) { p.seeds = rand.New(rand.NewSource(seed)) }
}

func WithTolerance(deg float64) Option {
	return func(p *Planner) {
		if deg > 0 {
			p.tolerance = deg
		}
	}
}

func WithEnricher(e *enrich.Enricher) Option { return func(p *Planner) { p.enricher = e } }

func WithLogger(l *slog.Logger) Option { return func(p *Planner) { p.log = l } }

func New(reg *registry.Registry, lookup algo.NeighborLookup, opts ...Option) *Planner {
	p := &Planner{
		registry:  reg,
		walker:    algo.Walker{Registry: reg, Lookup: lookup},
		tolerance: DefaultTolerance,
		log:       slog.Default(),
		seeds:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// rng hands each request its own source; rand.Rand is not safe to share.
func (p *Planner) rng() *rand.Rand {
	p.mu.Lock()
	seed := p.seeds.Int63()
	p.mu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// Plan generates a route of at least targetKm kilometres starting near
// start.
func (p *Planner) Plan(ctx context.Context, start model.Coord, targetKm float64) (*model.Route, error) {
	route, err := p.plan(ctx, start, targetKm)
	metrics.RoutesTotal.WithLabelValues(outcome(err)).Inc()
	return route, err
}

func (p *Planner) plan(ctx context.Context, start model.Coord, targetKm float64) (*model.Route, error) {
	candidates := p.registry.Nearby(start, p.tolerance)
	if len(candidates) == 0 {
		return nil, ErrNoNearbyStart
	}
	rng := p.rng()
	origin := candidates[rng.Intn(len(candidates))]

	t0 := time.Now()
	res, err := p.walker.Walk(ctx, rng, origin.ID, targetKm)
	if err != nil {
		p.log.Info("walk_failed", "start", origin.ID, "target_km", targetKm, "err", err)
		return nil, err
	}
	path, err := algo.Reconstruct(p.registry, res)
	if err != nil {
		p.log.Error("reconstruct_failed", "start", origin.ID, "terminal", res.Terminal, "err", err)
		return nil, err
	}
	metrics.WalkExpandedNodes.Observe(float64(res.Expanded))
	metrics.RouteDistanceKm.Observe(res.Distance)
	p.log.Debug("walk_done",
		"start", origin.ID,
		"terminal", res.Terminal,
		"distance_km", res.Distance,
		"expanded", res.Expanded,
		"hops", len(path)-1,
		"duration_ms", time.Since(t0).Milliseconds(),
	)

	first, last := path[0], path[len(path)-1]
	route := &model.Route{
		Geometry: geom.Encode(path),
		Distance: res.Distance,
		StartPt:  model.Point{Lat: first.Lat, Lng: first.Lng},
		EndPt:    model.Point{Lat: last.Lat, Lng: last.Lng},
		Path:     path,
	}

	e := p.enricher.Enrich(ctx, path)
	route.Duration = e.Duration
	route.StartPt.Address = e.StartAddress
	route.EndPt.Address = e.EndAddress
	return route, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoNearbyStart):
		return "no_nearby_start"
	case errors.Is(err, algo.ErrNoRouteFound):
		return "no_route"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

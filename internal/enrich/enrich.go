// Package enrich decorates a generated route with travel time and endpoint
// addresses from external services. Enrichment is best effort: a failure
// omits the affected field and never fails the route.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atharv3903/roamer/internal/metrics"
	"github.com/atharv3903/roamer/internal/model"
)

var ErrUnavailable = errors.New("enrich: service unavailable")

type Geocoder interface {
	ReverseGeocode(ctx context.Context, c model.Coord) (string, error)
}

// TravelTimeEstimator returns the travel time from a to b in minutes.
type TravelTimeEstimator interface {
	Estimate(ctx context.Context, a, b model.Coord, mode string) (float64, error)
}

const (
	defaultConcurrency = 4
	defaultMode        = "cycle"
)

type Enricher struct {
	Geocoder  Geocoder
	Estimator TravelTimeEstimator
	Mode      string
	// Concurrency bounds in-flight travel time requests.
	Concurrency int
	// Timeout caps the whole enrichment; zero means none beyond ctx.
	Timeout time.Duration
	Logger  *slog.Logger
}

type Enrichment struct {
	Duration     *float64
	StartAddress string
	EndAddress   string
	Errs         []error
}

func (e *Enricher) Enrich(ctx context.Context, path []model.Coord) Enrichment {
	var out Enrichment
	if e == nil || len(path) == 0 {
		return out
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var (
		start, end       string
		startErr, endErr error
		dur              *float64
		durErr           error
	)
	var g errgroup.Group
	if e.Geocoder != nil {
		g.Go(func() error {
			start, startErr = e.Geocoder.ReverseGeocode(ctx, path[0])
			return nil
		})
		g.Go(func() error {
			end, endErr = e.Geocoder.ReverseGeocode(ctx, path[len(path)-1])
			return nil
		})
	}
	if e.Estimator != nil && len(path) > 1 {
		g.Go(func() error {
			dur, durErr = e.duration(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	out.Duration = dur
	if durErr != nil {
		out.Errs = append(out.Errs, durErr)
	}
	if e.Geocoder != nil {
		out.StartAddress = e.address("start", start, startErr, &out)
		out.EndAddress = e.address("end", end, endErr, &out)
	}
	return out
}

func (e *Enricher) address(which, s string, err error, out *Enrichment) string {
	if err == nil {
		return s
	}
	e.fail("geocode", err, "point", which)
	out.Errs = append(out.Errs, fmt.Errorf("%w: geocode %s: %w", ErrUnavailable, which, err))
	return ""
}

// duration sums per-segment travel times. A single failed segment drops the
// total, a partial sum would understate the route.
func (e *Enricher) duration(ctx context.Context, path []model.Coord) (*float64, error) {
	mode := e.Mode
	if mode == "" {
		mode = defaultMode
	}
	limit := e.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	mins := make([]float64, len(path)-1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range mins {
		i := i
		g.Go(func() error {
			m, err := e.Estimator.Estimate(gctx, path[i], path[i+1], mode)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			mins[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.fail("travel_time", err, "segments", len(mins))
		return nil, fmt.Errorf("%w: travel time: %w", ErrUnavailable, err)
	}

	var total float64
	for _, m := range mins {
		total += m
	}
	return &total, nil
}

func (e *Enricher) fail(kind string, err error, args ...any) {
	metrics.EnrichmentFailuresTotal.WithLabelValues(kind).Inc()
	if e.Logger != nil {
		e.Logger.Warn("enrichment_failed", append([]any{"kind", kind, "err", err}, args...)...)
	}
}

// Package app assembles the registry, neighbour lookup, enrichment and
// planner from a ServerConfig.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atharv3903/roamer/internal/algo"
	"github.com/atharv3903/roamer/internal/cache"
	"github.com/atharv3903/roamer/internal/config"
	"github.com/atharv3903/roamer/internal/db"
	"github.com/atharv3903/roamer/internal/enrich"
	"github.com/atharv3903/roamer/internal/graph"
	"github.com/atharv3903/roamer/internal/model"
	"github.com/atharv3903/roamer/internal/onemap"
	"github.com/atharv3903/roamer/internal/planner"
	"github.com/atharv3903/roamer/internal/registry"
)

type App struct {
	Registry *registry.Registry
	Lookup   algo.NeighborLookup
	Planner  *planner.Planner

	// Set only when the graph lives in a database.
	Store *db.Store
	Adj   *cache.AdjCache

	closers []func() error
}

func Build(ctx context.Context, cfg config.ServerConfig, log *slog.Logger) (*App, error) {
	a := &App{Registry: registry.New()}

	var nodes []model.Node
	if cfg.GraphFile != "" {
		g, err := graph.LoadFile(cfg.GraphFile)
		if err != nil {
			return nil, err
		}
		nodes = g.Nodes()
		a.Lookup = g
	} else {
		st, err := db.Open(cfg.DBDriver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.DB.Close)
		if nodes, err = st.Nodes(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.Store = &st
		a.Adj = cache.NewAdjCacheWithCap(cfg.AdjCacheCap)
		a.Lookup = &algo.GraphCtx{Store: st, Adj: a.Adj}
	}
	a.Registry.Seed(nodes)
	log.Info("graph_loaded", "nodes", a.Registry.Len(), "file", cfg.GraphFile, "driver", driverName(cfg))

	opts := []planner.Option{
		planner.WithTolerance(cfg.Tolerance),
		planner.WithLogger(log),
		planner.WithEnricher(a.enricher(ctx, cfg, log)),
	}
	if cfg.Seed != 0 {
		opts = append(opts, planner.WithSeed(cfg.Seed))
	}
	a.Planner = planner.New(a.Registry, a.Lookup, opts...)
	return a, nil
}

// enricher returns nil when no enrichment backend is configured.
func (a *App) enricher(ctx context.Context, cfg config.ServerConfig, log *slog.Logger) *enrich.Enricher {
	var (
		geo enrich.Geocoder
		est enrich.TravelTimeEstimator
	)
	if cfg.OneMapEnabled() {
		est = onemap.New(cfg.OneMapURL, cfg.OneMapEmail, cfg.OneMapPassword,
			onemap.WithRateLimit(cfg.OneMapQPS, int(cfg.OneMapQPS)+1),
			onemap.WithLogger(log),
		)
	}
	if cfg.GeocodeURL != "" {
		g := onemap.NewGeocoder(cfg.GeocodeURL)
		g.Logger = log
		geo = g
	}
	if geo == nil && est == nil {
		log.Info("enrichment_disabled")
		return nil
	}

	if rc := a.redis(ctx, cfg, log); rc != nil {
		c := cache.NewRedis(rc, cfg.CacheTTL, log)
		if geo != nil {
			geo = c.Geocoder(geo)
		}
		if est != nil {
			est = c.Estimator(est)
		}
	}
	return &enrich.Enricher{
		Geocoder:    geo,
		Estimator:   est,
		Mode:        cfg.RouteType,
		Concurrency: cfg.EnrichConcurrency,
		Timeout:     cfg.EnrichTimeout,
		Logger:      log,
	}
}

// redis connects the enrichment cache. An unreachable server disables it.
func (a *App) redis(ctx context.Context, cfg config.ServerConfig, log *slog.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pctx).Err(); err != nil {
		log.Warn("redis_unavailable", "addr", cfg.RedisAddr, "err", err)
		_ = rc.Close()
		return nil
	}
	a.closers = append(a.closers, rc.Close)
	return rc
}

func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = fmt.Errorf("app: close: %w", err)
		}
	}
	a.closers = nil
	return first
}

func driverName(cfg config.ServerConfig) string {
	if cfg.GraphFile != "" {
		return ""
	}
	return cfg.DBDriver
}

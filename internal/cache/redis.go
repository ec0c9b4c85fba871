package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atharv3903/roamer/internal/enrich"
	"github.com/atharv3903/roamer/internal/metrics"
	"github.com/atharv3903/roamer/internal/model"
)

const defaultPrefix = "roamer:"

// Redis memoises geocoding and travel time lookups. Keys use coordinates
// rounded to 5 decimals, the precision of the route encoding. A Redis outage
// degrades to calling the upstream directly.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *slog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *slog.Logger) *Redis {
	return &Redis{client: client, prefix: defaultPrefix, ttl: ttl, log: log}
}

// Geocoder wraps g with the cache.
func (r *Redis) Geocoder(g enrich.Geocoder) enrich.Geocoder {
	return cachedGeocoder{r: r, next: g}
}

// Estimator wraps e with the cache.
func (r *Redis) Estimator(e enrich.TravelTimeEstimator) enrich.TravelTimeEstimator {
	return cachedEstimator{r: r, next: e}
}

func (r *Redis) lookup(ctx context.Context, kind, key string) (string, bool) {
	v, err := r.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.CacheLookupsTotal.WithLabelValues(kind, "hit").Inc()
		return v, true
	case errors.Is(err, redis.Nil):
		metrics.CacheLookupsTotal.WithLabelValues(kind, "miss").Inc()
	default:
		metrics.CacheLookupsTotal.WithLabelValues(kind, "error").Inc()
		r.log.Warn("redis_get_error", "key", key, "err", err)
	}
	return "", false
}

func (r *Redis) store(ctx context.Context, key, val string) {
	if err := r.client.Set(ctx, key, val, r.ttl).Err(); err != nil {
		r.log.Warn("redis_set_error", "key", key, "err", err)
	}
}

func coordKey(c model.Coord) string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng)
}

type cachedGeocoder struct {
	r    *Redis
	next enrich.Geocoder
}

func (c cachedGeocoder) ReverseGeocode(ctx context.Context, p model.Coord) (string, error) {
	key := c.r.prefix + "geo:" + coordKey(p)
	if v, ok := c.r.lookup(ctx, "geocode", key); ok {
		return v, nil
	}
	addr, err := c.next.ReverseGeocode(ctx, p)
	if err != nil {
		return "", err
	}
	c.r.store(ctx, key, addr)
	return addr, nil
}

type cachedEstimator struct {
	r    *Redis
	next enrich.TravelTimeEstimator
}

func (c cachedEstimator) Estimate(ctx context.Context, a, b model.Coord, mode string) (float64, error) {
	key := c.r.prefix + "tt:" + mode + ":" + coordKey(a) + ":" + coordKey(b)
	if v, ok := c.r.lookup(ctx, "travel_time", key); ok {
		if mins, err := strconv.ParseFloat(v, 64); err == nil {
			return mins, nil
		}
	}
	mins, err := c.next.Estimate(ctx, a, b, mode)
	if err != nil {
		return 0, err
	}
	c.r.store(ctx, key, strconv.FormatFloat(mins, 'g', -1, 64))
	return mins, nil
}

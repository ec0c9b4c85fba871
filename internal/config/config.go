package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

const DefaultCredsFile = "./onemap-config/onemapCred.json"

type ServerConfig struct {
	Addr string

	// Graph source: either a database or a YAML/JSON graph file.
	DBDriver  string
	DSN       string
	GraphFile string

	AdjCacheCap int
	Tolerance   float64
	Seed        int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	OneMapURL         string
	OneMapEmail       string
	OneMapPassword    string
	OneMapCredsFile   string
	OneMapQPS         float64
	RouteType         string
	GeocodeURL        string
	EnrichTimeout     time.Duration
	EnrichConcurrency int
}

func FromFlagsServer() ServerConfig {
	cfg, err := Parse(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

// Parse reads flags from args; getenv supplies each flag's default.
func Parse(fs *flag.FlagSet, args []string, getenv func(string) string) (ServerConfig, error) {
	var cfg ServerConfig
	env := envDefaults{get: getenv}

	fs.StringVar(&cfg.Addr, "addr", env.str("ADDR", ":27462"), "HTTP bind address")
	fs.StringVar(&cfg.DBDriver, "db-driver", env.str("DB_DRIVER", "mysql"), "database driver: mysql or postgres")
	fs.StringVar(&cfg.DSN, "dsn", env.str("DB_DSN", ""), "database DSN")
	fs.StringVar(&cfg.GraphFile, "graph", env.str("GRAPH_FILE", ""), "YAML or JSON graph file, instead of a database")
	fs.IntVar(&cfg.AdjCacheCap, "adj-cache", env.int("ADJ_CACHE_CAP", 2048), "adjacency LRU capacity (database mode)")
	fs.Float64Var(&cfg.Tolerance, "tolerance", env.float("START_TOLERANCE", 0.001), "start node search half-width in degrees")
	fs.Int64Var(&cfg.Seed, "seed", int64(env.int("SEED", 0)), "random seed, 0 for time based")

	fs.StringVar(&cfg.RedisAddr, "redis", env.str("REDIS_ADDR", ""), "Redis address for the enrichment cache, empty to disable")
	fs.StringVar(&cfg.RedisPassword, "redis-password", env.str("REDIS_PASSWORD", ""), "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", env.int("REDIS_DB", 0), "Redis database")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", env.duration("CACHE_TTL", 24*time.Hour), "enrichment cache TTL")

	fs.StringVar(&cfg.OneMapURL, "onemap-url", env.str("ONEMAP_URL", "https://developers.onemap.sg"), "OneMap base URL")
	fs.StringVar(&cfg.OneMapEmail, "onemap-email", env.str("ONEMAP_EMAIL", ""), "OneMap account email")
	fs.StringVar(&cfg.OneMapPassword, "onemap-password", env.str("ONEMAP_PASSWORD", ""), "OneMap account password")
	fs.StringVar(&cfg.OneMapCredsFile, "onemap-creds", env.str("ONEMAP_CREDS_FILE", DefaultCredsFile), "JSON file with OneMap email and password")
	fs.Float64Var(&cfg.OneMapQPS, "onemap-qps", env.float("ONEMAP_QPS", 10), "OneMap request rate limit, 0 for none")
	fs.StringVar(&cfg.RouteType, "route-type", env.str("ROUTE_TYPE", "cycle"), "OneMap routeType")
	fs.StringVar(&cfg.GeocodeURL, "geocode-url", env.str("GEOCODE_URL", ""), "reverse geocoding backend URL, empty to disable")
	fs.DurationVar(&cfg.EnrichTimeout, "enrich-timeout", env.duration("ENRICH_TIMEOUT", 10*time.Second), "budget for enrichment calls per request")
	fs.IntVar(&cfg.EnrichConcurrency, "enrich-concurrency", env.int("ENRICH_CONCURRENCY", 4), "parallel travel time lookups per request")

	if env.err != nil {
		return cfg, env.err
	}
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if err := cfg.loadCreds(getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c ServerConfig) Validate() error {
	switch {
	case c.DSN == "" && c.GraphFile == "":
		return errors.New("config: one of -dsn or -graph is required")
	case c.DSN != "" && c.GraphFile != "":
		return errors.New("config: -dsn and -graph are mutually exclusive")
	case c.DBDriver != "mysql" && c.DBDriver != "postgres":
		return fmt.Errorf("config: unknown db driver %q", c.DBDriver)
	case c.Tolerance <= 0:
		return errors.New("config: tolerance must be positive")
	case c.EnrichConcurrency < 1:
		return errors.New("config: enrich concurrency must be at least 1")
	}
	return nil
}

// OneMapEnabled reports whether travel time estimation can authenticate.
func (c ServerConfig) OneMapEnabled() bool {
	return c.OneMapEmail != "" && c.OneMapPassword != ""
}

// loadCreds fills missing OneMap credentials from the onemapCreds env var
// (a JSON object) or, failing that, the credentials file if it exists.
func (c *ServerConfig) loadCreds(getenv func(string) string) error {
	if c.OneMapEnabled() {
		return nil
	}
	raw := []byte(getenv("onemapCreds"))
	if len(raw) == 0 && c.OneMapCredsFile != "" {
		b, err := os.ReadFile(c.OneMapCredsFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil
		case err != nil:
			return fmt.Errorf("config: read onemap creds: %w", err)
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil
	}
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(raw, &creds); err != nil {
		return fmt.Errorf("config: parse onemap creds: %w", err)
	}
	if c.OneMapEmail == "" {
		c.OneMapEmail = creds.Email
	}
	if c.OneMapPassword == "" {
		c.OneMapPassword = creds.Password
	}
	return nil
}

type envDefaults struct {
	get func(string) string
	err error
}

func (e *envDefaults) str(key, def string) string {
	if v := e.get(key); v != "" {
		return v
	}
	return def
}

func (e *envDefaults) int(key string, def int) int {
	v := e.get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return n
}

func (e *envDefaults) float(key string, def float64) float64 {
	v := e.get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return f
}

func (e *envDefaults) duration(key string, def time.Duration) time.Duration {
	v := e.get(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return d
}

func (e *envDefaults) fail(key, v string) {
	if e.err == nil {
		e.err = fmt.Errorf("config: invalid %s=%q", key, v)
	}
}

// Package onemap talks to the OneMap private API for cycling travel times and
// to the address backend used for reverse geocoding.
package onemap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/atharv3903/roamer/internal/logger"
	"github.com/atharv3903/roamer/internal/model"
)

const DefaultBaseURL = "https://developers.onemap.sg"

var (
	ErrAuth        = errors.New("onemap: authentication failed")
	ErrBadResponse = errors.New("onemap: unexpected response")
)

// Client fetches an access token once and reuses it until the API rejects
// it. Safe for concurrent use.
type Client struct {
	baseURL  string
	email    string
	password string
	http     *http.Client
	limiter  *rate.Limiter
	log      *slog.Logger

	mu    sync.Mutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithRateLimit caps outbound requests per second. qps <= 0 disables the cap.
func WithRateLimit(qps float64, burst int) Option {
	return func(c *Client) {
		if qps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
}

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

func New(baseURL, email, password string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:  baseURL,
		email:    email,
		password: password,
		http:     &http.Client{Timeout: 5 * time.Second},
		log:      logger.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Token returns the cached access token, requesting one when none is held.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{"email": c.email, "password": c.password})
	if err != nil {
		return "", err
	}
	var tr tokenResponse
	status, err := c.do(ctx, "token", http.MethodPost, c.baseURL+"/privateapi/auth/post/getToken", body, &tr)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || tr.AccessToken == "" {
		return "", fmt.Errorf("%w: status %d", ErrAuth, status)
	}
	c.token = tr.AccessToken
	return c.token, nil
}

func (c *Client) dropToken(stale string) {
	c.mu.Lock()
	if c.token == stale {
		c.token = ""
	}
	c.mu.Unlock()
}

type routeResponse struct {
	RouteSummary *struct {
		TotalTime float64 `json:"total_time"`
	} `json:"route_summary"`
}

// Estimate returns the travel time from a to b in minutes for routeType
// mode (cycle, walk, drive).
func (c *Client) Estimate(ctx context.Context, a, b model.Coord, mode string) (float64, error) {
	for attempt := 0; ; attempt++ {
		tok, err := c.Token(ctx)
		if err != nil {
			return 0, err
		}

		q := url.Values{}
		q.Set("start", coordParam(a))
		q.Set("end", coordParam(b))
		q.Set("routeType", mode)
		q.Set("token", tok)

		var rr routeResponse
		status, err := c.do(ctx, "route", http.MethodGet, c.baseURL+"/privateapi/routingsvc/route?"+q.Encode(), nil, &rr)
		if err != nil {
			return 0, err
		}
		if (status == http.StatusUnauthorized || status == http.StatusForbidden) && attempt == 0 {
			c.dropToken(tok)
			continue
		}
		if status != http.StatusOK || rr.RouteSummary == nil {
			return 0, fmt.Errorf("%w: route status %d", ErrBadResponse, status)
		}
		return rr.RouteSummary.TotalTime / 60, nil
	}
}

// do sends one request and decodes a JSON body into out when the status is
// 200. Non-200 statuses are returned without error for the caller to judge.
func (c *Client) do(ctx context.Context, call, method, u string, body []byte, out any) (int, error) {
	return send(ctx, c.http, c.limiter, c.log, call, method, u, body, out)
}

func coordParam(c model.Coord) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

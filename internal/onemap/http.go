package onemap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/atharv3903/roamer/internal/metrics"
)

func send(ctx context.Context, hc *http.Client, lim *rate.Limiter, log *slog.Logger, call, method, u string, body []byte, out any) (int, error) {
	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return 0, err
		}
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	t0 := time.Now()
	resp, err := hc.Do(req)
	metrics.UpstreamDurationMs.WithLabelValues(call).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(call, "error").Inc()
		log.Error("onemap_http_error", "call", call, "err", err)
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(call, "error").Inc()
		log.Warn("onemap_http_status", "call", call, "status", resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(call, "error").Inc()
		log.Error("onemap_decode_error", "call", call, "err", err)
		return resp.StatusCode, fmt.Errorf("%w: %s: %w", ErrBadResponse, call, err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(call, "ok").Inc()
	log.Debug("onemap_resp", "call", call, "duration_ms", time.Since(t0).Milliseconds())
	return resp.StatusCode, nil
}

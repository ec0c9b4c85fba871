// Package loadgen drives a running roamer server with route or road update
// traffic and summarises latency and throughput.
package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/atharv3903/roamer/internal/cache"
	"github.com/atharv3903/roamer/internal/model"
)

// Request issues one call and reports the HTTP status.
type Request func(ctx context.Context, rng *rand.Rand) (int, error)

type Stats struct {
	Clients  int
	Duration time.Duration
	Total    int64
	Errors   int64
	Status   map[int]int64

	latencies []time.Duration
}

func (s *Stats) Avg() time.Duration {
	if len(s.latencies) == 0 {
		return 0
	}
	var sum time.Duration
	for _, l := range s.latencies {
		sum += l
	}
	return sum / time.Duration(len(s.latencies))
}

// Percentile returns the p-th latency, p in [0,1].
func (s *Stats) Percentile(p float64) time.Duration {
	if len(s.latencies) == 0 {
		return 0
	}
	i := int(float64(len(s.latencies)) * p)
	if i >= len(s.latencies) {
		i = len(s.latencies) - 1
	}
	return s.latencies[i]
}

func (s *Stats) Throughput() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Total) / s.Duration.Seconds()
}

// Run keeps clients requests in flight until dur elapses or ctx ends.
func Run(ctx context.Context, clients int, dur time.Duration, req Request) *Stats {
	begin := time.Now()
	ctx, cancel := context.WithTimeout(ctx, dur)
	defer cancel()

	st := &Stats{Clients: clients, Status: map[int]int64{}}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil {
				start := time.Now()
				code, err := req(ctx, rng)
				lat := time.Since(start)
				if err != nil && ctx.Err() != nil {
					return
				}

				mu.Lock()
				st.Total++
				if err != nil {
					st.Errors++
				} else {
					st.Status[code]++
					st.latencies = append(st.latencies, lat)
				}
				mu.Unlock()
			}
		}(begin.UnixNano() + int64(i))
	}
	wg.Wait()

	st.Duration = time.Since(begin)
	slices.Sort(st.latencies)
	return st
}

// RouteRequests posts to /imfeelinglucky from a random node, displaced by up
// to jitter degrees, with a target distance of 1 to maxKm kilometres.
func RouteRequests(c *http.Client, server string, nodes []model.Node, jitter float64, maxKm int) Request {
	if maxKm < 1 {
		maxKm = 1
	}
	return func(ctx context.Context, rng *rand.Rand) (int, error) {
		if len(nodes) == 0 {
			return 0, ErrNoNodes
		}
		n := nodes[rng.Intn(len(nodes))]
		body := map[string]any{
			"starting_lat": n.Lat + (rng.Float64()*2-1)*jitter,
			"starting_lng": n.Lng + (rng.Float64()*2-1)*jitter,
			"target_dist":  1 + rng.Intn(maxKm),
		}
		return post(ctx, c, server+"/imfeelinglucky", body)
	}
}

// EdgePicker returns a random edge and its source node.
type EdgePicker func(ctx context.Context) (edgeID, src int64, err error)

// RoadUpdates toggles random edges through /road/update.
func RoadUpdates(c *http.Client, server string, pick EdgePicker) Request {
	return func(ctx context.Context, rng *rand.Rand) (int, error) {
		edgeID, src, err := pick(ctx)
		if err != nil {
			return 0, err
		}
		body := map[string]any{
			"edge_id":  edgeID,
			"closed":   rng.Intn(2) == 1,
			"src_node": src,
		}
		return post(ctx, c, server+"/road/update", body)
	}
}

func post(ctx context.Context, c *http.Client, u string, body any) (int, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// AdjStats fetches /debug/adjcache_stats. ok is false when the server has no
// adjacency cache.
func AdjStats(c *http.Client, server string) (st cache.AdjStats, ok bool) {
	resp, err := c.Get(server + "/debug/adjcache_stats")
	if err != nil {
		return st, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return st, false
	}
	return st, json.NewDecoder(resp.Body).Decode(&st) == nil
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

const csvHeader = "clients,total,errors,avg_ms,p50_ms,p95_ms,p99_ms,throughput_rps"

func WriteCSV(w io.Writer, results []*Stats) error {
	if _, err := fmt.Fprintln(w, csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		_, err := fmt.Fprintf(w, "%d,%d,%d,%.2f,%.2f,%.2f,%.2f,%.2f\n",
			r.Clients, r.Total, r.Errors,
			ms(r.Avg()), ms(r.Percentile(0.50)), ms(r.Percentile(0.95)), ms(r.Percentile(0.99)),
			r.Throughput())
		if err != nil {
			return err
		}
	}
	return nil
}

func PrintSummary(w io.Writer, s *Stats) {
	fmt.Fprintln(w, "\n========== LOADGEN SUMMARY ==========")
	fmt.Fprintf(w, "Clients: %d  Duration: %v\n", s.Clients, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Total Requests: %d\n", s.Total)
	fmt.Fprintf(w, "Errors: %d\n", s.Errors)
	codes := make([]int, 0, len(s.Status))
	for c := range s.Status {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	for _, c := range codes {
		fmt.Fprintf(w, "  HTTP %d: %d\n", c, s.Status[c])
	}
	fmt.Fprintf(w, "Throughput: %.2f req/s\n", s.Throughput())
	fmt.Fprintf(w, "Avg Latency: %v  P50: %v  P95: %v  P99: %v\n",
		s.Avg(), s.Percentile(0.50), s.Percentile(0.95), s.Percentile(0.99))
}

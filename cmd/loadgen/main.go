package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/atharv3903/roamer/internal/loadgen"
)

func main() {
	var (
		graphFile, driver, dsn, server string
		duration                       time.Duration
		jitter                         float64
		maxKm                          int
	)
	flag.StringVar(&graphFile, "graph", "", "graph file to draw start points from")
	flag.StringVar(&driver, "db-driver", "mysql", "database driver")
	flag.StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "database DSN to draw start points from")
	flag.StringVar(&server, "server", "http://localhost:27462", "server base URL")
	flag.DurationVar(&duration, "duration", 30*time.Second, "test length")
	flag.Float64Var(&jitter, "jitter", 0.0005, "start point displacement in degrees")
	flag.IntVar(&maxKm, "max-km", 10, "largest target distance")
	flag.Parse()

	ctx := context.Background()
	nodes, err := loadgen.LoadNodes(ctx, graphFile, driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Loaded %d nodes", len(nodes))

	client := &http.Client{Timeout: 10 * time.Second}

	// clear cache before test to avoid cumulative stats
	if resp, err := client.Get(server + "/debug/clear_cache"); err == nil {
		resp.Body.Close()
		log.Println("Cache cleared")
	}

	log.Printf("Running loadgen for %v…", duration)
	st := loadgen.Run(ctx, 1, duration, loadgen.RouteRequests(client, server, nodes, jitter, maxKm))
	loadgen.PrintSummary(os.Stdout, st)

	if adj, ok := loadgen.AdjStats(client, server); ok && adj.Gets > 0 {
		fmt.Printf("AdjCache Hit Rate: %.1f%% (gets=%d, hits=%d, puts=%d, evictions=%d)\n",
			float64(adj.Hits)/float64(adj.Gets)*100, adj.Gets, adj.Hits, adj.Puts, adj.Evictions)
	}
	fmt.Println("=====================================")
}

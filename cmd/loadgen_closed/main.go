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
		graphFile, driver, dsn, server, out string
		step, maxClients                    int
		duration                            time.Duration
	)
	flag.StringVar(&graphFile, "graph", "", "graph file to draw start points from")
	flag.StringVar(&driver, "db-driver", "mysql", "database driver")
	flag.StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "database DSN to draw start points from")
	flag.StringVar(&server, "server", "http://localhost:27462", "server base URL")
	flag.IntVar(&step, "step", 2, "client count increment")
	flag.IntVar(&maxClients, "max-clients", 100, "largest client count")
	flag.DurationVar(&duration, "duration", 10*time.Second, "length of each run")
	flag.StringVar(&out, "out", "results.csv", "CSV output file")
	flag.Parse()

	ctx := context.Background()
	nodes, err := loadgen.LoadNodes(ctx, graphFile, driver, dsn)
	if err != nil {
		log.Fatal(err)
	}

	transport := &http.Transport{
		MaxIdleConns:        500,
		MaxIdleConnsPerHost: 500,
		MaxConnsPerHost:     2000,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  true,
	}
	client := &http.Client{Transport: transport, Timeout: 5 * time.Second}
	req := loadgen.RouteRequests(client, server, nodes, 0.0005, 10)

	var results []*loadgen.Stats
	for n := step; n <= maxClients; n += step {
		fmt.Printf("\n== Running test with %d clients ==\n", n)
		st := loadgen.Run(ctx, n, duration, req)
		fmt.Printf("RPS: %.2f | Avg %v | P99 %v | Errors=%d/%d\n",
			st.Throughput(), st.Avg(), st.Percentile(0.99), st.Errors, st.Total)
		results = append(results, st)
	}

	fmt.Println("\n========== CLOSED-LOOP RESULTS (CSV) ==========")
	if err := loadgen.WriteCSV(os.Stdout, results); err != nil {
		log.Fatal(err)
	}

	f, err := os.Create(out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := loadgen.WriteCSV(f, results); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Saved", out)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/atharv3903/roamer/internal/db"
	"github.com/atharv3903/roamer/internal/loadgen"
)

// Drives the write path: random edges are opened or closed through
// /road/update while the server invalidates its adjacency cache.
func main() {
	var (
		driver, dsn, server, out string
		maxClients               int
		duration                 time.Duration
	)
	flag.StringVar(&driver, "db-driver", "mysql", "database driver")
	flag.StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "database DSN, used to pick live edges")
	flag.StringVar(&server, "server", "http://localhost:27462", "server base URL")
	flag.IntVar(&maxClients, "max-clients", 20, "largest client count")
	flag.DurationVar(&duration, "duration", 5*time.Second, "length of each run")
	flag.StringVar(&out, "out", "results_db.csv", "CSV output file")
	flag.Parse()

	st, err := db.Open(driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer st.DB.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	if resp, err := client.Get(server + "/debug/clear_cache"); err == nil {
		resp.Body.Close()
	}

	fmt.Println("Running DB-bound write workload (increasing clients)")
	req := loadgen.RoadUpdates(client, server, st.RandomEdge)

	ctx := context.Background()
	var results []*loadgen.Stats
	for n := 2; n <= maxClients; n += 2 {
		fmt.Printf("\n== %d CLIENTS ==\n", n)
		res := loadgen.Run(ctx, n, duration, req)
		fmt.Printf("RPS: %.2f | Avg %v | P99 %v | Errors=%d/%d\n",
			res.Throughput(), res.Avg(), res.Percentile(0.99), res.Errors, res.Total)
		results = append(results, res)
	}

	f, err := os.Create(out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := loadgen.WriteCSV(f, results); err != nil {
		log.Fatal(err)
	}
	fmt.Println("\nSaved", out)
}

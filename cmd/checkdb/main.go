// Command checkdb is an operator smoke test: it connects to Postgres
// with the same pool the server and importer use, reports the server
// version, and lists which corpus tables (stop, stop_distance, bus,
// bus_stop, routing_settings) exist and how many rows each holds.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/passbi/transitcat/internal/db"
)

var corpusTables = []string{"stop", "stop_distance", "bus", "bus_stop", "routing_settings"}

func main() {
	cfg := db.LoadConfigFromEnv()
	fmt.Printf("Connecting to %s:%d/%s as %s...\n", cfg.Host, cfg.Port, cfg.Database, cfg.User)

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("checkdb: connect: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	var version string
	if err := pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		log.Fatalf("checkdb: query version: %v", err)
	}
	fmt.Printf("connected: %s\n\n", version)

	fmt.Println("corpus tables:")
	for _, table := range corpusTables {
		var count int
		err := pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			fmt.Printf("  %-20s missing or unreadable: %v\n", table, err)
			continue
		}
		fmt.Printf("  %-20s %d rows\n", table, count)
	}
}

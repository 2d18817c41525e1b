// Command importer loads a corpus from a GTFS static feed zip or a JSON
// input document and writes it into the Postgres schema that
// ingest.PostgresLoader and cmd/rebuild-graph expect: stop,
// stop_distance, bus, bus_stop, routing_settings. It replaces the
// corpus wholesale on every run inside one transaction.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/passbi/transitcat/internal/db"
	"github.com/passbi/transitcat/internal/ingest"
	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
	"github.com/passbi/transitcat/internal/routegraph"
	"github.com/passbi/transitcat/internal/transitbuild"
)

func main() {
	gtfsPath := flag.String("gtfs", "", "path to a GTFS static feed zip")
	jsonPath := flag.String("document", "", "path to a JSON input document")
	waitTime := flag.Float64("wait-time", 5, "bus wait time in minutes (GTFS ingestion only)")
	velocity := flag.Float64("velocity", 20, "bus cruising velocity in km/h (GTFS ingestion only)")
	rebuildGraph := flag.Bool("rebuild-graph", false, "rebuild the in-memory routing graph singleton after import")
	flag.Parse()

	if *gtfsPath == "" && *jsonPath == "" {
		fmt.Println("Usage: importer (-gtfs=<path.zip> | -document=<path.json>) [-wait-time=5] [-velocity=20] [-rebuild-graph]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	corpus, err := loadCorpus(*gtfsPath, *jsonPath, *waitTime, *velocity)
	if err != nil {
		log.Fatalf("importer: load corpus: %v", err)
	}
	log.Printf("importer: loaded %d stops, %d buses", corpus.Stops.Len(), len(corpus.Buses.All()))

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("importer: connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	start := time.Now()
	if err := runImport(ctx, pool, corpus); err != nil {
		log.Fatalf("importer: %v", err)
	}
	log.Printf("importer: wrote corpus to postgres in %v", time.Since(start))

	if *rebuildGraph {
		built, err := transitbuild.New(corpus.Stops, corpus.Buses, corpus.Distances, corpus.Settings).Build()
		if err != nil {
			log.Fatalf("importer: build graph: %v", err)
		}
		routegraph.SetShared(built.Graph)
		log.Printf("importer: rebuilt graph: %d vertices, %d edges", built.Graph.VertexCount(), built.Graph.EdgeCount())
	}

	log.Println("importer: done")
}

func loadCorpus(gtfsPath, jsonPath string, waitTime, velocity float64) (*ingest.Corpus, error) {
	if gtfsPath != "" {
		if _, err := os.Stat(gtfsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("gtfs file not found: %s", gtfsPath)
		}
		return ingest.FromGTFSZip(gtfsPath, waitTime, velocity)
	}

	f, err := os.Open(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return ingest.DecodeDocument(f)
}

// runImport replaces the entire corpus in one transaction: truncate all
// five corpus tables, then batch-insert the new rows. routing_settings
// is a single row, rewritten outright.
func runImport(ctx context.Context, pool *pgxpool.Pool, corpus *ingest.Corpus) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE bus_stop, stop_distance, bus, stop, routing_settings`); err != nil {
		return fmt.Errorf("truncate corpus tables: %w", err)
	}

	if err := importStops(ctx, tx, corpus.Stops); err != nil {
		return fmt.Errorf("import stops: %w", err)
	}
	if err := importDistances(ctx, tx, corpus.Stops); err != nil {
		return fmt.Errorf("import stop distances: %w", err)
	}
	if err := importBuses(ctx, tx, corpus.Buses.All()); err != nil {
		return fmt.Errorf("import buses: %w", err)
	}
	if err := importSettings(ctx, tx, corpus.Settings); err != nil {
		return fmt.Errorf("import routing settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func importStops(ctx context.Context, tx pgx.Tx, stops *registry.StopRegistry) error {
	names := stops.Names()
	batch := &pgx.Batch{}
	for _, name := range names {
		s, _ := stops.Get(name)
		batch.Queue(`INSERT INTO stop (name, latitude, longitude) VALUES ($1, $2, $3)`, s.Name, s.Lat, s.Lon)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert stop %d: %w", i, err)
		}
	}
	log.Printf("importer: wrote %d stops", len(names))
	return nil
}

func importDistances(ctx context.Context, tx pgx.Tx, stops *registry.StopRegistry) error {
	batch := &pgx.Batch{}
	count := 0
	for _, name := range stops.Names() {
		s, _ := stops.Get(name)
		for to, meters := range s.Distances {
			batch.Queue(`INSERT INTO stop_distance (from_name, to_name, meters) VALUES ($1, $2, $3)`, s.Name, to, meters)
			count++
		}
	}
	if count == 0 {
		return nil
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert stop_distance %d: %w", i, err)
		}
	}
	log.Printf("importer: wrote %d stop distances", count)
	return nil
}

func importBuses(ctx context.Context, tx pgx.Tx, buses []*models.Bus) error {
	busBatch := &pgx.Batch{}
	for _, b := range buses {
		busBatch.Queue(`INSERT INTO bus (name, is_roundtrip) VALUES ($1, $2)`, b.Name, b.Roundtrip)
	}
	results := tx.SendBatch(ctx, busBatch)
	for i := 0; i < busBatch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert bus %d: %w", i, err)
		}
	}
	results.Close()

	stopBatch := &pgx.Batch{}
	stopCount := 0
	for _, b := range buses {
		for position, stopName := range b.Stops {
			stopBatch.Queue(`INSERT INTO bus_stop (bus_name, position, stop_name) VALUES ($1, $2, $3)`, b.Name, position, stopName)
			stopCount++
		}
	}
	results = tx.SendBatch(ctx, stopBatch)
	defer results.Close()
	for i := 0; i < stopBatch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert bus_stop %d: %w", i, err)
		}
	}

	log.Printf("importer: wrote %d buses, %d bus_stop rows", len(buses), stopCount)
	return nil
}

func importSettings(ctx context.Context, tx pgx.Tx, settings transitbuild.Settings) error {
	_, err := tx.Exec(ctx, `INSERT INTO routing_settings (bus_wait_time, bus_velocity) VALUES ($1, $2)`,
		int(settings.WaitTime), int(settings.Velocity))
	return err
}

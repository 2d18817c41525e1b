// Command rebuild-graph reloads the stop/bus corpus from Postgres and
// rebuilds the routing graph singleton of its own process, reporting
// how long the build took and the resulting vertex/edge counts. The
// graph is not shared with any other process: a running cmd/server
// keeps the graph it built at boot.
package main

import (
	"context"
	"log"
	"time"

	"github.com/passbi/transitcat/internal/db"
	"github.com/passbi/transitcat/internal/ingest"
	"github.com/passbi/transitcat/internal/routegraph"
	"github.com/passbi/transitcat/internal/transitbuild"
)

func main() {
	log.Println("rebuild-graph: connecting to database")
	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("rebuild-graph: connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	var stopCount, busCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM stop").Scan(&stopCount); err != nil {
		log.Fatalf("rebuild-graph: count stops: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM bus").Scan(&busCount); err != nil {
		log.Fatalf("rebuild-graph: count buses: %v", err)
	}
	log.Printf("rebuild-graph: %d stops, %d buses", stopCount, busCount)

	if stopCount == 0 || busCount == 0 {
		log.Fatal("rebuild-graph: no data found in database, run the importer first")
	}

	start := time.Now()
	corpus, err := ingest.NewPostgresLoader(pool).Load(ctx)
	if err != nil {
		log.Fatalf("rebuild-graph: load corpus: %v", err)
	}

	built, err := transitbuild.New(corpus.Stops, corpus.Buses, corpus.Distances, corpus.Settings).Build()
	if err != nil {
		log.Fatalf("rebuild-graph: build graph: %v", err)
	}
	routegraph.SetShared(built.Graph)

	log.Printf("rebuild-graph: rebuilt in %v: %d vertices, %d edges",
		time.Since(start), built.Graph.VertexCount(), built.Graph.EdgeCount())
}

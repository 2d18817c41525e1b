// Command server exposes the routing engine over HTTP, an optional
// secondary surface next to the primary stdin/stdout CLI. It loads a
// corpus once at boot (JSON document, GTFS zip, or Postgres) and serves
// queries against the process-wide graph singleton.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/passbi/transitcat/internal/api"
	"github.com/passbi/transitcat/internal/db"
	"github.com/passbi/transitcat/internal/ingest"
	"github.com/passbi/transitcat/internal/middleware"
	"github.com/passbi/transitcat/internal/query"
	"github.com/passbi/transitcat/internal/routecache"
	"github.com/passbi/transitcat/internal/routegraph"
	"github.com/passbi/transitcat/internal/routing"
	"github.com/passbi/transitcat/internal/stats"
	"github.com/passbi/transitcat/internal/transitbuild"
)

func main() {
	jsonPath := flag.String("document", "", "path to a JSON input document")
	gtfsPath := flag.String("gtfs", "", "path to a GTFS static feed zip")
	fromPostgres := flag.Bool("postgres", false, "load the corpus from Postgres (see DB_* environment variables)")
	waitTime := flag.Float64("wait-time", 5, "bus wait time in minutes (GTFS ingestion only)")
	velocity := flag.Float64("velocity", 20, "bus cruising velocity in km/h (GTFS ingestion only)")
	flag.Parse()

	corpus, err := loadCorpus(*jsonPath, *gtfsPath, *fromPostgres, *waitTime, *velocity)
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	built, err := transitbuild.New(corpus.Stops, corpus.Buses, corpus.Distances, corpus.Settings).Build()
	if err != nil {
		log.Fatalf("server: %v", err)
	}
	routegraph.SetShared(built.Graph)

	router := routing.New(routegraph.Shared())
	queries := query.New(corpus.Stops, router, built.Actions)
	statistics := stats.New(corpus.Stops, corpus.Buses, corpus.Distances)

	cacheCfg := routecache.LoadConfigFromEnv()
	var routeFinder api.RouteFinder = queries
	if cacheCfg.Enabled() {
		log.Println("server: route cache enabled")
		routeFinder = routecache.NewFinder(queries, cacheCfg, corpus.Settings.WaitTime, corpus.Settings.Velocity)
	}
	defer routecache.Close()

	app := fiber.New(fiber.Config{
		AppName:      "transitcat",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-Id",
	}))
	app.Use(requestID)

	if rl := rateLimiter(); rl != nil {
		app.Use(rl)
	}

	app.Get("/healthz", api.Health)
	api.New(routeFinder, statistics).Register(app)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error_message": "endpoint not found"})
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Println("server: shutting down gracefully")
		if err := app.Shutdown(); err != nil {
			log.Printf("server: error during shutdown: %v", err)
		}
	}()

	port := getEnv("SERVER_PORT", "8080")
	addr := fmt.Sprintf(":%s", port)
	log.Printf("server: listening on http://localhost%s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func loadCorpus(jsonPath, gtfsPath string, fromPostgres bool, waitTime, velocity float64) (*ingest.Corpus, error) {
	switch {
	case jsonPath != "":
		f, err := os.Open(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("open document: %w", err)
		}
		defer f.Close()
		return ingest.DecodeDocument(f)

	case gtfsPath != "":
		return ingest.FromGTFSZip(gtfsPath, waitTime, velocity)

	case fromPostgres:
		pool, err := db.GetDB()
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return ingest.NewPostgresLoader(pool).Load(context.Background())

	default:
		return nil, fmt.Errorf("one of -document, -gtfs, or -postgres is required")
	}
}

// requestID attaches an X-Request-Id header, generating one with
// google/uuid when the caller didn't supply it.
func requestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("X-Request-Id", id)
	return c.Next()
}

func rateLimiter() fiber.Handler {
	cfg := routecache.LoadConfigFromEnv()
	if !cfg.Enabled() {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return middleware.RateLimitMiddleware(client, 20, 50000)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

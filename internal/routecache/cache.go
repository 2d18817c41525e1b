// Package routecache is an optional, ephemeral read-through cache in
// front of the route query service. It never changes the answer a
// lookup produces, only whether that answer has to be recomputed; with
// REDIS_HOST unset it stays fully disabled and every call falls through
// to the wrapped service.
package routecache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/query"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis configuration for the cache layer.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
	MutexTTL time.Duration
}

// LoadConfigFromEnv loads Redis configuration from environment
// variables. An empty Host disables the cache entirely; Enabled
// reports that.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := time.ParseDuration(getEnv("ROUTECACHE_TTL", "10m"))
	mutexTTL, _ := time.ParseDuration(getEnv("ROUTECACHE_MUTEX_TTL", "5s"))

	return &Config{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     port,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TTL:      ttl,
		MutexTTL: mutexTTL,
	}
}

// Enabled reports whether a Redis host was configured.
func (c *Config) Enabled() bool { return c.Host != "" }

func getClient(cfg *Config) (*redis.Client, error) {
	clientOnce.Do(func() {
		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}
		if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("connect to redis: %w", err)
		}
	})
	return client, clientErr
}

// Close releases the underlying Redis client, if one was created.
func Close() {
	if client != nil {
		client.Close()
	}
}

// cachedResult mirrors query.Result in a JSON-stable shape; the
// EdgeAction interface can't be unmarshaled directly, so each action
// is tagged before marshaling.
type cachedResult struct {
	Found     bool             `json:"found"`
	TotalTime float64          `json:"total_time"`
	Actions   []cachedAction   `json:"actions"`
}

type cachedAction struct {
	Kind      string  `json:"kind"` // "wait" or "ride"
	StopName  string  `json:"stop_name,omitempty"`
	BusName   string  `json:"bus_name,omitempty"`
	Time      float64 `json:"time"`
	SpanCount int     `json:"span_count,omitempty"`
}

func toCached(r query.Result) cachedResult {
	out := cachedResult{Found: r.Found, TotalTime: r.TotalTime}
	for _, a := range r.Actions {
		switch v := a.(type) {
		case models.WaitAction:
			out.Actions = append(out.Actions, cachedAction{Kind: "wait", StopName: v.StopName, Time: v.Time})
		case models.RideAction:
			out.Actions = append(out.Actions, cachedAction{Kind: "ride", BusName: v.BusName, Time: v.Time, SpanCount: v.SpanCount})
		}
	}
	return out
}

func fromCached(c cachedResult) query.Result {
	out := query.Result{Found: c.Found, TotalTime: c.TotalTime}
	for _, a := range c.Actions {
		switch a.Kind {
		case "wait":
			out.Actions = append(out.Actions, models.WaitAction{StopName: a.StopName, Time: a.Time})
		case "ride":
			out.Actions = append(out.Actions, models.RideAction{BusName: a.BusName, Time: a.Time, SpanCount: a.SpanCount})
		}
	}
	return out
}

// RouteKey derives a deterministic cache key from the query parameters
// that affect find_route's answer: the endpoint names plus the two
// routing scalars, since the same corpus can be rebuilt with different
// wait-time/velocity settings.
func RouteKey(fromName, toName string, waitTime, velocity float64) string {
	data := fmt.Sprintf("%s|%s|%.6f|%.6f", fromName, toName, waitTime, velocity)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("route:%x", hash[:16])
}

func lockKey(routeKey string) string { return "lock:" + routeKey }

// Service wraps a query.Service with a cache-aside layer. Callers use
// it exactly like query.Service; when the configured Redis host is
// empty, every call is a direct passthrough.
type Service struct {
	inner *query.Service
	cfg   *Config
}

// New returns a Service wrapping inner using cfg (see
// LoadConfigFromEnv). If cfg.Enabled() is false the cache never
// activates and FindRoute always computes fresh.
func New(inner *query.Service, cfg *Config) *Service {
	return &Service{inner: inner, cfg: cfg}
}

// FindRoute answers fromName -> toName, consulting the cache first when
// enabled. A positive result is cached for cfg.TTL; a distributed lock
// (SETNX-based) collapses concurrent identical misses into one
// recomputation, with other callers waiting on waitForLock.
func (s *Service) FindRoute(ctx context.Context, fromName, toName string, waitTime, velocity float64) (query.Result, error) {
	if !s.cfg.Enabled() {
		return s.inner.FindRoute(fromName, toName)
	}

	client, err := getClient(s.cfg)
	if err != nil {
		return s.inner.FindRoute(fromName, toName)
	}

	key := RouteKey(fromName, toName, waitTime, velocity)
	if cached, ok, err := get(ctx, client, key); err == nil && ok {
		return cached, nil
	}

	lk := lockKey(key)
	acquired, err := client.SetNX(ctx, lk, "1", s.cfg.MutexTTL).Result()
	if err == nil && !acquired {
		if cached, ok, err := waitForLock(ctx, client, key, lk, s.cfg.MutexTTL*4); err == nil && ok {
			return cached, nil
		}
	}
	defer client.Del(ctx, lk)

	result, err := s.inner.FindRoute(fromName, toName)
	if err != nil {
		return query.Result{}, err
	}
	if result.Found {
		_ = set(ctx, client, key, result, s.cfg.TTL)
	}
	return result, nil
}

func get(ctx context.Context, client *redis.Client, key string) (query.Result, bool, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return query.Result{}, false, nil
	}
	if err != nil {
		return query.Result{}, false, err
	}
	var c cachedResult
	if err := json.Unmarshal(data, &c); err != nil {
		return query.Result{}, false, err
	}
	return fromCached(c), true, nil
}

func set(ctx context.Context, client *redis.Client, key string, result query.Result, ttl time.Duration) error {
	data, err := json.Marshal(toCached(result))
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, ttl).Err()
}

// Finder adapts a Service to the plain FindRoute(fromName, toName string)
// (query.Result, error) signature internal/api expects of a query.Service,
// fixing the wait-time/velocity scalars the cache key depends on to the
// values the corpus was built with.
type Finder struct {
	svc      *Service
	waitTime float64
	velocity float64
}

// NewFinder wraps inner in a cache-aside Service and returns a Finder
// bound to waitTime/velocity, the routing scalars the corpus was built
// with. Each lookup through the Finder runs under context.Background().
func NewFinder(inner *query.Service, cfg *Config, waitTime, velocity float64) *Finder {
	return &Finder{svc: New(inner, cfg), waitTime: waitTime, velocity: velocity}
}

// FindRoute answers fromName -> toName through the wrapped cache.
func (f *Finder) FindRoute(fromName, toName string) (query.Result, error) {
	return f.svc.FindRoute(context.Background(), fromName, toName, f.waitTime, f.velocity)
}

func waitForLock(ctx context.Context, client *redis.Client, routeKey, lk string, maxWait time.Duration) (query.Result, bool, error) {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		exists, err := client.Exists(ctx, lk).Result()
		if err != nil {
			return query.Result{}, false, err
		}
		if exists == 0 {
			return get(ctx, client, routeKey)
		}
		select {
		case <-ctx.Done():
			return query.Result{}, false, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return query.Result{}, false, fmt.Errorf("timeout waiting for route cache lock")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

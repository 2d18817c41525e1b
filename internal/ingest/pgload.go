package ingest

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/passbi/transitcat/internal/apperr"
	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
	"github.com/passbi/transitcat/internal/transitbuild"
)

// PostgresLoader builds a Corpus by reading a normalized stop/bus
// schema from Postgres, an alternate path to the JSON document for
// operators who keep their corpus in a database instead of a file.
//
// Expected schema:
//
//	stop(name text primary key, latitude double precision, longitude double precision)
//	stop_distance(from_name text, to_name text, meters double precision)
//	bus(name text primary key, is_roundtrip boolean)
//	bus_stop(bus_name text, position int, stop_name text)
//	routing_settings(bus_wait_time int, bus_velocity int)
type PostgresLoader struct {
	db *pgxpool.Pool
}

// NewPostgresLoader returns a loader reading from db.
func NewPostgresLoader(db *pgxpool.Pool) *PostgresLoader {
	return &PostgresLoader{db: db}
}

// Load reads the full corpus from Postgres. A stop_distance row whose
// from_name is not a declared stop, a bus with fewer than two stops or
// an unclosed roundtrip, and a missing or non-positive routing_settings
// row are reported as apperr.MalformedInput, matching DecodeDocument's
// error taxonomy for the JSON ingestion path. The to_name of
// stop_distance rows and the stop_name of bus_stop rows are not checked
// against the stop table here.
func (l *PostgresLoader) Load(ctx context.Context) (*Corpus, error) {
	stops := registry.NewStopRegistry()
	if err := l.loadStops(ctx, stops); err != nil {
		return nil, err
	}
	if err := l.loadDistances(ctx, stops); err != nil {
		return nil, err
	}

	buses := registry.NewBusRegistry()
	if err := l.loadBuses(ctx, buses); err != nil {
		return nil, err
	}

	settings, err := l.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	log.Printf("ingest: loaded %d stops and %d buses from postgres", stops.Len(), len(buses.All()))

	return &Corpus{
		Stops:     stops,
		Buses:     buses,
		Distances: registry.BuildDistanceTable(stops),
		Settings:  settings,
	}, nil
}

func (l *PostgresLoader) loadStops(ctx context.Context, stops *registry.StopRegistry) error {
	rows, err := l.db.Query(ctx, `SELECT name, latitude, longitude FROM stop ORDER BY name`)
	if err != nil {
		return fmt.Errorf("query stop table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.Name, &s.Lat, &s.Lon); err != nil {
			return fmt.Errorf("scan stop row: %w", err)
		}
		s.Distances = make(map[string]float64)
		stops.Add(s)
	}
	return rows.Err()
}

func (l *PostgresLoader) loadDistances(ctx context.Context, stops *registry.StopRegistry) error {
	rows, err := l.db.Query(ctx, `SELECT from_name, to_name, meters FROM stop_distance`)
	if err != nil {
		return fmt.Errorf("query stop_distance table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var from, to string
		var meters float64
		if err := rows.Scan(&from, &to, &meters); err != nil {
			return fmt.Errorf("scan stop_distance row: %w", err)
		}
		stop, ok := stops.Get(from)
		if !ok {
			return fmt.Errorf("%w: stop_distance references unknown stop %q", apperr.MalformedInput, from)
		}
		stop.Distances[to] = meters
	}
	return rows.Err()
}

func (l *PostgresLoader) loadBuses(ctx context.Context, buses *registry.BusRegistry) error {
	rows, err := l.db.Query(ctx, `SELECT name, is_roundtrip FROM bus ORDER BY name`)
	if err != nil {
		return fmt.Errorf("query bus table: %w", err)
	}

	type busRow struct {
		name       string
		roundtrip  bool
	}
	var busRows []busRow
	for rows.Next() {
		var b busRow
		if err := rows.Scan(&b.name, &b.roundtrip); err != nil {
			rows.Close()
			return fmt.Errorf("scan bus row: %w", err)
		}
		busRows = append(busRows, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	stopRows, err := l.db.Query(ctx, `SELECT bus_name, position, stop_name FROM bus_stop ORDER BY bus_name, position`)
	if err != nil {
		return fmt.Errorf("query bus_stop table: %w", err)
	}
	defer stopRows.Close()

	type stopRef struct {
		position int
		name     string
	}
	stopsByBus := make(map[string][]stopRef)
	for stopRows.Next() {
		var busName string
		var ref stopRef
		if err := stopRows.Scan(&busName, &ref.position, &ref.name); err != nil {
			return fmt.Errorf("scan bus_stop row: %w", err)
		}
		stopsByBus[busName] = append(stopsByBus[busName], ref)
	}
	if err := stopRows.Err(); err != nil {
		return err
	}

	for _, b := range busRows {
		refs := stopsByBus[b.name]
		sort.Slice(refs, func(i, j int) bool { return refs[i].position < refs[j].position })
		names := make([]string, len(refs))
		for i, r := range refs {
			names[i] = r.name
		}
		if err := buses.Add(models.Bus{Name: b.name, Stops: names, Roundtrip: b.roundtrip}); err != nil {
			return err
		}
	}
	return nil
}

func (l *PostgresLoader) loadSettings(ctx context.Context) (transitbuild.Settings, error) {
	var waitTime, velocity int
	err := l.db.QueryRow(ctx, `SELECT bus_wait_time, bus_velocity FROM routing_settings LIMIT 1`).Scan(&waitTime, &velocity)
	if err != nil {
		return transitbuild.Settings{}, fmt.Errorf("%w: routing_settings: %v", apperr.MalformedInput, err)
	}
	if waitTime <= 0 || velocity <= 0 {
		return transitbuild.Settings{}, fmt.Errorf("%w: routing_settings.bus_wait_time and bus_velocity must be positive", apperr.MalformedInput)
	}
	return transitbuild.Settings{WaitTime: float64(waitTime), Velocity: float64(velocity)}, nil
}

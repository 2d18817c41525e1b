// Package transitbuild turns a stop registry, bus registry and
// road-distance table into a routable graph: given the two routing
// scalars (wait time and cruising velocity), it constructs the
// vertex/edge layout and a parallel edge-action table. The method split
// (wait edges, forward ride edges, reverse ride edges) mirrors a
// BuildNodes/BuildEdges decomposition, generalized from GTFS stop_times
// to explicit bus-route stop sequences.
package transitbuild

import (
	"fmt"
	"log"

	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
	"github.com/passbi/transitcat/internal/routegraph"
)

// Settings are the two routing scalars: wait time in minutes and bus
// cruising velocity in km/h.
type Settings struct {
	WaitTime float64
	Velocity float64
}

// metersPerMinute converts the configured km/h velocity to the m/min
// unit road distance is divided by.
func (s Settings) metersPerMinute() float64 {
	return s.Velocity * 1000 / 60
}

// Result is the builder's immutable output: the constructed graph and
// its parallel edge-action table, indexed identically by edge id.
type Result struct {
	Graph   *routegraph.Graph
	Actions []models.EdgeAction
}

// Builder constructs a Result from a corpus and routing settings.
type Builder struct {
	stops     *registry.StopRegistry
	buses     *registry.BusRegistry
	distances *registry.DistanceTable
	settings  Settings
}

// New returns a Builder over the given corpus and settings.
func New(stops *registry.StopRegistry, buses *registry.BusRegistry, distances *registry.DistanceTable, settings Settings) *Builder {
	return &Builder{stops: stops, buses: buses, distances: distances, settings: settings}
}

// Build runs the full vertex/edge generation and returns the graph plus
// its edge-action table. The graph and the table are immutable once
// returned.
func (b *Builder) Build() (*Result, error) {
	n := b.stops.Len()
	g := routegraph.New(2 * n)
	var actions []models.EdgeAction

	addEdgeAction := func(from, to int, weight float64, action models.EdgeAction) error {
		id, err := g.AddEdge(from, to, weight)
		if err != nil {
			return err
		}
		if id != len(actions) {
			return fmt.Errorf("internal error: edge id %d does not match action table length %d", id, len(actions))
		}
		actions = append(actions, action)
		return nil
	}

	if err := b.buildWaitEdges(addEdgeAction); err != nil {
		return nil, err
	}

	for _, bus := range b.buses.All() {
		if err := b.buildForward(addEdgeAction, bus); err != nil {
			return nil, fmt.Errorf("bus %q: %w", bus.Name, err)
		}
		if !bus.Roundtrip {
			if err := b.buildReverse(addEdgeAction, bus); err != nil {
				return nil, fmt.Errorf("bus %q: %w", bus.Name, err)
			}
		}
	}

	log.Printf("transitbuild: built graph with %d vertices and %d edges from %d stops and %d buses",
		g.VertexCount(), g.EdgeCount(), n, len(b.buses.All()))

	return &Result{Graph: g, Actions: actions}, nil
}

type addEdgeActionFunc func(from, to int, weight float64, action models.EdgeAction) error

// buildWaitEdges emits edge 2i -> 2i+1 for every stop i, the fixed
// boarding fee paid between arriving at and being ready to board from
// a stop.
func (b *Builder) buildWaitEdges(add addEdgeActionFunc) error {
	for _, name := range b.stops.Names() {
		i, _ := b.stops.Index(name)
		if err := add(2*i, 2*i+1, b.settings.WaitTime, models.WaitAction{StopName: name, Time: b.settings.WaitTime}); err != nil {
			return err
		}
	}
	return nil
}

// buildForward emits the cumulative-ride edges for one bus, run
// regardless of whether the bus is cyclic or linear.
func (b *Builder) buildForward(add addEdgeActionFunc, bus *models.Bus) error {
	stops := bus.Stops
	k := len(stops)
	speed := b.settings.metersPerMinute()

	for i := 0; i < k; i++ {
		cumulative := 0.0
		span := 0
		for j := i + 1; j < k; j++ {
			dist, err := b.distances.Lookup(stops[j-1], stops[j])
			if err != nil {
				return err
			}
			cumulative += dist / speed
			span++

			fromIdx, err := b.mustIndex(stops[i])
			if err != nil {
				return err
			}
			toIdx, err := b.mustIndex(stops[j])
			if err != nil {
				return err
			}
			action := models.RideAction{BusName: bus.Name, Time: cumulative, SpanCount: span}
			if err := add(2*fromIdx+1, 2*toIdx, cumulative, action); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildReverse emits the backward pass for linear routes only, using
// independently measured distances in the s[j+1] -> s[j] direction. The
// road-distance table is intentionally asymmetric, so this is not
// simply the forward pass run backward.
func (b *Builder) buildReverse(add addEdgeActionFunc, bus *models.Bus) error {
	stops := bus.Stops
	k := len(stops)
	speed := b.settings.metersPerMinute()

	for i := k - 1; i >= 0; i-- {
		cumulative := 0.0
		span := 0
		for j := i - 1; j >= 0; j-- {
			dist, err := b.distances.Lookup(stops[j+1], stops[j])
			if err != nil {
				return err
			}
			cumulative += dist / speed
			span++

			fromIdx, err := b.mustIndex(stops[i])
			if err != nil {
				return err
			}
			toIdx, err := b.mustIndex(stops[j])
			if err != nil {
				return err
			}
			action := models.RideAction{BusName: bus.Name, Time: cumulative, SpanCount: span}
			if err := add(2*fromIdx+1, 2*toIdx, cumulative, action); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) mustIndex(stopName string) (int, error) {
	idx, ok := b.stops.Index(stopName)
	if !ok {
		return 0, fmt.Errorf("stop %q referenced by a bus route but never registered", stopName)
	}
	return idx, nil
}

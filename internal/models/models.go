// Package models holds the domain entities shared across ingestion,
// graph construction, routing and statistics: stops, bus routes, and the
// edge-action labels attached to routing-graph edges.
package models

// Stop is a named geographic point served by zero or more bus routes.
// Latitude/longitude are in degrees. Distances is the set of explicit,
// measured road distances to named neighbor stops; it is intentionally
// asymmetric — a missing (u, v) entry falls back to (v, u) at lookup
// time, it is not implied by one.
type Stop struct {
	Name      string
	Lat       float64
	Lon       float64
	Distances map[string]float64 // neighbor stop name -> meters
}

// Bus is an ordered sequence of stops traversed by one bus line, either
// cyclic (Roundtrip true: closes on itself, single direction) or linear
// (Roundtrip false: traversed forward then backward).
type Bus struct {
	Name      string
	Stops     []string
	Roundtrip bool
}

// EdgeAction is the semantic label attached to a single routing-graph
// edge. It is a closed sum type: every edge is either a Wait or a Ride,
// never a blend of the two, so the variants are modeled as distinct
// structs behind a marker method rather than one flat record with
// optional fields.
type EdgeAction interface {
	edgeAction()
}

// WaitAction labels the fixed-cost edge 2i -> 2i+1 at a stop: the
// boarding delay paid once per stop, regardless of which bus is
// eventually ridden.
type WaitAction struct {
	StopName string
	Time     float64 // minutes
}

func (WaitAction) edgeAction() {}

// RideAction labels a cumulative-distance edge along one bus's stop
// sequence, spanning SpanCount consecutive stops without re-boarding.
type RideAction struct {
	BusName   string
	Time      float64 // minutes
	SpanCount int
}

func (RideAction) edgeAction() {}

// BusStats is the per-route statistics bundle described by spec §4.5.
type BusStats struct {
	StopCount   int
	UniqueStops int
	RouteLength float64 // meters, realized road distance
	Curvature   float64 // RouteLength / great-circle length
}

// StopStats is the set of bus names serving a stop.
type StopStats struct {
	Buses []string // sorted alphabetically
}

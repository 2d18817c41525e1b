// Package registry holds the name-keyed Stop and Bus registries built
// during ingest, and assigns each stop the dense 0-based index the graph
// builder uses for vertex numbering. Lookups here are the O(1)
// translation table between name-keyed ingest data and the graph's
// integer vertex space.
package registry

import (
	"fmt"
	"sort"

	"github.com/passbi/transitcat/internal/apperr"
	"github.com/passbi/transitcat/internal/models"
)

// StopRegistry assigns a stable, dense 0-based index to every stop name
// registered with it, in registration order.
type StopRegistry struct {
	byName map[string]*models.Stop
	index  map[string]int
	order  []string
}

// NewStopRegistry returns an empty registry.
func NewStopRegistry() *StopRegistry {
	return &StopRegistry{
		byName: make(map[string]*models.Stop),
		index:  make(map[string]int),
	}
}

// Add registers a stop. Re-registering the same name updates its
// attributes but keeps its original index.
func (r *StopRegistry) Add(s models.Stop) {
	if _, ok := r.byName[s.Name]; !ok {
		r.index[s.Name] = len(r.order)
		r.order = append(r.order, s.Name)
	}
	stop := s
	r.byName[s.Name] = &stop
}

// Get returns the stop registered under name, if any.
func (r *StopRegistry) Get(name string) (*models.Stop, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Index returns the dense vertex-numbering index assigned to name.
func (r *StopRegistry) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Len returns the number of distinct registered stops.
func (r *StopRegistry) Len() int {
	return len(r.order)
}

// Names returns registered stop names in registration (index) order.
func (r *StopRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// BusRegistry holds bus routes by name.
type BusRegistry struct {
	byName map[string]*models.Bus
	order  []string
}

// NewBusRegistry returns an empty registry.
func NewBusRegistry() *BusRegistry {
	return &BusRegistry{byName: make(map[string]*models.Bus)}
}

// Add registers a bus route. A roundtrip route whose stop sequence does
// not actually close (first != last) is rejected with
// apperr.MalformedInput.
func (r *BusRegistry) Add(b models.Bus) error {
	if len(b.Stops) < 2 {
		return fmt.Errorf("bus %q: %w: fewer than 2 stops", b.Name, apperr.MalformedInput)
	}
	if b.Roundtrip && b.Stops[0] != b.Stops[len(b.Stops)-1] {
		return fmt.Errorf("bus %q: %w: is_roundtrip but first stop %q != last stop %q",
			b.Name, apperr.MalformedInput, b.Stops[0], b.Stops[len(b.Stops)-1])
	}
	if _, exists := r.byName[b.Name]; !exists {
		r.order = append(r.order, b.Name)
	}
	bus := b
	r.byName[b.Name] = &bus
	return nil
}

// Get returns the bus registered under name, if any.
func (r *BusRegistry) Get(name string) (*models.Bus, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// All returns bus routes in registration order.
func (r *BusRegistry) All() []*models.Bus {
	out := make([]*models.Bus, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name]
	}
	return out
}

// StopBuses returns, for every stop, the sorted list of bus names whose
// route includes it.
func (r *BusRegistry) StopBuses() map[string][]string {
	seen := make(map[string]map[string]bool)
	for _, bus := range r.All() {
		for _, stopName := range bus.Stops {
			if seen[stopName] == nil {
				seen[stopName] = make(map[string]bool)
			}
			seen[stopName][bus.Name] = true
		}
	}
	out := make(map[string][]string, len(seen))
	for stopName, busSet := range seen {
		names := make([]string, 0, len(busSet))
		for name := range busSet {
			names = append(names, name)
		}
		sort.Strings(names)
		out[stopName] = names
	}
	return out
}

// DistanceTable is a fallback (u, v) -> meters lookup: an explicit
// (u -> v) entry wins; otherwise the (v -> u) entry is used; if neither
// exists the lookup fails. The table is intentionally not a metric — it
// is never normalized into a symmetric form, since reverse-direction
// ride edges depend on genuinely independent measured distances.
type DistanceTable struct {
	forward map[[2]string]float64
}

// BuildDistanceTable merges every stop's explicit neighbor distances
// into one lookup table.
func BuildDistanceTable(stops *StopRegistry) *DistanceTable {
	t := &DistanceTable{forward: make(map[[2]string]float64)}
	for _, name := range stops.Names() {
		stop, _ := stops.Get(name)
		for neighbor, meters := range stop.Distances {
			t.forward[[2]string{name, neighbor}] = meters
		}
	}
	return t
}

// Lookup returns the road distance in meters from u to v, using the
// (v, u) entry as a fallback when (u, v) has no explicit measurement.
func (t *DistanceTable) Lookup(u, v string) (float64, error) {
	if d, ok := t.forward[[2]string{u, v}]; ok {
		return d, nil
	}
	if d, ok := t.forward[[2]string{v, u}]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: no measured distance between %q and %q", apperr.MissingDistance, u, v)
}

// Package stats computes per-bus road length, great-circle length,
// curvature and stop counts, and per-stop bus membership. It is
// deliberately outside the routing core and only shares the corpus
// registries with it.
package stats

import (
	"math"

	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
)

const earthRadiusMeters = 6371000

// Service answers bus-stats and stop-buses queries against one corpus.
type Service struct {
	stops     *registry.StopRegistry
	buses     *registry.BusRegistry
	distances *registry.DistanceTable
}

// New returns a Service over the given corpus.
func New(stops *registry.StopRegistry, buses *registry.BusRegistry, distances *registry.DistanceTable) *Service {
	return &Service{stops: stops, buses: buses, distances: distances}
}

// BusStats computes the statistics bundle for one bus route. ok is
// false if name is not a registered bus.
func (s *Service) BusStats(name string) (result models.BusStats, ok bool, err error) {
	bus, exists := s.buses.Get(name)
	if !exists {
		return models.BusStats{}, false, nil
	}

	traversal := realizedTraversal(bus)

	roadLength := 0.0
	geoLength := 0.0
	for i := 0; i < len(traversal)-1; i++ {
		d, lookupErr := s.distances.Lookup(traversal[i], traversal[i+1])
		if lookupErr != nil {
			return models.BusStats{}, true, lookupErr
		}
		roadLength += d

		fromStop, _ := s.stops.Get(traversal[i])
		toStop, _ := s.stops.Get(traversal[i+1])
		geoLength += haversineMeters(fromStop.Lat, fromStop.Lon, toStop.Lat, toStop.Lon)
	}

	curvature := 0.0
	if geoLength > 0 {
		curvature = roadLength / geoLength
	}

	return models.BusStats{
		StopCount:   len(traversal),
		UniqueStops: countUnique(bus.Stops),
		RouteLength: roadLength,
		Curvature:   curvature,
	}, true, nil
}

// StopBuses returns the sorted bus names serving a stop. ok is false if
// name is not a registered stop.
func (s *Service) StopBuses(name string) (buses []string, ok bool) {
	if _, exists := s.stops.Get(name); !exists {
		return nil, false
	}
	membership := s.buses.StopBuses()
	return membership[name], true
}

// realizedTraversal is the ordered stop sequence a bus actually drives:
// its stop list once for a cyclic route (k stops, the closing edge is
// not re-walked as its own pass), or forward then backward (minus the
// duplicated turnaround stop) for a linear route — 2k-1 stops.
func realizedTraversal(bus *models.Bus) []string {
	if bus.Roundtrip {
		out := make([]string, len(bus.Stops))
		copy(out, bus.Stops)
		return out
	}
	k := len(bus.Stops)
	out := make([]string, 0, 2*k-1)
	out = append(out, bus.Stops...)
	for i := k - 2; i >= 0; i-- {
		out = append(out, bus.Stops[i])
	}
	return out
}

func countUnique(stops []string) int {
	seen := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		seen[s] = struct{}{}
	}
	return len(seen)
}

// haversineMeters computes the great-circle distance between two points
// given in degrees.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

package transitbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
)

func newLinearTwoStopCorpus(t *testing.T) (*registry.StopRegistry, *registry.BusRegistry, *registry.DistanceTable) {
	t.Helper()
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A", Lat: 0, Lon: 0, Distances: map[string]float64{"B": 1000}})
	stops.Add(models.Stop{Name: "B", Lat: 0, Lon: 0.01, Distances: map[string]float64{"A": 1200}})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "1", Stops: []string{"A", "B"}, Roundtrip: false}))

	return stops, buses, registry.BuildDistanceTable(stops)
}

// Scenario 1 — linear two-stop route.
func TestLinearTwoStopForwardAndReverse(t *testing.T) {
	stops, buses, dist := newLinearTwoStopCorpus(t)
	settings := Settings{WaitTime: 6, Velocity: 60} // 1000 m/min

	result, err := New(stops, buses, dist, settings).Build()
	require.NoError(t, err)

	idxA, _ := stops.Index("A")
	idxB, _ := stops.Index("B")

	// Wait edges.
	waitA := findEdgeAction(t, result, 2*idxA, 2*idxA+1)
	assert.Equal(t, models.WaitAction{StopName: "A", Time: 6}, waitA)

	waitB := findEdgeAction(t, result, 2*idxB, 2*idxB+1)
	assert.Equal(t, models.WaitAction{StopName: "B", Time: 6}, waitB)

	// Forward ride A -> B: 1000m / 1000 m/min = 1.0 min.
	rideAB := findEdgeAction(t, result, 2*idxA+1, 2*idxB)
	assert.Equal(t, models.RideAction{BusName: "1", Time: 1.0, SpanCount: 1}, rideAB)

	// Reverse ride B -> A: 1200m / 1000 m/min = 1.2 min.
	rideBA := findEdgeAction(t, result, 2*idxB+1, 2*idxA)
	assert.Equal(t, models.RideAction{BusName: "1", Time: 1.2, SpanCount: 1}, rideBA)
}

// Scenario 2 — cyclic route generates only the forward pass.
func TestCyclicRouteNoReverseEdges(t *testing.T) {
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A", Distances: map[string]float64{"B": 100}})
	stops.Add(models.Stop{Name: "B", Distances: map[string]float64{"C": 100}})
	stops.Add(models.Stop{Name: "C", Distances: map[string]float64{"A": 100}})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "2", Stops: []string{"A", "B", "C", "A"}, Roundtrip: true}))

	dist := registry.BuildDistanceTable(stops)
	result, err := New(stops, buses, dist, Settings{WaitTime: 1, Velocity: 60}).Build()
	require.NoError(t, err)

	idxB, _ := stops.Index("B")
	idxC, _ := stops.Index("C")

	// No ride edge should depart C's ready-to-board vertex toward B
	// (that would be the reverse direction, never emitted for cyclic
	// routes).
	for id, action := range result.Actions {
		if ride, ok := action.(models.RideAction); ok {
			e, _ := result.Graph.EdgeAt(id)
			assert.False(t, e.From == 2*idxC+1 && e.To == 2*idxB, "unexpected reverse ride action: %+v", ride)
		}
	}
}

// Scenario 3 — transfer between two buses.
func TestTransferAcrossTwoBuses(t *testing.T) {
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A", Distances: map[string]float64{"B": 1000}})
	stops.Add(models.Stop{Name: "B", Distances: map[string]float64{"C": 1000}})
	stops.Add(models.Stop{Name: "C", Distances: map[string]float64{"D": 1000, "B": 1000}})
	stops.Add(models.Stop{Name: "D", Distances: map[string]float64{}})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "1", Stops: []string{"A", "B", "C"}, Roundtrip: false}))
	require.NoError(t, buses.Add(models.Bus{Name: "2", Stops: []string{"C", "D"}, Roundtrip: false}))

	dist := registry.BuildDistanceTable(stops)
	result, err := New(stops, buses, dist, Settings{WaitTime: 5, Velocity: 60}).Build()
	require.NoError(t, err)

	idxA, _ := stops.Index("A")
	idxC, _ := stops.Index("C")

	// A span-2 ride on bus "1" from A to C must exist.
	found := false
	for id, action := range result.Actions {
		if ride, ok := action.(models.RideAction); ok && ride.BusName == "1" && ride.SpanCount == 2 {
			e, _ := result.Graph.EdgeAt(id)
			if e.From == 2*idxA+1 && e.To == 2*idxC {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a span-2 ride edge A->C on bus 1")
}

// Scenario 4 — asymmetric distances are looked up without symmetrizing.
func TestAsymmetricDistancesPreserved(t *testing.T) {
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A", Distances: map[string]float64{"B": 100}})
	stops.Add(models.Stop{Name: "B", Distances: map[string]float64{"A": 200, "C": 100}})
	stops.Add(models.Stop{Name: "C", Distances: map[string]float64{"B": 100}})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "1", Stops: []string{"A", "B", "C"}, Roundtrip: false}))

	dist := registry.BuildDistanceTable(stops)

	// Forward A->B uses 100 (explicit), forward B->C uses 100.
	d1, err := dist.Lookup("A", "B")
	require.NoError(t, err)
	assert.Equal(t, 100.0, d1)

	// Reverse pass uses road_distance(s[j+1], s[j]): B->A explicit 200
	// (not A->B's 100), C->B explicit 100.
	d2, err := dist.Lookup("B", "A")
	require.NoError(t, err)
	assert.Equal(t, 200.0, d2)

	d3, err := dist.Lookup("C", "B")
	require.NoError(t, err)
	assert.Equal(t, 100.0, d3)
}

// MissingDistance is fatal at build time.
func TestMissingDistanceFailsBuild(t *testing.T) {
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A"})
	stops.Add(models.Stop{Name: "B"})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "1", Stops: []string{"A", "B"}, Roundtrip: false}))

	dist := registry.BuildDistanceTable(stops)
	_, err := New(stops, buses, dist, Settings{WaitTime: 1, Velocity: 60}).Build()
	assert.Error(t, err)
}

func findEdgeAction(t *testing.T, result *Result, from, to int) models.EdgeAction {
	t.Helper()
	for id, action := range result.Actions {
		e, err := result.Graph.EdgeAt(id)
		require.NoError(t, err)
		if e.From == from && e.To == to {
			return action
		}
	}
	t.Fatalf("no edge %d -> %d found", from, to)
	return nil
}

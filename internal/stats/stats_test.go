package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
)

func newThreeStopCorpus(t *testing.T, roundtrip bool, stopNames []string) *Service {
	t.Helper()
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A", Lat: 0, Lon: 0, Distances: map[string]float64{"B": 1000}})
	stops.Add(models.Stop{Name: "B", Lat: 0, Lon: 0.01, Distances: map[string]float64{"C": 1000, "A": 1000}})
	stops.Add(models.Stop{Name: "C", Lat: 0, Lon: 0.02, Distances: map[string]float64{"B": 1000, "A": 2000}})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "loop", Stops: stopNames, Roundtrip: roundtrip}))

	dist := registry.BuildDistanceTable(stops)
	return New(stops, buses, dist)
}

func TestBusStatsLinearRoute(t *testing.T) {
	svc := newThreeStopCorpus(t, false, []string{"A", "B", "C"})

	result, ok, err := svc.BusStats("loop")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 5, result.StopCount) // A,B,C,B,A
	assert.Equal(t, 3, result.UniqueStops)
	assert.Equal(t, 4000.0, result.RouteLength) // 1000+1000+1000+1000
	assert.Greater(t, result.Curvature, 0.0)
}

func TestBusStatsRoundtripRoute(t *testing.T) {
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A", Lat: 0, Lon: 0, Distances: map[string]float64{"B": 1000}})
	stops.Add(models.Stop{Name: "B", Lat: 0, Lon: 0.01, Distances: map[string]float64{"C": 1000}})
	stops.Add(models.Stop{Name: "C", Lat: 0, Lon: 0.02, Distances: map[string]float64{"A": 1000}})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "loop", Stops: []string{"A", "B", "C", "A"}, Roundtrip: true}))

	svc := New(stops, buses, registry.BuildDistanceTable(stops))
	result, ok, err := svc.BusStats("loop")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 4, result.StopCount)
	assert.Equal(t, 3, result.UniqueStops)
	assert.Equal(t, 3000.0, result.RouteLength)
}

func TestBusStatsUnknownBusNotFound(t *testing.T) {
	svc := newThreeStopCorpus(t, false, []string{"A", "B", "C"})

	_, ok, err := svc.BusStats("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBusStatsMissingDistanceErrors(t *testing.T) {
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A", Lat: 0, Lon: 0, Distances: map[string]float64{}})
	stops.Add(models.Stop{Name: "B", Lat: 0, Lon: 0.01, Distances: map[string]float64{}})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "loop", Stops: []string{"A", "B"}, Roundtrip: false}))

	svc := New(stops, buses, registry.BuildDistanceTable(stops))
	_, ok, err := svc.BusStats("loop")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestStopBusesReturnsSortedMembership(t *testing.T) {
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A", Lat: 0, Lon: 0, Distances: map[string]float64{"B": 1000}})
	stops.Add(models.Stop{Name: "B", Lat: 0, Lon: 0.01, Distances: map[string]float64{"A": 1000}})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "z", Stops: []string{"A", "B"}, Roundtrip: false}))
	require.NoError(t, buses.Add(models.Bus{Name: "a", Stops: []string{"A", "B"}, Roundtrip: false}))

	svc := New(stops, buses, registry.BuildDistanceTable(stops))
	names, ok := svc.StopBuses("A")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "z"}, names)
}

func TestStopBusesUnknownStopNotFound(t *testing.T) {
	svc := newThreeStopCorpus(t, false, []string{"A", "B", "C"})
	_, ok := svc.StopBuses("nowhere")
	assert.False(t, ok)
}

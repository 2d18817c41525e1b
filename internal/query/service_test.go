package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
	"github.com/passbi/transitcat/internal/routing"
	"github.com/passbi/transitcat/internal/transitbuild"
)

func newTwoStopOneBusService(t *testing.T) *Service {
	t.Helper()
	stops := registry.NewStopRegistry()
	stops.Add(models.Stop{Name: "A", Lat: 0, Lon: 0, Distances: map[string]float64{"B": 600}})
	stops.Add(models.Stop{Name: "B", Lat: 0, Lon: 0.01, Distances: map[string]float64{"A": 600}})

	buses := registry.NewBusRegistry()
	require.NoError(t, buses.Add(models.Bus{Name: "1", Stops: []string{"A", "B"}, Roundtrip: false}))

	dist := registry.BuildDistanceTable(stops)
	built, err := transitbuild.New(stops, buses, dist, transitbuild.Settings{WaitTime: 2, Velocity: 6}).Build()
	require.NoError(t, err)

	router := routing.New(built.Graph)
	return New(stops, router, built.Actions)
}

func TestFindRouteReturnsWaitThenRide(t *testing.T) {
	svc := newTwoStopOneBusService(t)

	result, err := svc.FindRoute("A", "B")
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Len(t, result.Actions, 2)

	wait, ok := result.Actions[0].(models.WaitAction)
	require.True(t, ok)
	assert.Equal(t, "A", wait.StopName)

	ride, ok := result.Actions[1].(models.RideAction)
	require.True(t, ok)
	assert.Equal(t, "1", ride.BusName)
	assert.Equal(t, 1, ride.SpanCount)
	assert.Equal(t, wait.Time+ride.Time, result.TotalTime)
}

func TestFindRouteSameStopIsZeroWithNoActions(t *testing.T) {
	svc := newTwoStopOneBusService(t)

	result, err := svc.FindRoute("A", "A")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, 0.0, result.TotalTime)
	assert.Empty(t, result.Actions)
}

func TestFindRouteUnknownStopNotFound(t *testing.T) {
	svc := newTwoStopOneBusService(t)

	result, err := svc.FindRoute("A", "nowhere")
	require.NoError(t, err)
	assert.False(t, result.Found)

	result, err = svc.FindRoute("nowhere", "A")
	require.NoError(t, err)
	assert.False(t, result.Found)
}

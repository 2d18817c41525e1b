package routecache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/query"
)

func TestConfigDisabledWithoutHost(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.Enabled())

	cfg.Host = "localhost"
	assert.True(t, cfg.Enabled())
}

func TestLoadConfigFromEnvDefaultsToDisabled(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	cfg := LoadConfigFromEnv()
	assert.False(t, cfg.Enabled())
}

func TestRouteKeyIsDeterministicAndParamSensitive(t *testing.T) {
	a := RouteKey("A", "B", 5, 20)
	b := RouteKey("A", "B", 5, 20)
	assert.Equal(t, a, b)

	c := RouteKey("A", "B", 5, 25)
	assert.NotEqual(t, a, c)

	d := RouteKey("B", "A", 5, 20)
	assert.NotEqual(t, a, d)
}

func TestCachedResultRoundTripsWaitAndRideActions(t *testing.T) {
	result := query.Result{
		Found:     true,
		TotalTime: 8.5,
		Actions: []models.EdgeAction{
			models.WaitAction{StopName: "A", Time: 5},
			models.RideAction{BusName: "1", Time: 3.5, SpanCount: 2},
		},
	}

	roundTripped := fromCached(toCached(result))

	assert.Equal(t, result.Found, roundTripped.Found)
	assert.Equal(t, result.TotalTime, roundTripped.TotalTime)
	assert.Equal(t, result.Actions, roundTripped.Actions)
}

func TestCachedResultRoundTripsNotFound(t *testing.T) {
	result := query.Result{Found: false}
	roundTripped := fromCached(toCached(result))
	assert.False(t, roundTripped.Found)
	assert.Empty(t, roundTripped.Actions)
}

func TestNewFinderFallsThroughWhenCacheDisabled(t *testing.T) {
	finder := NewFinder(nil, &Config{}, 5, 20)
	require.NotNil(t, finder)
	assert.False(t, finder.svc.cfg.Enabled())
}

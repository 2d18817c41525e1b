package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/transitcat/internal/apperr"
)

const validDocument = `{
	"base_requests": [
		{"type": "Stop", "name": "A", "latitude": 0, "longitude": 0, "road_distances": {"B": 1000}},
		{"type": "Stop", "name": "B", "latitude": 0, "longitude": 0.01, "road_distances": {"A": 1000}},
		{"type": "Bus", "name": "1", "stops": ["A", "B"], "is_roundtrip": false}
	],
	"stat_requests": [
		{"id": 1, "type": "Route", "from": "A", "to": "B"}
	],
	"routing_settings": {"bus_wait_time": 5, "bus_velocity": 20}
}`

func TestDecodeDocumentValid(t *testing.T) {
	corpus, err := DecodeDocument(strings.NewReader(validDocument))
	require.NoError(t, err)

	assert.Equal(t, 2, corpus.Stops.Len())
	assert.Len(t, corpus.Buses.All(), 1)
	assert.Equal(t, 5.0, corpus.Settings.WaitTime)
	assert.Equal(t, 20.0, corpus.Settings.Velocity)
	require.Len(t, corpus.StatRequests, 1)
	assert.Equal(t, "Route", corpus.StatRequests[0].Type)
}

func TestDecodeDocumentMalformedJSON(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader("{not json"))
	assert.ErrorIs(t, err, apperr.MalformedInput)
}

func TestDecodeDocumentUnknownBaseRequestType(t *testing.T) {
	doc := `{
		"base_requests": [{"type": "Agency", "name": "X"}],
		"stat_requests": [],
		"routing_settings": {"bus_wait_time": 5, "bus_velocity": 20}
	}`
	_, err := DecodeDocument(strings.NewReader(doc))
	assert.ErrorIs(t, err, apperr.MalformedInput)
}

func TestDecodeDocumentMissingStopName(t *testing.T) {
	doc := `{
		"base_requests": [{"type": "Stop", "latitude": 0, "longitude": 0}],
		"stat_requests": [],
		"routing_settings": {"bus_wait_time": 5, "bus_velocity": 20}
	}`
	_, err := DecodeDocument(strings.NewReader(doc))
	assert.ErrorIs(t, err, apperr.MalformedInput)
}

func TestDecodeDocumentNonPositiveRoutingSettings(t *testing.T) {
	doc := `{
		"base_requests": [],
		"stat_requests": [],
		"routing_settings": {"bus_wait_time": 0, "bus_velocity": 20}
	}`
	_, err := DecodeDocument(strings.NewReader(doc))
	assert.ErrorIs(t, err, apperr.MalformedInput)
}

func TestDecodeDocumentInvalidBusPropagatesRegistryError(t *testing.T) {
	doc := `{
		"base_requests": [{"type": "Bus", "name": "1", "stops": ["A"], "is_roundtrip": false}],
		"stat_requests": [],
		"routing_settings": {"bus_wait_time": 5, "bus_velocity": 20}
	}`
	_, err := DecodeDocument(strings.NewReader(doc))
	assert.ErrorIs(t, err, apperr.MalformedInput)
}

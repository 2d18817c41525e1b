// Package ingest decodes the structured input document into the
// registries the transit graph builder consumes. No routing logic
// lives here, only document shape and validation.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/passbi/transitcat/internal/apperr"
	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
	"github.com/passbi/transitcat/internal/transitbuild"
)

// rawDocument mirrors the input document's JSON shape exactly.
type rawDocument struct {
	BaseRequests    []json.RawMessage `json:"base_requests"`
	StatRequests    []StatRequest     `json:"stat_requests"`
	RoutingSettings rawSettings       `json:"routing_settings"`
}

type rawSettings struct {
	BusWaitTime int `json:"bus_wait_time"`
	BusVelocity int `json:"bus_velocity"`
}

// rawBaseRequest is used only to sniff the "type" discriminator before
// decoding into the concrete stop/bus shape.
type rawBaseRequest struct {
	Type string `json:"type"`
}

type rawStop struct {
	Type          string             `json:"type"`
	Name          string             `json:"name"`
	Latitude      float64            `json:"latitude"`
	Longitude     float64            `json:"longitude"`
	RoadDistances map[string]float64 `json:"road_distances"`
}

type rawBus struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Stops        []string `json:"stops"`
	IsRoundtrip  bool     `json:"is_roundtrip"`
}

// StatRequest is one element of stat_requests: an id plus a Bus, Stop or
// Route query discriminated by Type.
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Corpus is the fully-ingested, build-ready state: the registries plus
// the routing scalars, and the stat_requests to answer against it.
type Corpus struct {
	Stops        *registry.StopRegistry
	Buses        *registry.BusRegistry
	Distances    *registry.DistanceTable
	Settings     transitbuild.Settings
	StatRequests []StatRequest
}

// DecodeDocument parses the JSON input document from r. Any parse
// failure or missing/mistyped required field is reported as
// apperr.MalformedInput.
func DecodeDocument(r io.Reader) (*Corpus, error) {
	var doc rawDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.MalformedInput, err)
	}

	stops := registry.NewStopRegistry()
	buses := registry.NewBusRegistry()

	for _, raw := range doc.BaseRequests {
		var disc rawBaseRequest
		if err := json.Unmarshal(raw, &disc); err != nil {
			return nil, fmt.Errorf("%w: base_requests entry: %v", apperr.MalformedInput, err)
		}

		switch disc.Type {
		case "Stop":
			var s rawStop
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, fmt.Errorf("%w: stop entry: %v", apperr.MalformedInput, err)
			}
			if s.Name == "" {
				return nil, fmt.Errorf("%w: stop entry missing name", apperr.MalformedInput)
			}
			stops.Add(models.Stop{
				Name:      s.Name,
				Lat:       s.Latitude,
				Lon:       s.Longitude,
				Distances: s.RoadDistances,
			})
		case "Bus":
			var b rawBus
			if err := json.Unmarshal(raw, &b); err != nil {
				return nil, fmt.Errorf("%w: bus entry: %v", apperr.MalformedInput, err)
			}
			if b.Name == "" {
				return nil, fmt.Errorf("%w: bus entry missing name", apperr.MalformedInput)
			}
			if err := buses.Add(models.Bus{Name: b.Name, Stops: b.Stops, Roundtrip: b.IsRoundtrip}); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: base_requests entry has unknown type %q", apperr.MalformedInput, disc.Type)
		}
	}

	if doc.RoutingSettings.BusWaitTime <= 0 || doc.RoutingSettings.BusVelocity <= 0 {
		return nil, fmt.Errorf("%w: routing_settings.bus_wait_time and bus_velocity must be positive", apperr.MalformedInput)
	}

	return &Corpus{
		Stops:     stops,
		Buses:     buses,
		Distances: registry.BuildDistanceTable(stops),
		Settings: transitbuild.Settings{
			WaitTime: float64(doc.RoutingSettings.BusWaitTime),
			Velocity: float64(doc.RoutingSettings.BusVelocity),
		},
		StatRequests: doc.StatRequests,
	}, nil
}

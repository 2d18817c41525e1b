package respond

import (
	"github.com/passbi/transitcat/internal/ingest"
	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/query"
	"github.com/passbi/transitcat/internal/stats"
)

// ErrorResponse is emitted for any missing entity or unreachable route.
type ErrorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

// BusResponse answers a {type: "Bus", name} stat request.
type BusResponse struct {
	RequestID       int    `json:"request_id"`
	StopCount       int    `json:"stop_count"`
	UniqueStopCount int    `json:"unique_stop_count"`
	RouteLength     Number `json:"route_length"`
	Curvature       Number `json:"curvature"`
}

// StopResponse answers a {type: "Stop", name} stat request.
type StopResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

// RouteResponse answers a {type: "Route", from, to} stat request.
type RouteResponse struct {
	RequestID int    `json:"request_id"`
	TotalTime Number `json:"total_time"`
	Items     []Item `json:"items"`
}

// Item is one entry of a RouteResponse's itinerary: either
// {type: "Wait", stop_name, time} or {type: "Bus", bus, span_count, time}.
type Item struct {
	Type      string `json:"type"`
	StopName  string `json:"stop_name,omitempty"`
	Bus       string `json:"bus,omitempty"`
	SpanCount int    `json:"span_count,omitempty"`
	Time      Number `json:"time"`
}

// ItemsFromActions projects a tagged EdgeAction sequence into the wire
// Item shape shared by the CLI and the HTTP query surface.
func ItemsFromActions(actions []models.EdgeAction) []Item {
	items := make([]Item, len(actions))
	for i, action := range actions {
		switch a := action.(type) {
		case models.WaitAction:
			items[i] = Item{Type: "Wait", StopName: a.StopName, Time: Number(a.Time)}
		case models.RideAction:
			items[i] = Item{Type: "Bus", Bus: a.BusName, SpanCount: a.SpanCount, Time: Number(a.Time)}
		}
	}
	return items
}

// notFound is the single error body used for every unknown-entity and
// unreachable-route case.
func notFound(requestID int) ErrorResponse {
	return ErrorResponse{RequestID: requestID, ErrorMessage: "not found"}
}

// Answer renders one stat_requests entry against the given query/stats
// services, producing the appropriate typed response or a not-found
// error. The second return value is false only for a malformed
// stat_request entry (unknown Type), which callers should treat as
// apperr.MalformedInput rather than a per-query miss.
func Answer(req ingest.StatRequest, queries *query.Service, statistics *stats.Service) (interface{}, bool) {
	switch req.Type {
	case "Bus":
		busStats, ok, err := statistics.BusStats(req.Name)
		if err != nil || !ok {
			return notFound(req.ID), true
		}
		return BusResponse{
			RequestID:       req.ID,
			StopCount:       busStats.StopCount,
			UniqueStopCount: busStats.UniqueStops,
			RouteLength:     Number(busStats.RouteLength),
			Curvature:       Number(busStats.Curvature),
		}, true

	case "Stop":
		buses, ok := statistics.StopBuses(req.Name)
		if !ok {
			return notFound(req.ID), true
		}
		if buses == nil {
			buses = []string{}
		}
		return StopResponse{RequestID: req.ID, Buses: buses}, true

	case "Route":
		result, err := queries.FindRoute(req.From, req.To)
		if err != nil || !result.Found {
			return notFound(req.ID), true
		}
		items := ItemsFromActions(result.Actions)
		if items == nil {
			items = []Item{}
		}
		return RouteResponse{RequestID: req.ID, TotalTime: Number(result.TotalTime), Items: items}, true

	default:
		return nil, false
	}
}

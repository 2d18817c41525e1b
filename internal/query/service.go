// Package query exposes a single find_route(from, to) entry point that
// maps both stop names to their "arrived" vertices (2i), invokes the
// router, and projects the resulting edge ids through the edge-action
// table. Entering at the origin's arrived vertex makes every non-empty
// itinerary start with a Wait at that stop.
package query

import (
	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
	"github.com/passbi/transitcat/internal/routing"
)

// Result is the outcome of a find_route query, flattened into one
// struct with a Found discriminator since Go has no native sum type
// cheaper than an interface for a two-field success case; callers
// should check Found before reading TotalTime/Actions.
type Result struct {
	Found     bool
	TotalTime float64
	Actions   []models.EdgeAction
}

// Service answers find_route queries against one built corpus.
type Service struct {
	stops   *registry.StopRegistry
	router  *routing.Router
	actions []models.EdgeAction
}

// New returns a Service backed by the given stop registry, router and
// edge-action table. actions must be indexed identically to the edges
// of the graph router wraps (transitbuild.Result guarantees this).
func New(stops *registry.StopRegistry, router *routing.Router, actions []models.EdgeAction) *Service {
	return &Service{stops: stops, router: router, actions: actions}
}

// FindRoute answers one routing query. Unknown stop names and
// unreachable endpoints both report Found=false; neither is treated as
// an error since per-query misses are part of normal operation.
func (s *Service) FindRoute(fromName, toName string) (Result, error) {
	fromIdx, ok := s.stops.Index(fromName)
	if !ok {
		return Result{Found: false}, nil
	}
	toIdx, ok := s.stops.Index(toName)
	if !ok {
		return Result{Found: false}, nil
	}

	handle, found, err := s.router.BuildRoute(2*fromIdx, 2*toIdx)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{Found: false}, nil
	}

	n := handle.EdgeCount()
	itinerary := make([]models.EdgeAction, n)
	for i := 0; i < n; i++ {
		edgeID, err := s.router.RouteEdge(handle, i)
		if err != nil {
			return Result{}, err
		}
		itinerary[i] = s.actions[edgeID]
	}

	return Result{Found: true, TotalTime: handle.TotalWeight(), Actions: itinerary}, nil
}

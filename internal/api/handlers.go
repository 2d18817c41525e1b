// Package api exposes the routing engine over HTTP: a read-only,
// optional surface next to the primary stdin/stdout CLI. Handlers stay
// thin — they parse the request, call into query/stats, and shape the
// response, never touching the graph or registries directly.
package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/passbi/transitcat/internal/query"
	"github.com/passbi/transitcat/internal/respond"
	"github.com/passbi/transitcat/internal/stats"
)

// RouteFinder answers a routing query by stop name. *query.Service
// satisfies this directly; *routecache.Finder wraps one behind a
// read-through cache. Handlers only needs the narrow signature, so it
// depends on neither concrete type.
type RouteFinder interface {
	FindRoute(fromName, toName string) (query.Result, error)
}

// Handlers bundles the services an HTTP request needs to answer a
// query against one built corpus.
type Handlers struct {
	queries    RouteFinder
	statistics *stats.Service
}

// New returns a Handlers bundle backed by the given services. queries
// may be a bare *query.Service or a *routecache.Finder wrapping one.
func New(queries RouteFinder, statistics *stats.Service) *Handlers {
	return &Handlers{queries: queries, statistics: statistics}
}

// Register attaches every route this package serves under app.
func (h *Handlers) Register(app *fiber.App) {
	v1 := app.Group("/v1")
	v1.Get("/buses/:name", h.BusStats)
	v1.Get("/stops/:name", h.StopBuses)
	v1.Get("/route", h.FindRoute)
}

// BusStats handles GET /v1/buses/:name.
func (h *Handlers) BusStats(c *fiber.Ctx) error {
	name := c.Params("name")
	busStats, ok, err := h.statistics.BusStats(name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error_message": err.Error()})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error_message": "not found"})
	}
	return c.JSON(fiber.Map{
		"stop_count":        busStats.StopCount,
		"unique_stop_count": busStats.UniqueStops,
		"route_length":      respond.Number(busStats.RouteLength),
		"curvature":         respond.Number(busStats.Curvature),
	})
}

// StopBuses handles GET /v1/stops/:name.
func (h *Handlers) StopBuses(c *fiber.Ctx) error {
	name := c.Params("name")
	buses, ok := h.statistics.StopBuses(name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error_message": "not found"})
	}
	if buses == nil {
		buses = []string{}
	}
	return c.JSON(fiber.Map{"buses": buses})
}

// FindRoute handles GET /v1/route?from=...&to=....
func (h *Handlers) FindRoute(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error_message": "missing required query parameters: from, to"})
	}

	result, err := h.queries.FindRoute(from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error_message": err.Error()})
	}
	if !result.Found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error_message": "not found"})
	}

	return c.JSON(fiber.Map{
		"total_time": respond.Number(result.TotalTime),
		"items":      respond.ItemsFromActions(result.Actions),
	})
}

// Health handles GET /healthz.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

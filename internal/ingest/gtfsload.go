package ingest

import (
	"fmt"
	"math"
	"sort"

	"github.com/passbi/transitcat/internal/apperr"
	"github.com/passbi/transitcat/internal/gtfs"
	"github.com/passbi/transitcat/internal/models"
	"github.com/passbi/transitcat/internal/registry"
	"github.com/passbi/transitcat/internal/transitbuild"
)

const earthRadiusMeters = 6371000

// FromGTFSZip loads a corpus from a GTFS static feed zip. Each route
// becomes one Bus per direction_id observed among its trips (GTFS's own
// "one route, two directions" shape), using the stop sequence of that
// direction's first trip as representative (GTFS feeds commonly vary
// stop_times slightly trip to trip). Road distances between consecutive
// stops are approximated with the great-circle distance, since GTFS
// carries no explicit road-distance table. waitTime and velocity are
// not present in GTFS and must be supplied by the caller.
func FromGTFSZip(zipPath string, waitTime, velocity float64) (*Corpus, error) {
	feed, err := gtfs.ParseZip(zipPath)
	if err != nil {
		return nil, err
	}
	feed.Stops = gtfs.ValidateAndCleanStops(feed.Stops)

	stops := registry.NewStopRegistry()
	stopByID := make(map[string]gtfs.Stop, len(feed.Stops))
	for _, s := range feed.Stops {
		stopByID[s.StopID] = s
		stops.Add(models.Stop{
			Name:      stopName(s),
			Lat:       s.Lat,
			Lon:       s.Lon,
			Distances: make(map[string]float64),
		})
	}

	// firstTripOfRouteDirection[routeID][directionID] is the first trip
	// seen for that (route, direction) pair, in feed order.
	firstTripOfRouteDirection := make(map[string]map[int]string)
	directionsOf := make(map[string][]int)
	for _, t := range feed.Trips {
		byDirection, ok := firstTripOfRouteDirection[t.RouteID]
		if !ok {
			byDirection = make(map[int]string)
			firstTripOfRouteDirection[t.RouteID] = byDirection
		}
		if _, seen := byDirection[t.DirectionID]; !seen {
			byDirection[t.DirectionID] = t.TripID
			directionsOf[t.RouteID] = append(directionsOf[t.RouteID], t.DirectionID)
		}
	}

	stopsByTrip := make(map[string][]gtfs.StopTime)
	for _, st := range feed.StopTimes {
		stopsByTrip[st.TripID] = append(stopsByTrip[st.TripID], st)
	}
	for tripID, times := range stopsByTrip {
		sort.Slice(times, func(i, j int) bool { return times[i].StopSequence < times[j].StopSequence })
		stopsByTrip[tripID] = times
	}

	buses := registry.NewBusRegistry()
	for _, route := range feed.Routes {
		directions := directionsOf[route.RouteID]
		sort.Ints(directions)

		for _, direction := range directions {
			tripID := firstTripOfRouteDirection[route.RouteID][direction]
			times := stopsByTrip[tripID]
			if len(times) < 2 {
				continue
			}

			names := make([]string, 0, len(times))
			for _, st := range times {
				s, ok := stopByID[st.StopID]
				if !ok {
					continue
				}
				names = append(names, stopName(s))
			}
			if len(names) < 2 {
				continue
			}

			for i := 1; i < len(names); i++ {
				from, _ := stops.Get(names[i-1])
				to, _ := stops.Get(names[i])
				from.Distances[names[i]] = haversineMeters(from.Lat, from.Lon, to.Lat, to.Lon)
			}

			busName := routeBusName(route, direction, len(directions))
			if err := buses.Add(models.Bus{Name: busName, Stops: names, Roundtrip: false}); err != nil {
				return nil, fmt.Errorf("%w: route %s: %v", apperr.MalformedInput, route.RouteID, err)
			}
		}
	}

	return &Corpus{
		Stops:     stops,
		Buses:     buses,
		Distances: registry.BuildDistanceTable(stops),
		Settings:  transitbuild.Settings{WaitTime: waitTime, Velocity: velocity},
	}, nil
}

// routeBusName names the Bus built for one (route, direction) pair.
// Routes with only one observed direction keep a bare name; routes run
// in both directions get a " - direction N" suffix so the two Buses
// don't collide in the registry.
func routeBusName(route gtfs.Route, direction, directionCount int) string {
	name := route.ShortName
	if name == "" {
		name = route.LongName
	}
	if name == "" {
		name = route.RouteID
	}
	if directionCount > 1 {
		name = fmt.Sprintf("%s - direction %d", name, direction)
	}
	return name
}

func stopName(s gtfs.Stop) string {
	if s.StopName != "" {
		return s.StopName
	}
	return s.StopID
}

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

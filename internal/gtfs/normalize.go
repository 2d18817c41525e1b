package gtfs

import "log"

// ValidateAndCleanStops removes stops with invalid or null-island
// coordinates before they reach the stop registry.
func ValidateAndCleanStops(stops []Stop) []Stop {
	cleaned := make([]Stop, 0, len(stops))
	for _, stop := range stops {
		if stop.Lat < -90 || stop.Lat > 90 {
			log.Printf("gtfs: invalid latitude for stop %s: %f", stop.StopID, stop.Lat)
			continue
		}
		if stop.Lon < -180 || stop.Lon > 180 {
			log.Printf("gtfs: invalid longitude for stop %s: %f", stop.StopID, stop.Lon)
			continue
		}
		if stop.Lat == 0 && stop.Lon == 0 {
			log.Printf("gtfs: stop %s has null island coordinates, skipping", stop.StopID)
			continue
		}
		cleaned = append(cleaned, stop)
	}
	if len(cleaned) < len(stops) {
		log.Printf("gtfs: cleaned stops, removed %d invalid", len(stops)-len(cleaned))
	}
	return cleaned
}

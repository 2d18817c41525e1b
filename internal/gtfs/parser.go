// Package gtfs parses a GTFS static feed (zip of stops.txt, routes.txt,
// trips.txt, stop_times.txt) into the Stop/Bus shape the rest of the
// system consumes, giving operators an alternate ingestion path to the
// structured JSON document.
package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Stop is one stops.txt row.
type Stop struct {
	StopID   string
	StopName string
	Lat      float64
	Lon      float64
}

// Route is one routes.txt row.
type Route struct {
	RouteID   string
	ShortName string
	LongName  string
}

// Trip is one trips.txt row. DirectionID mirrors GTFS's direction_id
// field (0 or 1, one value per direction a route is run in); feeds that
// omit the column default every trip to direction 0.
type Trip struct {
	RouteID     string
	TripID      string
	DirectionID int
}

// StopTime is one stop_times.txt row.
type StopTime struct {
	TripID       string
	StopID       string
	StopSequence int
}

// Feed is a parsed GTFS static feed.
type Feed struct {
	Stops     []Stop
	Routes    []Route
	Trips     []Trip
	StopTimes []StopTime
}

// ParseZip extracts and parses a GTFS ZIP file.
func ParseZip(zipPath string) (*Feed, error) {
	tempDir, err := os.MkdirTemp("", "gtfs-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := extractZip(zipPath, tempDir); err != nil {
		return nil, fmt.Errorf("extract zip: %w", err)
	}

	feed := &Feed{}

	stops, err := parseStops(filepath.Join(tempDir, "stops.txt"))
	if err != nil {
		return nil, fmt.Errorf("parse stops (required): %w", err)
	}
	feed.Stops = stops
	log.Printf("gtfs: parsed %d stops", len(stops))

	routes, err := parseRoutes(filepath.Join(tempDir, "routes.txt"))
	if err != nil {
		return nil, fmt.Errorf("parse routes (required): %w", err)
	}
	feed.Routes = routes
	log.Printf("gtfs: parsed %d routes", len(routes))

	trips, err := parseTrips(filepath.Join(tempDir, "trips.txt"))
	if err != nil {
		return nil, fmt.Errorf("parse trips (required): %w", err)
	}
	feed.Trips = trips
	log.Printf("gtfs: parsed %d trips", len(trips))

	stopTimes, err := parseStopTimes(filepath.Join(tempDir, "stop_times.txt"))
	if err != nil {
		return nil, fmt.Errorf("parse stop_times (required): %w", err)
	}
	feed.StopTimes = stopTimes
	log.Printf("gtfs: parsed %d stop_times", len(stopTimes))

	return feed, nil
}

func parseStops(filePath string) ([]Stop, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseStopsFromReader(file)
}

func parseStopsFromReader(reader io.Reader) ([]Stop, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	colMap := makeColumnMap(header)

	var stops []Stop
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("gtfs: skipping malformed stop row: %v", err)
			continue
		}

		stopID := getField(record, colMap, "stop_id")
		latStr := getField(record, colMap, "stop_lat")
		lonStr := getField(record, colMap, "stop_lon")
		if stopID == "" || latStr == "" || lonStr == "" {
			log.Printf("gtfs: skipping stop with missing required fields: %s", stopID)
			continue
		}

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			log.Printf("gtfs: invalid latitude for stop %s: %v", stopID, err)
			continue
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			log.Printf("gtfs: invalid longitude for stop %s: %v", stopID, err)
			continue
		}

		stops = append(stops, Stop{
			StopID:   stopID,
			StopName: getField(record, colMap, "stop_name"),
			Lat:      lat,
			Lon:      lon,
		})
	}
	return stops, nil
}

func parseRoutes(filePath string) ([]Route, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseRoutesFromReader(file)
}

func parseRoutesFromReader(reader io.Reader) ([]Route, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	colMap := makeColumnMap(header)

	var routes []Route
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("gtfs: skipping malformed route row: %v", err)
			continue
		}

		routeID := getField(record, colMap, "route_id")
		if routeID == "" {
			continue
		}
		routes = append(routes, Route{
			RouteID:   routeID,
			ShortName: getField(record, colMap, "route_short_name"),
			LongName:  getField(record, colMap, "route_long_name"),
		})
	}
	return routes, nil
}

func parseTrips(filePath string) ([]Trip, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseTripsFromReader(file)
}

func parseTripsFromReader(reader io.Reader) ([]Trip, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	colMap := makeColumnMap(header)

	var trips []Trip
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("gtfs: skipping malformed trip row: %v", err)
			continue
		}

		tripID := getField(record, colMap, "trip_id")
		routeID := getField(record, colMap, "route_id")
		if tripID == "" || routeID == "" {
			continue
		}
		direction, err := strconv.Atoi(getField(record, colMap, "direction_id"))
		if err != nil {
			direction = 0
		}
		trips = append(trips, Trip{RouteID: routeID, TripID: tripID, DirectionID: direction})
	}
	return trips, nil
}

func parseStopTimes(filePath string) ([]StopTime, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseStopTimesFromReader(file)
}

func parseStopTimesFromReader(reader io.Reader) ([]StopTime, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	colMap := makeColumnMap(header)

	var stopTimes []StopTime
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("gtfs: skipping malformed stop_time row: %v", err)
			continue
		}

		tripID := getField(record, colMap, "trip_id")
		stopID := getField(record, colMap, "stop_id")
		seqStr := getField(record, colMap, "stop_sequence")
		if tripID == "" || stopID == "" || seqStr == "" {
			continue
		}
		sequence, err := strconv.Atoi(seqStr)
		if err != nil {
			log.Printf("gtfs: invalid sequence for trip %s: %v", tripID, err)
			continue
		}
		stopTimes = append(stopTimes, StopTime{TripID: tripID, StopID: stopID, StopSequence: sequence})
	}
	return stopTimes, nil
}

func makeColumnMap(header []string) map[string]int {
	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}
	return colMap
}

func getField(record []string, colMap map[string]int, fieldName string) string {
	if idx, ok := colMap[fieldName]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func extractZip(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return err
		}

		destPath := filepath.Join(destDir, filepath.Base(file.Name))
		outFile, err := os.Create(destPath)
		if err != nil {
			rc.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

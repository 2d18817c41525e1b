package gtfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAndCleanStops(t *testing.T) {
	tests := []struct {
		name     string
		stops    []Stop
		expected int
	}{
		{
			name: "all valid stops",
			stops: []Stop{
				{StopID: "1", Lat: 14.7, Lon: -17.4},
				{StopID: "2", Lat: 14.8, Lon: -17.5},
			},
			expected: 2,
		},
		{
			name: "filter invalid latitude",
			stops: []Stop{
				{StopID: "1", Lat: 14.7, Lon: -17.4},
				{StopID: "2", Lat: 95.0, Lon: -17.5},
			},
			expected: 1,
		},
		{
			name: "filter null island",
			stops: []Stop{
				{StopID: "1", Lat: 14.7, Lon: -17.4},
				{StopID: "2", Lat: 0.0, Lon: 0.0},
			},
			expected: 1,
		},
		{
			name: "filter invalid longitude",
			stops: []Stop{
				{StopID: "1", Lat: 14.7, Lon: -17.4},
				{StopID: "2", Lat: 14.8, Lon: 200.0},
			},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndCleanStops(tt.stops)
			assert.Equal(t, tt.expected, len(result))
		})
	}
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		expected  float64
		tolerance float64
	}{
		{
			name:      "Same point (zero distance)",
			lat1:      40.7128,
			lon1:      -74.0060,
			lat2:      40.7128,
			lon2:      -74.0060,
			expected:  0,
			tolerance: 0.001,
		},
		{
			name:      "One degree of longitude on the equator",
			lat1:      0,
			lon1:      0,
			lat2:      0,
			lon2:      1,
			expected:  111194.9,
			tolerance: 1,
		},
		{
			name:      "New York to Los Angeles",
			lat1:      40.7128,
			lon1:      -74.0060,
			lat2:      34.0522,
			lon2:      -118.2437,
			expected:  3935746,
			tolerance: 4000,
		},
		{
			name:      "Quarter of Earth's circumference",
			lat1:      0,
			lon1:      0,
			lat2:      0,
			lon2:      90,
			expected:  10007543,
			tolerance: 10000,
		},
		{
			name:      "Short hop between adjacent stops",
			lat1:      47.6097,
			lon1:      -122.3331,
			lat2:      47.6107,
			lon2:      -122.3331,
			expected:  111.2,
			tolerance: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, got, tt.tolerance)
		})
	}
}

func TestHaversineIsSymmetric(t *testing.T) {
	forward := Haversine(47.5, -122.3, 47.7, -122.2)
	backward := Haversine(47.7, -122.2, 47.5, -122.3)
	assert.InDelta(t, forward, backward, 1e-9)
}

func TestInterpolatePosition(t *testing.T) {
	lat, lon := InterpolatePosition(0, 0, 0, 1, 0.5)
	assert.InDelta(t, 0.0, lat, 1e-12)
	assert.InDelta(t, 0.5, lon, 1e-12)

	lat, lon = InterpolatePosition(10, 20, 12, 24, 0)
	assert.Equal(t, 10.0, lat)
	assert.Equal(t, 20.0, lon)

	lat, lon = InterpolatePosition(10, 20, 12, 24, 1)
	assert.Equal(t, 12.0, lat)
	assert.Equal(t, 24.0, lon)
}

func TestCalculateBounds(t *testing.T) {
	bounds := CalculateBounds(47.6, -122.33, 500)

	assert.Less(t, bounds.MinLat, 47.6)
	assert.Greater(t, bounds.MaxLat, 47.6)
	assert.Less(t, bounds.MinLon, -122.33)
	assert.Greater(t, bounds.MaxLon, -122.33)

	// A point 500 m north must still be inside the box.
	north := 47.6 + 500/RadiusOfEarthInMeters*180/3.141592653589793
	assert.LessOrEqual(t, north, bounds.MaxLat)
}

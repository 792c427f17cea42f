package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelternet/shelterbot/internal/models"
)

func TestHaversine(t *testing.T) {
	// Gangnam station to Seoul city hall, roughly 7.5km
	d := Haversine(37.4979, 127.0276, 37.5663, 126.9779)
	assert.InDelta(t, 8.8, d, 1.0)

	// Symmetry
	assert.InDelta(t,
		Haversine(37.4979, 127.0276, 35.1796, 129.0756),
		Haversine(35.1796, 129.0756, 37.4979, 127.0276),
		1e-9)

	// Same point
	assert.Equal(t, 0.0, Haversine(37.5, 127.0, 37.5, 127.0))
}

func TestCenter(t *testing.T) {
	shelters := []models.Shelter{
		{Lat: 37.0, Lon: 127.0},
		{Lat: 38.0, Lon: 128.0},
		{Lat: 0, Lon: 128.0}, // unknown location, skipped
		{Lat: 37.0, Lon: 0},  // unknown location, skipped
	}

	center := Center(shelters)
	assert.Equal(t, []float64{37.5, 127.5}, center)
}

func TestCenterNoKnownCoordinates(t *testing.T) {
	assert.Nil(t, Center(nil))
	assert.Nil(t, Center([]models.Shelter{{Lat: 0, Lon: 0}}))
}

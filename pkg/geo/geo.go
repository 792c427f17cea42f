package geo

import (
	"math"

	"github.com/shelternet/shelterbot/internal/models"
)

// earthRadiusKm is the sphere radius used for great-circle distances.
const earthRadiusKm = 6371

// Haversine returns the great-circle distance in kilometers between two
// latitude/longitude points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Center averages the coordinates of shelters with a known location.
// Returns nil when none of them have one. A coordinate pair with either
// component equal to 0 counts as unknown.
func Center(shelters []models.Shelter) []float64 {
	var latSum, lonSum float64
	var n int
	for _, s := range shelters {
		if s.Lat == 0 || s.Lon == 0 {
			continue
		}
		latSum += s.Lat
		lonSum += s.Lon
		n++
	}
	if n == 0 {
		return nil
	}
	return []float64{latSum / float64(n), lonSum / float64(n)}
}

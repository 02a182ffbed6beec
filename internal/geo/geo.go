package geo

import (
	"math"

	"fleetops/internal/domain"
)

// EarthRadiusKm is the mean radius of the Earth used for great-circle math.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle (haversine) distance in kilometers
// between two locations.
func Distance(a, b domain.Location) float64 {
	return HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// HaversineKm returns the great-circle distance in kilometers between two
// coordinate pairs.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// InCircle reports whether a point lies within radiusKm of center.
func InCircle(lat, lng float64, center domain.GeoPoint, radiusKm float64) bool {
	return HaversineKm(lat, lng, center.Lat, center.Lng) <= radiusKm
}

// InPolygon reports whether a point lies inside the polygon using ray
// casting. Points exactly on an edge may fall on either side.
func InPolygon(lat, lng float64, polygon []domain.GeoPoint) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if (pi.Lng > lng) != (pj.Lng > lng) &&
			lat < (pj.Lat-pi.Lat)*(lng-pi.Lng)/(pj.Lng-pi.Lng)+pi.Lat {
			inside = !inside
		}
		j = i
	}
	return inside
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

package domain

// LocationType classifies the role a location plays in a trip.
type LocationType string

const (
	LocationTypeDepot       LocationType = "DEPOT"
	LocationTypePickup      LocationType = "PICKUP"
	LocationTypeDelivery    LocationType = "DELIVERY"
	LocationTypeEmptyReturn LocationType = "EMPTY_RETURN"
	LocationTypeZoneAnchor  LocationType = "ZONE_ANCHOR"
)

// Location is an immutable named point on the map.
type Location struct {
	ID   string
	Name string
	Lat  float64
	Lng  float64
	Type LocationType
}

// ValidCoordinates reports whether the location's coordinates are within
// the valid latitude/longitude ranges.
func (l Location) ValidCoordinates() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

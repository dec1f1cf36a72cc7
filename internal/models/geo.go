package models

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeoResult is a resolved address, shaped like a Google geocoding result.
type GeoResult struct {
	FormattedAddress string      `json:"formatted_address"`
	Location         Coordinates `json:"location"`
}

// FallbackLocation is used whenever an address cannot be resolved.
var FallbackLocation = GeoResult{
	FormattedAddress: "Bengaluru, Karnataka, India",
	Location:         Coordinates{Lat: 12.9716, Lng: 77.5946},
}

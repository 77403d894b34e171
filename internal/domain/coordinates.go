package domain

import "math"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Euclidean distance in coordinate space. Used for clustering only, never for tour length.
func (c Coordinates) Euclidean(o Coordinates) float64 {
	return math.Hypot(c.Lon-o.Lon, c.Lat-o.Lat)
}

// Valid reports whether both components are finite and inside WGS-84 bounds.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lon) || math.IsNaN(c.Lat) || math.IsInf(c.Lon, 0) || math.IsInf(c.Lat, 0) {
		return false
	}
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}

// Centroid returns the arithmetic mean of the given points.
// The second return value is false when points is empty.
func Centroid(points []Coordinates) (Coordinates, bool) {
	if len(points) == 0 {
		return Coordinates{}, false
	}

	var sumLon, sumLat float64
	for _, p := range points {
		sumLon += p.Lon
		sumLat += p.Lat
	}

	n := float64(len(points))
	return Coordinates{Lon: sumLon / n, Lat: sumLat / n}, true
}

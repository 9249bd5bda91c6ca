package geospatial

import (
	"fmt"
	"math"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

const (
	earthRadiusMeters = 6371000.0

	// KmPerDegreeLat approximates the length of one degree of latitude.
	KmPerDegreeLat = 111.0
	// SafetyFactor widens the radius before the box is derived so that no
	// in-radius point falls outside it.
	SafetyFactor = 1.2

	// cos(90°) is not exactly zero in floating point.
	minKmPerDegreeLng = 1e-9
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// DistanceMeters is Haversine over coordinates.
func DistanceMeters(a, b domain.Coordinate) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// WithinRadius returns the distance from center to c and whether it is
// inside radiusKm.
func WithinRadius(center, c domain.Coordinate, radiusKm float64) (float64, bool) {
	d := DistanceMeters(center, c)
	return d, d <= radiusKm*1000
}

// FormatDistance renders meters as "850 m" or "2.5 km".
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int64(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", math.Round(meters/100)/10)
}

// BoundingBox returns a box around center that contains every point within
// radiusKm of it. The box is padded by SafetyFactor, so callers must still
// filter by exact distance. A box that would cross the antimeridian or a
// pole spans every longitude instead of wrapping.
func BoundingBox(center domain.Coordinate, radiusKm float64) domain.BoundingBox {
	scaled := radiusKm * SafetyFactor
	latDelta := scaled / KmPerDegreeLat
	lngDelta := longitudeDelta(center.Lat, scaled, latDelta)

	box := domain.BoundingBox{
		MinLat: center.Lat - latDelta,
		MaxLat: center.Lat + latDelta,
		MinLng: center.Lng - lngDelta,
		MaxLng: center.Lng + lngDelta,
	}
	if box.MinLng < -180 || box.MaxLng > 180 || box.MinLat < -90 || box.MaxLat > 90 {
		box.MinLng, box.MaxLng = -180, 180
	}
	return box
}

// longitudeDelta converts scaledKm to degrees of longitude at lat. Near the
// poles the cosine term collapses and latDelta is used instead.
func longitudeDelta(lat, scaledKm, latDelta float64) float64 {
	if kmPerDegreeLng := KmPerDegreeLat * math.Cos(toRad(lat)); kmPerDegreeLng > minKmPerDegreeLng {
		return scaledKm / kmPerDegreeLng
	}
	return latDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

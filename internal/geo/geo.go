// Package geo implements the spherical proximity math behind the "nearby tournaments" search.
//
// Distances are measured on a sphere with radius EarthRadiusKm. A search radius in kilometres
// is converted to an angle (radians) by dividing by that radius, and a point matches when the
// great-circle angle between it and the search centre is no larger than that angle.
package geo

import "math"

// EarthRadiusKm is the equatorial radius used to turn kilometres into radians.
const EarthRadiusKm = 6378.1

// DefaultMaxDistanceKm is the search radius used when the caller does not supply one.
const DefaultMaxDistanceKm = 50.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Radians converts a distance in kilometres into an angular distance on the sphere.
func Radians(km float64) float64 {
	return km / EarthRadiusKm
}

// AngularDistance returns the great-circle angle between a and b, in radians.
// It uses the haversine formula, which stays accurate for the small angles
// a proximity search cares about.
func AngularDistance(a, b Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := lat2 - lat1
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h a hair above 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))
	return 2 * math.Asin(math.Sqrt(h))
}

// DistanceKm returns the great-circle distance between a and b in kilometres.
func DistanceKm(a, b Point) float64 {
	return AngularDistance(a, b) * EarthRadiusKm
}

// Within reports whether p lies inside the spherical cap of the given angular
// radius around center. The boundary is inclusive; a negative radius is treated as 0,
// the same as in Bounds.
func Within(center, p Point, radians float64) bool {
	return AngularDistance(center, p) <= math.Max(radians, 0)
}

// Box is a latitude/longitude rectangle that fully contains a spherical cap.
// It is used as a cheap index-friendly prefilter before the exact Within check.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64

	// AllLongitudes is set when the cap touches a pole or crosses the antimeridian.
	// Callers must then skip the longitude bounds entirely.
	AllLongitudes bool
}

// Bounds returns the bounding box of the cap of the given angular radius around center.
func Bounds(center Point, radians float64) Box {
	if radians < 0 {
		radians = 0
	}
	dLat := toDeg(radians)
	box := Box{
		MinLat: center.Lat - dLat,
		MaxLat: center.Lat + dLat,
	}

	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		box.AllLongitudes = true
		return box
	}

	// The widest longitude span of the cap is reached at the latitude where a
	// meridian is tangent to it: asin(sin r / cos lat).
	ratio := math.Sin(radians) / math.Cos(toRad(center.Lat))
	if ratio >= 1 {
		box.AllLongitudes = true
		return box
	}
	dLng := toDeg(math.Asin(ratio))
	box.MinLng = center.Lng - dLng
	box.MaxLng = center.Lng + dLng
	if box.MinLng < -180 || box.MaxLng > 180 {
		box.AllLongitudes = true
	}
	return box
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

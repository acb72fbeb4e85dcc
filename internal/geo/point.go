// Package geo resolves where a user is: coordinate extraction from inbound
// payloads, reverse geocoding to a district/province, and great-circle distance.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether both components are finite and within range.
func (p Point) Valid() bool {
	return isFinite(p.Lat) && isFinite(p.Lng) &&
		math.Abs(p.Lat) <= 90 && math.Abs(p.Lng) <= 180
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Bounds is a lat/lng rectangle.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a rectangle containing every point within radiusKm of
// center. It over-approximates; callers still filter with Haversine.
func BoundingBox(center Point, radiusKm float64) Bounds {
	dLat := degrees(radiusKm / EarthRadiusKm)
	cosLat := math.Cos(radians(center.Lat))
	dLng := 180.0
	if cosLat > 1e-9 {
		dLng = math.Min(180, degrees(radiusKm/(EarthRadiusKm*cosLat)))
	}
	return Bounds{
		MinLat: center.Lat - dLat,
		MaxLat: center.Lat + dLat,
		MinLng: center.Lng - dLng,
		MaxLng: center.Lng + dLng,
	}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

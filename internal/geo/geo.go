// internal/geo/geo.go
//
// Great-circle distance and the round score formula.
// Everything here is pure math with no dependencies on game state.

package geo

import "math"

// earthRadiusKm is the mean sphere radius used for haversine.
const earthRadiusKm = 6371.0

// Scoring constants: a perfect guess earns MaxScore, and the score decays
// linearly to zero at ZeroScoreKm (roughly half of Earth's circumference,
// so no real-world pair of points can produce a negative score).
const (
	MaxScore    = 4000
	ZeroScoreKm = 20000.0
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the haversine distance between a and b in kilometers.
func DistanceKm(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLng := (b.Lng - a.Lng) * math.Pi / 180.0

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(a.Lat*math.Pi/180.0)*math.Cos(b.Lat*math.Pi/180.0)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// Bounds is a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// BoundsOf returns the smallest box containing all given points.
func BoundsOf(pts ...Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLat: pts[0].Lat, MaxLat: pts[0].Lat,
		MinLng: pts[0].Lng, MaxLng: pts[0].Lng,
	}
	for _, p := range pts[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b
}

// Score maps a distance in kilometers to round points:
// max(0, round(4000 * (1 - d/20000))). Non-increasing in d.
func Score(distanceKm float64) int {
	s := math.Round(float64(MaxScore) * (1 - distanceKm/ZeroScoreKm))
	if s < 0 {
		return 0
	}
	return int(s)
}

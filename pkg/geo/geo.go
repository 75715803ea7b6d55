package geo

import "math"

// EarthRadiusMeters is the mean radius of the spherical earth model.
const EarthRadiusMeters = 6371e3

// Coordinate is a WGS 84 position in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance in meters between a and b
// using the haversine formula.
func Distance(a, b Coordinate) float64 {
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// rounding can push h just outside [0, 1] for identical or antipodal points
	h = math.Max(0, math.Min(1, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// Destination returns the point reached by travelling meters from origin
// along the initial bearing (degrees clockwise from north).
func Destination(origin Coordinate, bearing, meters float64) Coordinate {
	lat1 := toRad(origin.Latitude)
	lon1 := toRad(origin.Longitude)
	theta := toRad(bearing)
	delta := meters / EarthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) +
		math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Coordinate{
		Latitude:  toDeg(lat2),
		Longitude: normalizeLongitude(toDeg(lon2)),
	}
}

// normalizeLongitude wraps lon into [-180, 180).
func normalizeLongitude(lon float64) float64 {
	return math.Mod(lon+540, 360) - 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

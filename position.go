package geodesy

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// Geographic is a geodetic position: longitude and latitude in degrees, with
// an optional ellipsoidal height in meters and an optional measure value.
// Longitude is normalized to [-180, 180) and latitude clamped to [-90, 90]
// at construction; out-of-range inputs are corrected, not rejected.
type Geographic struct {
	Lon   float64 // degrees, [-180, 180)
	Lat   float64 // degrees, [-90, 90]
	Elev  float64 // meters, meaningful when Has3D
	M     float64 // measure, meaningful when HasM
	Has3D bool
	HasM  bool
}

// NewGeographic constructs a 2D geographic position, normalizing the
// longitude and clamping the latitude.
func NewGeographic(lon, lat float64) Geographic {
	return Geographic{Lon: wrapLongitude(lon), Lat: clampLatitude(lat)}
}

// NewGeographic3D constructs a geographic position with an ellipsoidal
// height in meters.
func NewGeographic3D(lon, lat, elev float64) Geographic {
	g := NewGeographic(lon, lat)
	g.Elev = elev
	g.Has3D = true
	return g
}

// WithM returns a copy of the position carrying a measure value. Measures
// ride along through every conversion untouched.
func (g Geographic) WithM(m float64) Geographic {
	g.M = m
	g.HasM = true
	return g
}

// GeographicFromLatLng converts an s2.LatLng to a 2D geographic position.
func GeographicFromLatLng(ll s2.LatLng) Geographic {
	return NewGeographic(ll.Lng.Degrees(), ll.Lat.Degrees())
}

// LatLng returns the position as an s2.LatLng, dropping height and measure.
func (g Geographic) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(g.Lat, g.Lon)
}

// Height returns the ellipsoidal height, or 0 for a 2D position.
func (g Geographic) Height() float64 {
	if !g.Has3D {
		return 0
	}
	return g.Elev
}

func (g Geographic) String() string {
	if g.Has3D {
		return fmt.Sprintf("%.8f,%.8f,%.3f", g.Lon, g.Lat, g.Elev)
	}
	return fmt.Sprintf("%.8f,%.8f", g.Lon, g.Lat)
}

// Cartesian is a geocentric (ECEF) or projected cartesian position in
// meters, with an optional measure value.
type Cartesian struct {
	X, Y, Z float64
	M       float64
	HasM    bool
}

// WithM returns a copy of the position carrying a measure value.
func (c Cartesian) WithM(m float64) Cartesian {
	c.M = m
	c.HasM = true
	return c
}

func (c Cartesian) String() string {
	return fmt.Sprintf("%.3f,%.3f,%.3f", c.X, c.Y, c.Z)
}

func wrapLongitude(lon float64) float64 {
	if lon >= -180 && lon < 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func clampLatitude(lat float64) float64 {
	if lat < -90 {
		return -90
	}
	if lat > 90 {
		return 90
	}
	return lat
}

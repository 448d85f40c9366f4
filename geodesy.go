// Package geodesy implements conversions between geodetic reference systems
// on an ellipsoidal Earth model: reference ellipsoids and historical datums,
// 7-parameter Helmert datum transformation, geographic/geocentric (ECEF)
// conversion, the UTM projection (Karney's 6th-order Krüger series), the MGRS
// grid-reference codec and Vincenty's direct/inverse geodesic solutions.
//
// Every operation is a pure function of its inputs; all value types are
// immutable once constructed and safe for concurrent use.
package geodesy

import (
	"errors"
	"math"
)

// Error kinds reported by the package. Errors returned from conversions wrap
// one of these sentinels so callers can test with errors.Is.
var (
	// ErrRange reports a parameter outside its documented range (zone,
	// band letter, easting/northing, latitude band, precision).
	ErrRange = errors.New("parameter out of range")

	// ErrFormat reports coordinate text that could not be parsed.
	ErrFormat = errors.New("malformed coordinate text")

	// ErrNoConvergence reports an iterative solver that hit its iteration
	// ceiling before converging.
	ErrNoConvergence = errors.New("iteration failed to converge")

	// ErrDatumMismatch reports an explicit datum and an explicit ellipsoid
	// that disagree with each other.
	ErrDatumMismatch = errors.New("datum and ellipsoid disagree")
)

const degToRad = math.Pi / 180
const radToDeg = 180 / math.Pi

package geodesy

import (
	"fmt"
)

// Ellipsoid describes a reference ellipsoid by its semi-major axis a and
// semi-minor axis b in meters and its flattening f. Ellipsoids are value
// types; two ellipsoids are equal when all of their fields are equal.
type Ellipsoid struct {
	Name string
	A    float64 // semi-major axis, meters
	B    float64 // semi-minor axis, meters
	F    float64 // flattening
}

// Predefined reference ellipsoids.
var (
	WGS84         = Ellipsoid{"WGS84", 6378137, 6356752.314245, 1 / 298.257223563}
	GRS80         = Ellipsoid{"GRS80", 6378137, 6356752.314140, 1 / 298.257222101}
	Airy1830      = Ellipsoid{"Airy1830", 6377563.396, 6356256.909, 1 / 299.3249646}
	AiryModified  = Ellipsoid{"AiryModified", 6377340.189, 6356034.448, 1 / 299.3249646}
	Bessel1841    = Ellipsoid{"Bessel1841", 6377397.155, 6356078.962818, 1 / 299.1528128}
	Clarke1866    = Ellipsoid{"Clarke1866", 6378206.4, 6356583.8, 1 / 294.978698214}
	Clarke1880IGN = Ellipsoid{"Clarke1880IGN", 6378249.2, 6356515.0, 1 / 293.466021294}
	Intl1924      = Ellipsoid{"Intl1924", 6378388, 6356911.946, 1 / 297.0}
	WGS72         = Ellipsoid{"WGS72", 6378135, 6356750.5, 1 / 298.26}
)

// Ellipsoids lists the predefined ellipsoid catalog.
var Ellipsoids = []Ellipsoid{
	WGS84, GRS80, Airy1830, AiryModified, Bessel1841,
	Clarke1866, Clarke1880IGN, Intl1924, WGS72,
}

// NewEllipsoid constructs a custom ellipsoid from its semi-axes, deriving
// the flattening. The axes must satisfy a > b > 0.
func NewEllipsoid(name string, a, b float64) (Ellipsoid, error) {
	if !(a > b && b > 0) {
		return Ellipsoid{}, fmt.Errorf("%w: semi-axes must satisfy a > b > 0, got a=%g b=%g", ErrRange, a, b)
	}
	return Ellipsoid{Name: name, A: a, B: b, F: (a - b) / a}, nil
}

// E2 returns the squared first eccentricity, 2f - f².
func (e Ellipsoid) E2() float64 {
	return 2*e.F - e.F*e.F
}

// Ep2 returns the squared second eccentricity, e²/(1 - e²).
func (e Ellipsoid) Ep2() float64 {
	e2 := e.E2()
	return e2 / (1 - e2)
}

// ThirdFlattening returns n = f/(2 - f), the series expansion parameter of
// the Krüger and Vincenty formulas.
func (e Ellipsoid) ThirdFlattening() float64 {
	return e.F / (2 - e.F)
}

func (e Ellipsoid) String() string {
	return fmt.Sprintf("%s(a=%.3f b=%.3f 1/f=%.9f)", e.Name, e.A, e.B, 1/e.F)
}

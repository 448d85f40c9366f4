package geodesy

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
)

const (
	vincentyTolerance            = 1e-12
	vincentyDegenerate           = 1e-24
	vincentyInverseMaxIterations = 1000
	vincentyDirectMaxIterations  = 100
)

// Geodesic solves direct and inverse geodesic problems on an ellipsoid with
// Vincenty's iterative formulas. Distances are meters along the geodesic,
// bearings are clockwise from true north.
type Geodesic struct {
	ellipsoid Ellipsoid
}

// NewGeodesic returns a solver for the given ellipsoid.
func NewGeodesic(e Ellipsoid) *Geodesic {
	return &Geodesic{ellipsoid: e}
}

// NewGeodesicForDatum returns a solver for the datum's ellipsoid. A
// zero-valued datum means WGS84.
func NewGeodesicForDatum(d Datum) *Geodesic {
	return NewGeodesic(datumOrWGS84(d).Ellipsoid)
}

// Ellipsoid returns the ellipsoid the solver computes on.
func (g *Geodesic) Ellipsoid() Ellipsoid {
	return g.ellipsoid
}

// Arc is a solved geodesic segment. For a zero-length arc the bearings are
// NaN, since no direction is defined.
type Arc struct {
	Origin         Geographic
	Destination    Geographic
	Distance       float64 // meters
	InitialBearing s1.Angle
	FinalBearing   s1.Angle
}

// Inverse solves the inverse geodesic problem: the distance and bearings of
// the geodesic from p1 to p2. Nearly antipodal point pairs may fail to
// converge, which is reported as ErrNoConvergence.
func (g *Geodesic) Inverse(p1, p2 Geographic) (Arc, error) {
	a, b, f := g.ellipsoid.A, g.ellipsoid.B, g.ellipsoid.F

	phi1 := p1.Lat * degToRad
	phi2 := p2.Lat * degToRad
	l := (p2.Lon - p1.Lon) * degToRad

	tanU1 := (1 - f) * math.Tan(phi1)
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1
	tanU2 := (1 - f) * math.Tan(phi2)
	cosU2 := 1 / math.Sqrt(1+tanU2*tanU2)
	sinU2 := tanU2 * cosU2

	antipodal := math.Abs(l) > math.Pi/2 || math.Abs(phi2-phi1) > math.Pi/2

	lambda := l
	sigma := 0.0
	sinSqSigma := 0.0
	sinSigma := 0.0
	cosSigma := 1.0
	cos2SigmaM := 1.0
	cosSqAlpha := 1.0
	sinLambda, cosLambda := 0.0, 1.0
	if antipodal {
		sigma = math.Pi
		cosSigma = -1
		cos2SigmaM = -1
	}

	converged := false
	for i := 0; i < vincentyInverseMaxIterations; i++ {
		sinLambda, cosLambda = math.Sincos(lambda)
		sinSqSigma = (cosU2*sinLambda)*(cosU2*sinLambda) +
			(cosU1*sinU2-sinU1*cosU2*cosLambda)*(cosU1*sinU2-sinU1*cosU2*cosLambda)
		if math.Abs(sinSqSigma) < vincentyDegenerate {
			// coincident or exactly antipodal points
			converged = true
			break
		}
		sinSigma = math.Sqrt(sinSqSigma)
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			cos2SigmaM = 0 // equatorial line
		}
		c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
		prev := lambda
		lambda = l + (1-c)*f*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda) > math.Pi {
			return Arc{}, fmt.Errorf("%w: λ > π for %v to %v", ErrNoConvergence, p1, p2)
		}
		if math.Abs(lambda-prev) <= vincentyTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return Arc{}, fmt.Errorf("%w: inverse geodesic from %v to %v", ErrNoConvergence, p1, p2)
	}

	uSq := cosSqAlpha * (a*a - b*b) / (b * b)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
		(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
	dist := b * bigA * (sigma - deltaSigma)

	var alpha1, alpha2 float64
	if math.Abs(sinSqSigma) < vincentyDegenerate {
		alpha1 = 0
		alpha2 = math.Pi
	} else {
		alpha1 = math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda)
		alpha2 = math.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda)
	}

	arc := Arc{
		Origin:      p1,
		Destination: p2,
		Distance:    dist,
	}
	if dist == 0 {
		arc.InitialBearing = s1.Angle(math.NaN())
		arc.FinalBearing = s1.Angle(math.NaN())
	} else {
		arc.InitialBearing = wrap360(alpha1)
		arc.FinalBearing = wrap360(alpha2)
	}
	return arc, nil
}

// Direct solves the direct geodesic problem: the destination of travelling
// the given distance in meters from origin along the initial bearing.
func (g *Geodesic) Direct(origin Geographic, bearing s1.Angle, distance float64) (Arc, error) {
	if distance == 0 {
		return Arc{
			Origin:         origin,
			Destination:    origin,
			Distance:       0,
			InitialBearing: bearing,
			FinalBearing:   s1.Angle(math.NaN()),
		}, nil
	}
	a, b, f := g.ellipsoid.A, g.ellipsoid.B, g.ellipsoid.F

	phi1 := origin.Lat * degToRad
	sinAlpha1, cosAlpha1 := math.Sincos(float64(bearing))

	tanU1 := (1 - f) * math.Tan(phi1)
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha
	uSq := cosSqAlpha * (a*a - b*b) / (b * b)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := distance / (b * bigA)
	var sinSigma, cosSigma, cos2SigmaM float64
	converged := false
	for i := 0; i < vincentyDirectMaxIterations; i++ {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma, cosSigma = math.Sincos(sigma)
		deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
			(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
				bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
		prev := sigma
		sigma = distance/(b*bigA) + deltaSigma
		if math.Abs(sigma-prev) <= vincentyTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return Arc{}, fmt.Errorf("%w: direct geodesic from %v", ErrNoConvergence, origin)
	}

	x := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	phi2 := math.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1,
		(1-f)*math.Sqrt(sinAlpha*sinAlpha+x*x))
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
	l := lambda - (1-c)*f*sinAlpha*
		(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
	lon2 := origin.Lon + l*radToDeg
	alpha2 := math.Atan2(sinAlpha, -x)

	return Arc{
		Origin:         origin,
		Destination:    NewGeographic(lon2, phi2*radToDeg),
		Distance:       distance,
		InitialBearing: wrap360(float64(bearing)),
		FinalBearing:   wrap360(alpha2),
	}, nil
}

// Distance returns the geodesic distance in meters from p1 to p2, or NaN
// when the solution does not converge.
func (g *Geodesic) Distance(p1, p2 Geographic) float64 {
	arc, err := g.Inverse(p1, p2)
	if err != nil {
		return math.NaN()
	}
	return arc.Distance
}

// InitialBearing returns the bearing at p1 of the geodesic towards p2. It
// is NaN for coincident points and for non-converging solutions.
func (g *Geodesic) InitialBearing(p1, p2 Geographic) s1.Angle {
	arc, err := g.Inverse(p1, p2)
	if err != nil {
		return s1.Angle(math.NaN())
	}
	return arc.InitialBearing
}

// FinalBearing returns the bearing at p2 of the geodesic arriving from p1.
// It is NaN for coincident points and for non-converging solutions.
func (g *Geodesic) FinalBearing(p1, p2 Geographic) s1.Angle {
	arc, err := g.Inverse(p1, p2)
	if err != nil {
		return s1.Angle(math.NaN())
	}
	return arc.FinalBearing
}

// Destination returns the point reached by travelling the given distance in
// meters from origin along the initial bearing.
func (g *Geodesic) Destination(origin Geographic, bearing s1.Angle, distance float64) (Geographic, error) {
	arc, err := g.Direct(origin, bearing, distance)
	if err != nil {
		return Geographic{}, err
	}
	return arc.Destination, nil
}

// IntermediatePoint returns the point at the given fraction of the geodesic
// from p1 to p2, with 0 being p1 and 1 being p2.
func (g *Geodesic) IntermediatePoint(p1, p2 Geographic, fraction float64) (Geographic, error) {
	arc, err := g.Inverse(p1, p2)
	if err != nil {
		return Geographic{}, err
	}
	if arc.Distance == 0 {
		return p1, nil
	}
	return g.Destination(p1, arc.InitialBearing, arc.Distance*fraction)
}

// Midpoint returns the halfway point of the geodesic from p1 to p2.
func (g *Geodesic) Midpoint(p1, p2 Geographic) (Geographic, error) {
	return g.IntermediatePoint(p1, p2, 0.5)
}

// wrap360 normalizes an angle in radians to [0, 2π). NaN wraps to NaN.
func wrap360(rad float64) s1.Angle {
	r := math.Mod(rad, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return s1.Angle(r)
}

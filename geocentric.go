package geodesy

import (
	"math"
)

// ToGeocentric converts a geographic position to geocentric ECEF cartesian
// coordinates on the given ellipsoid, using the prime-vertical radius of
// curvature ν = a/√(1 - e²sin²φ). A missing elevation is treated as 0.
func ToGeocentric(p Geographic, e Ellipsoid) Cartesian {
	phi := p.Lat * degToRad
	lam := p.Lon * degToRad
	h := p.Height()

	sinPhi, cosPhi := math.Sincos(phi)
	sinLam, cosLam := math.Sincos(lam)

	e2 := e.E2()
	nu := e.A / math.Sqrt(1-e2*sinPhi*sinPhi)

	return Cartesian{
		X:    (nu + h) * cosPhi * cosLam,
		Y:    (nu + h) * cosPhi * sinLam,
		Z:    (nu*(1-e2) + h) * sinPhi,
		M:    p.M,
		HasM: p.HasM,
	}
}

// ToGeographic converts geocentric ECEF cartesian coordinates to a
// geographic position on the given ellipsoid using Bowring's closed-form
// method with the reduced (parametric) latitude. There is no iteration and
// no failure path; on the rotation axis, where the parametric latitude
// degenerates, the latitude comes back as 0.
func ToGeographic(c Cartesian, el Ellipsoid) Geographic {
	a, b := el.A, el.B
	e2 := el.E2()
	ep2 := el.Ep2()

	p := math.Hypot(c.X, c.Y) // distance from minor axis
	r := math.Hypot(p, c.Z)   // polar radius

	// parametric latitude β = atan(b·z/(a·p) · (1 + ε²·b/R))
	tanBeta := (b * c.Z) / (a * p) * (1 + ep2*b/r)
	sinBeta := tanBeta / math.Sqrt(1+tanBeta*tanBeta)
	cosBeta := sinBeta / tanBeta

	var phi float64
	if !math.IsNaN(cosBeta) {
		phi = math.Atan2(c.Z+ep2*b*sinBeta*sinBeta*sinBeta,
			p-e2*a*cosBeta*cosBeta*cosBeta)
	}
	lam := math.Atan2(c.Y, c.X)

	// ellipsoidal height from the geodetic latitude
	sinPhi, cosPhi := math.Sincos(phi)
	nu := a / math.Sqrt(1-e2*sinPhi*sinPhi)
	h := p*cosPhi + c.Z*sinPhi - a*a/nu

	out := NewGeographic3D(lam*radToDeg, phi*radToDeg, h)
	out.M = c.M
	out.HasM = c.HasM
	return out
}

package geodesy

import (
	"math"
)

// HelmertTransform holds the seven parameters of a Helmert similarity
// transform relative to WGS84: translations in meters, scale in parts per
// million and rotations in arcseconds. The transform converts WGS84
// geocentric coordinates into the datum's frame.
type HelmertTransform struct {
	TX, TY, TZ float64 // meters
	S          float64 // ppm
	RX, RY, RZ float64 // arcseconds
}

// Inverse returns the reverse transform (all seven parameters negated).
func (t HelmertTransform) Inverse() HelmertTransform {
	return HelmertTransform{-t.TX, -t.TY, -t.TZ, -t.S, -t.RX, -t.RY, -t.RZ}
}

// apply performs the small-angle Helmert transform. The measure value is
// copied through unchanged.
func (t HelmertTransform) apply(p Cartesian) Cartesian {
	const arcsecToRad = math.Pi / (180 * 3600)
	sc := 1 + t.S*1e-6
	rx := t.RX * arcsecToRad
	ry := t.RY * arcsecToRad
	rz := t.RZ * arcsecToRad
	return Cartesian{
		X:    t.TX + p.X*sc - p.Y*rz + p.Z*ry,
		Y:    t.TY + p.X*rz + p.Y*sc - p.Z*rx,
		Z:    t.TZ - p.X*ry + p.Y*rx + p.Z*sc,
		M:    p.M,
		HasM: p.HasM,
	}
}

// Datum pairs a reference ellipsoid with a Helmert transform anchoring it
// to WGS84. Datums are value types with structural equality.
type Datum struct {
	Name      string
	Ellipsoid Ellipsoid
	Transform HelmertTransform
}

// Predefined datums. Transform parameters are relative to WGS84; WGS84
// itself (and the datums coincident with it at this accuracy) carries the
// null transform.
var (
	DatumWGS84      = Datum{"WGS84", WGS84, HelmertTransform{}}
	DatumED50       = Datum{"ED50", Intl1924, HelmertTransform{89.5, 93.8, 123.1, -1.2, 0, 0, 0.156}}
	DatumETRS89     = Datum{"ETRS89", GRS80, HelmertTransform{}}
	DatumIrl1975    = Datum{"Irl1975", AiryModified, HelmertTransform{-482.530, 130.596, -564.557, -8.150, 1.042, 0.214, 0.631}}
	DatumNAD27      = Datum{"NAD27", Clarke1866, HelmertTransform{8, -160, -176, 0, 0, 0, 0}}
	DatumNAD83      = Datum{"NAD83", GRS80, HelmertTransform{0.9956, -1.9103, -0.5215, -0.00062, 0.025915, 0.009426, 0.011599}}
	DatumNTF        = Datum{"NTF", Clarke1880IGN, HelmertTransform{168, 60, -320, 0, 0, 0, 0}}
	DatumOSGB36     = Datum{"OSGB36", Airy1830, HelmertTransform{-446.448, 125.157, -542.060, 20.4894, -0.1502, -0.2470, -0.8421}}
	DatumPotsdam    = Datum{"Potsdam", Bessel1841, HelmertTransform{-582, -105, -414, -8.3, 1.04, 0.35, -3.08}}
	DatumTokyoJapan = Datum{"TokyoJapan", Bessel1841, HelmertTransform{148, -507, -685, 0, 0, 0, 0}}
	DatumWGS72      = Datum{"WGS72", WGS72, HelmertTransform{0, 0, -4.5, -0.22, 0, 0, 0.554}}
)

// Datums lists the predefined datum catalog.
var Datums = []Datum{
	DatumWGS84, DatumED50, DatumETRS89, DatumIrl1975, DatumNAD27, DatumNAD83,
	DatumNTF, DatumOSGB36, DatumPotsdam, DatumTokyoJapan, DatumWGS72,
}

func (d Datum) String() string {
	return d.Name
}

// ConvertGeocentric converts a geocentric cartesian position between datums.
// WGS84 is the mandatory pivot: cross-datum conversions go through it, since
// no direct datum-to-datum parameter sets are stored. Identical datums are
// an identity fast path.
func ConvertGeocentric(p Cartesian, from, to Datum) Cartesian {
	switch {
	case from == to:
		return p
	case from == DatumWGS84:
		return to.Transform.apply(p)
	case to == DatumWGS84:
		return from.Transform.Inverse().apply(p)
	}
	return to.Transform.apply(from.Transform.Inverse().apply(p))
}

// ConvertGeographic converts a geographic position between datums by
// composing the geocentric conversion with a Helmert transform. A 2D input
// yields a 2D output: the intermediate geocentric step produces a height on
// the target ellipsoid, but it is dropped when the input carried none.
func ConvertGeographic(p Geographic, from, to Datum) Geographic {
	if from == to {
		return p
	}
	c := ToGeocentric(p, from.Ellipsoid)
	c = ConvertGeocentric(c, from, to)
	out := ToGeographic(c, to.Ellipsoid)
	if !p.Has3D {
		out.Elev = 0
		out.Has3D = false
	}
	out.M = p.M
	out.HasM = p.HasM
	return out
}

// ConvertGeographicSlice converts every position in ps from one datum to
// another. Elements are independent, so callers may equally partition large
// buffers across goroutines and call this per chunk.
func ConvertGeographicSlice(ps []Geographic, from, to Datum) []Geographic {
	out := make([]Geographic, len(ps))
	for i, p := range ps {
		out[i] = ConvertGeographic(p, from, to)
	}
	return out
}

// datumOrWGS84 substitutes WGS84 for a zero-valued datum so that coordinate
// values constructed without an explicit datum behave sensibly.
func datumOrWGS84(d Datum) Datum {
	if d == (Datum{}) {
		return DatumWGS84
	}
	return d
}

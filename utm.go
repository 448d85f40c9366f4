package geodesy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Hemisphere designates the northern or southern half of the UTM grid.
type Hemisphere byte

const (
	HemisphereNorth Hemisphere = 'N'
	HemisphereSouth Hemisphere = 'S'
)

func (h Hemisphere) String() string {
	return string(rune(h))
}

const utmScaleFactor = 0.9996 // k₀, scale on the central meridian
const utmFalseEasting = 500000.0
const utmFalseNorthing = 10000000.0

const utmMinLat = -80.0
const utmMaxLat = 84.0

// Normal easting/northing ranges of in-zone UTM coordinates. Zone overrides
// can push coordinates outside these; VerifyEastingNorthing catches that.
const utmMaxEasting = 1000000.0
const utmMaxNorthingN = 9329006.0
const utmMinNorthingS = 1116914.0

// UTMCoord is a UTM coordinate: grid zone, hemisphere and easting/northing
// in meters, with optional elevation and measure carried alongside.
type UTMCoord struct {
	Zone       int // 1..60
	Hemisphere Hemisphere
	Easting    float64 // meters
	Northing   float64 // meters
	Elev       float64 // meters, meaningful when Has3D
	M          float64 // measure, meaningful when HasM
	Has3D      bool
	HasM       bool
	Datum      Datum
}

// Validate checks the coordinate against the normal in-zone ranges:
// easting in [0, 1000000], northing in [0, 9329006) for the northern
// hemisphere or (1116914, 10000000] for the southern.
func (c UTMCoord) Validate() error {
	if c.Zone < 1 || c.Zone > 60 {
		return fmt.Errorf("%w: zone %d outside [1,60]", ErrRange, c.Zone)
	}
	if c.Hemisphere != HemisphereNorth && c.Hemisphere != HemisphereSouth {
		return fmt.Errorf("%w: hemisphere %q", ErrRange, string(rune(c.Hemisphere)))
	}
	if c.Easting < 0 || c.Easting > utmMaxEasting {
		return fmt.Errorf("%w: easting %.3f outside [0,%d]", ErrRange, c.Easting, int(utmMaxEasting))
	}
	switch c.Hemisphere {
	case HemisphereNorth:
		if c.Northing < 0 || c.Northing >= utmMaxNorthingN {
			return fmt.Errorf("%w: northing %.3f outside [0,%d) for hemisphere N", ErrRange, c.Northing, int(utmMaxNorthingN))
		}
	case HemisphereSouth:
		if c.Northing <= utmMinNorthingS || c.Northing > utmFalseNorthing {
			return fmt.Errorf("%w: northing %.3f outside (%d,%d] for hemisphere S", ErrRange, c.Northing, int(utmMinNorthingS), int(utmFalseNorthing))
		}
	}
	return nil
}

// String formats the coordinate as "zone hemisphere easting northing", with
// the elevation and measure appended when present.
func (c UTMCoord) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %c %.3f %.3f", c.Zone, c.Hemisphere, c.Easting, c.Northing)
	if c.Has3D {
		fmt.Fprintf(&b, " %.3f", c.Elev)
	}
	if c.HasM {
		fmt.Fprintf(&b, " %g", c.M)
	}
	return b.String()
}

// ParseUTM parses a coordinate of the form
// "zone hemisphere easting northing [elev] [m]", e.g.
// "31 N 448251.795 5411932.678". The datum is attached to the result.
func ParseUTM(s string, d Datum) (UTMCoord, error) {
	fields := strings.Fields(s)
	if len(fields) < 4 || len(fields) > 6 {
		return UTMCoord{}, fmt.Errorf("%w: %q is not a UTM coordinate", ErrFormat, s)
	}
	zone, err := strconv.Atoi(fields[0])
	if err != nil {
		return UTMCoord{}, fmt.Errorf("%w: bad zone %q", ErrFormat, fields[0])
	}
	var hemi Hemisphere
	switch strings.ToUpper(fields[1]) {
	case "N":
		hemi = HemisphereNorth
	case "S":
		hemi = HemisphereSouth
	default:
		return UTMCoord{}, fmt.Errorf("%w: bad hemisphere %q", ErrFormat, fields[1])
	}
	easting, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return UTMCoord{}, fmt.Errorf("%w: bad easting %q", ErrFormat, fields[2])
	}
	northing, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return UTMCoord{}, fmt.Errorf("%w: bad northing %q", ErrFormat, fields[3])
	}
	c := UTMCoord{
		Zone:       zone,
		Hemisphere: hemi,
		Easting:    easting,
		Northing:   northing,
		Datum:      datumOrWGS84(d),
	}
	if len(fields) >= 5 {
		elev, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return UTMCoord{}, fmt.Errorf("%w: bad elevation %q", ErrFormat, fields[4])
		}
		c.Elev = elev
		c.Has3D = true
	}
	if len(fields) == 6 {
		m, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return UTMCoord{}, fmt.Errorf("%w: bad measure %q", ErrFormat, fields[5])
		}
		c.M = m
		c.HasM = true
	}
	if err := c.Validate(); err != nil {
		return UTMCoord{}, err
	}
	return c, nil
}

// PointScale is per-point projection metadata: the meridian convergence
// (grid north minus true north) and the grid scale factor.
type PointScale struct {
	Convergence s1.Angle
	Scale       float64
}

// UTMConverter projects geographic positions to and from the Universal
// Transverse Mercator grid using Karney's 6th-order Krüger series. A
// converter is immutable once constructed and safe for concurrent use.
type UTMConverter struct {
	datum        Datum
	zoneOverride int  // 0 = resolve the zone from the longitude
	roundNano    bool // round projected output to nanometer precision
	verifyEN     bool // re-check projected easting/northing ranges

	ellipsoidOpt Ellipsoid // set via WithEllipsoid, checked against datum
	ellipsoidSet bool

	// series constants derived from the ellipsoid
	e     float64    // eccentricity
	a     float64    // 2πA is the circumference of a meridian
	alpha [7]float64 // α₁..α₆, index 0 unused
	beta  [7]float64 // β₁..β₆, index 0 unused
}

// UTMOption configures a UTMConverter.
type UTMOption func(*UTMConverter) error

// WithZoneOverride fixes the projection zone instead of resolving it from
// the longitude. Combine with VerifyEastingNorthing to reject positions too
// far outside the overridden zone.
func WithZoneOverride(zone int) UTMOption {
	return func(u *UTMConverter) error {
		if zone < 1 || zone > 60 {
			return fmt.Errorf("%w: zone override %d outside [1,60]", ErrRange, zone)
		}
		u.zoneOverride = zone
		return nil
	}
}

// WithNanometerRounding rounds projected eastings and northings to 1e-9 m
// to shed floating-point noise from the series evaluation.
func WithNanometerRounding() UTMOption {
	return func(u *UTMConverter) error {
		u.roundNano = true
		return nil
	}
}

// VerifyEastingNorthing re-checks projected coordinates against the normal
// in-zone ranges. Natural projections always pass; the check exists to
// catch zone-override misuse.
func VerifyEastingNorthing() UTMOption {
	return func(u *UTMConverter) error {
		u.verifyEN = true
		return nil
	}
}

// WithEllipsoid declares the ellipsoid the caller expects the converter to
// run on. It must agree with the datum's ellipsoid; the option exists so
// that a mismatch is caught at construction rather than producing silently
// shifted coordinates.
func WithEllipsoid(e Ellipsoid) UTMOption {
	return func(u *UTMConverter) error {
		u.ellipsoidOpt = e
		u.ellipsoidSet = true
		return nil
	}
}

// NewUTMConverter constructs a converter for the given datum, precomputing
// the Krüger series coefficients for its ellipsoid.
func NewUTMConverter(d Datum, opts ...UTMOption) (*UTMConverter, error) {
	u := &UTMConverter{datum: datumOrWGS84(d)}
	for _, opt := range opts {
		if err := opt(u); err != nil {
			return nil, err
		}
	}
	if u.ellipsoidSet && u.ellipsoidOpt != u.datum.Ellipsoid {
		return nil, fmt.Errorf("%w: ellipsoid %s does not match datum %s (%s)",
			ErrDatumMismatch, u.ellipsoidOpt.Name, u.datum.Name, u.datum.Ellipsoid.Name)
	}

	el := u.datum.Ellipsoid
	f := el.F
	n := el.ThirdFlattening()
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n
	n5 := n4 * n
	n6 := n5 * n

	u.e = math.Sqrt(2*f - f*f)
	u.a = el.A / (1 + n) * (1 + n2/4 + n4/64 + n6/256)

	// Karney 2011, closed-form 6th-order coefficients in the third
	// flattening.
	u.alpha = [7]float64{0,
		n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180 - 127*n5/288 + 7891*n6/37800,
		13*n2/48 - 3*n3/5 + 557*n4/1440 + 281*n5/630 - 1983433*n6/1935360,
		61*n3/240 - 103*n4/140 + 15061*n5/26880 + 167603*n6/181440,
		49561*n4/161280 - 179*n5/168 + 6601661*n6/7257600,
		34729*n5/80640 - 3418889*n6/1995840,
		212378941 * n6 / 319334400,
	}
	u.beta = [7]float64{0,
		n/2 - 2*n2/3 + 37*n3/96 - n4/360 - 81*n5/512 + 96199*n6/604800,
		n2/48 + n3/15 - 437*n4/1440 + 46*n5/105 - 1118711*n6/3870720,
		17*n3/480 - 37*n4/840 - 209*n5/4480 + 5569*n6/90720,
		4397*n4/161280 - 11*n5/504 - 830251*n6/7257600,
		4583*n5/161280 - 108847*n6/3991680,
		20648693 * n6 / 638668800,
	}
	return u, nil
}

// Datum returns the datum the converter projects on.
func (u *UTMConverter) Datum() Datum {
	return u.datum
}

// centralMeridian returns the central meridian of a zone in radians.
func centralMeridian(zone int) float64 {
	return float64((zone-1)*6-180+3) * degToRad
}

// resolveZone computes the grid zone for a position, applying the
// Norway/Svalbard boundary exceptions. These are fixed historical shifts,
// so they stay explicit conditionals.
func resolveZone(lon, lat float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	band := latitudeBand(lat)
	switch {
	case zone == 31 && band == 'V' && lon >= 3:
		zone++ // southwest Norway: zone 32 widens over 3°E..12°E
	case zone == 32 && band == 'X':
		if lon < 9 { // Svalbard: zones 32, 34 and 36 do not exist in band X
			zone--
		} else {
			zone++
		}
	case zone == 34 && band == 'X':
		if lon < 21 {
			zone--
		} else {
			zone++
		}
	case zone == 36 && band == 'X':
		if lon < 33 {
			zone--
		} else {
			zone++
		}
	}
	return zone
}

// ConvertFromGeographic projects a geographic position to UTM, returning
// the coordinate along with the meridian convergence and grid scale factor
// at the point.
func (u *UTMConverter) ConvertFromGeographic(p Geographic) (UTMCoord, PointScale, error) {
	if p.Lat < utmMinLat || p.Lat > utmMaxLat {
		return UTMCoord{}, PointScale{}, fmt.Errorf("%w: latitude %.4f outside UTM range [%g,%g]",
			ErrRange, p.Lat, utmMinLat, utmMaxLat)
	}

	zone := u.zoneOverride
	if zone == 0 {
		zone = resolveZone(p.Lon, p.Lat)
	}
	lam0 := centralMeridian(zone)

	phi := p.Lat * degToRad
	lam := p.Lon*degToRad - lam0

	e := u.e
	sinLam, cosLam := math.Sincos(lam)

	// conformal latitude via τ' = τ·√(1+σ²) - σ·√(1+τ²)
	tau := math.Tan(phi)
	sigma := math.Sinh(e * math.Atanh(e*tau/math.Sqrt(1+tau*tau)))
	taup := tau*math.Sqrt(1+sigma*sigma) - sigma*math.Sqrt(1+tau*tau)

	xip := math.Atan2(taup, cosLam)
	etap := math.Asinh(sinLam / math.Sqrt(taup*taup+cosLam*cosLam))

	xi, eta := xip, etap
	for j := 1; j <= 6; j++ {
		xi += u.alpha[j] * math.Sin(2*float64(j)*xip) * math.Cosh(2*float64(j)*etap)
		eta += u.alpha[j] * math.Cos(2*float64(j)*xip) * math.Sinh(2*float64(j)*etap)
	}

	x := utmScaleFactor * u.a * eta
	y := utmScaleFactor * u.a * xi

	// convergence and scale
	pp, qq := 1.0, 0.0
	for j := 1; j <= 6; j++ {
		pp += 2 * float64(j) * u.alpha[j] * math.Cos(2*float64(j)*xip) * math.Cosh(2*float64(j)*etap)
		qq += 2 * float64(j) * u.alpha[j] * math.Sin(2*float64(j)*xip) * math.Sinh(2*float64(j)*etap)
	}
	gamma := math.Atan(taup/math.Sqrt(1+taup*taup)*math.Tan(lam)) + math.Atan2(qq, pp)
	sinPhi := math.Sin(phi)
	k := utmScaleFactor *
		math.Sqrt(1-e*e*sinPhi*sinPhi) * math.Sqrt(1+tau*tau) / math.Sqrt(taup*taup+cosLam*cosLam) *
		(u.a / u.datum.Ellipsoid.A) * math.Hypot(pp, qq)

	x += utmFalseEasting
	hemi := HemisphereNorth
	if p.Lat < 0 {
		hemi = HemisphereSouth
	}
	if y < 0 {
		y += utmFalseNorthing
	}

	if u.roundNano {
		x = math.Round(x*1e9) / 1e9
		y = math.Round(y*1e9) / 1e9
	}

	c := UTMCoord{
		Zone:       zone,
		Hemisphere: hemi,
		Easting:    x,
		Northing:   y,
		Elev:       p.Elev,
		M:          p.M,
		Has3D:      p.Has3D,
		HasM:       p.HasM,
		Datum:      u.datum,
	}
	if u.verifyEN {
		if err := c.Validate(); err != nil {
			return UTMCoord{}, PointScale{}, err
		}
	}
	return c, PointScale{Convergence: s1.Angle(gamma), Scale: k}, nil
}

// ConvertFromGeodetic projects an s2.LatLng to UTM.
func (u *UTMConverter) ConvertFromGeodetic(ll s2.LatLng) (UTMCoord, PointScale, error) {
	return u.ConvertFromGeographic(GeographicFromLatLng(ll))
}

const utmInverseMaxIterations = 15
const utmInverseTolerance = 1e-12

// ConvertToGeographic unprojects a UTM coordinate back to a geographic
// position, returning the convergence and scale at the point. Coordinates
// far outside the valid projection radius degrade in accuracy but do not
// fail; only the fixed-point latitude recovery hitting its iteration
// ceiling is reported as an error.
func (u *UTMConverter) ConvertToGeographic(c UTMCoord) (Geographic, PointScale, error) {
	if c.Zone < 1 || c.Zone > 60 {
		return Geographic{}, PointScale{}, fmt.Errorf("%w: zone %d outside [1,60]", ErrRange, c.Zone)
	}
	if c.Hemisphere != HemisphereNorth && c.Hemisphere != HemisphereSouth {
		return Geographic{}, PointScale{}, fmt.Errorf("%w: hemisphere %q", ErrRange, string(rune(c.Hemisphere)))
	}
	if c.Datum != (Datum{}) && c.Datum != u.datum {
		return Geographic{}, PointScale{}, fmt.Errorf("%w: coordinate datum %s, converter datum %s",
			ErrDatumMismatch, c.Datum.Name, u.datum.Name)
	}
	if u.verifyEN {
		if err := c.Validate(); err != nil {
			return Geographic{}, PointScale{}, err
		}
	}

	x := c.Easting - utmFalseEasting
	y := c.Northing
	if c.Hemisphere == HemisphereSouth {
		y -= utmFalseNorthing
	}

	e := u.e
	xi := y / (utmScaleFactor * u.a)
	eta := x / (utmScaleFactor * u.a)

	xip, etap := xi, eta
	for j := 1; j <= 6; j++ {
		xip -= u.beta[j] * math.Sin(2*float64(j)*xi) * math.Cosh(2*float64(j)*eta)
		etap -= u.beta[j] * math.Cos(2*float64(j)*xi) * math.Sinh(2*float64(j)*eta)
	}

	sinhEtap := math.Sinh(etap)
	sinXip, cosXip := math.Sincos(xip)
	taup := sinXip / math.Sqrt(sinhEtap*sinhEtap+cosXip*cosXip)

	// invert the conformal latitude relation by fixed point on τ
	tau := taup
	for i := 0; ; i++ {
		if i >= utmInverseMaxIterations {
			return Geographic{}, PointScale{}, fmt.Errorf("%w: conformal latitude inversion", ErrNoConvergence)
		}
		sigma := math.Sinh(e * math.Atanh(e*tau/math.Sqrt(1+tau*tau)))
		taui := tau*math.Sqrt(1+sigma*sigma) - sigma*math.Sqrt(1+tau*tau)
		dtau := (taup - taui) / math.Sqrt(1+taui*taui) *
			(1 + (1-e*e)*tau*tau) / ((1 - e*e) * math.Sqrt(1+tau*tau))
		tau += dtau
		if math.Abs(dtau) < utmInverseTolerance {
			break
		}
	}

	phi := math.Atan(tau)
	lam := math.Atan2(sinhEtap, cosXip)

	pp, qq := 1.0, 0.0
	for j := 1; j <= 6; j++ {
		pp -= 2 * float64(j) * u.beta[j] * math.Cos(2*float64(j)*xi) * math.Cosh(2*float64(j)*eta)
		qq += 2 * float64(j) * u.beta[j] * math.Sin(2*float64(j)*xi) * math.Sinh(2*float64(j)*eta)
	}
	gamma := math.Atan(math.Tan(xip)*math.Tanh(etap)) + math.Atan2(qq, pp)
	sinPhi := math.Sin(phi)
	k := utmScaleFactor *
		math.Sqrt(1-e*e*sinPhi*sinPhi) * math.Sqrt(1+tau*tau) * math.Hypot(sinhEtap, cosXip) *
		(u.a / u.datum.Ellipsoid.A) / math.Hypot(pp, qq)

	lon := (lam + centralMeridian(c.Zone)) * radToDeg
	out := NewGeographic(lon, phi*radToDeg)
	out.Elev = c.Elev
	out.Has3D = c.Has3D
	out.M = c.M
	out.HasM = c.HasM
	return out, PointScale{Convergence: s1.Angle(gamma), Scale: k}, nil
}

// ConvertToGeodetic unprojects a UTM coordinate to an s2.LatLng.
func (u *UTMConverter) ConvertToGeodetic(c UTMCoord) (s2.LatLng, error) {
	g, _, err := u.ConvertToGeographic(c)
	if err != nil {
		return s2.LatLng{}, err
	}
	return g.LatLng(), nil
}

// latBandLetters is the MGRS latitude band progression, 8° per band from
// 80°S; I and O are omitted and X is repeated to cover 80..84°N.
const latBandLetters = "CDEFGHJKLMNPQRSTUVWXX"

// latitudeBand returns the band letter for a latitude, clamped at the
// polar edges.
func latitudeBand(lat float64) byte {
	i := int(math.Floor(lat/8)) + 10
	if i < 0 {
		i = 0
	}
	if i >= len(latBandLetters) {
		i = len(latBandLetters) - 1
	}
	return latBandLetters[i]
}

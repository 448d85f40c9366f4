package geodesy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 100 km grid square letter cycles. Column letters repeat every three
// zones, row letters every two; I and O are omitted throughout.
var e100kLetters = [3]string{"ABCDEFGH", "JKLMNPQR", "STUVWXYZ"}
var n100kLetters = [2]string{"ABCDEFGHJKLMNPQRSTUV", "FGHJKLMNPQRSTUVABCDE"}

// GridZone identifies a UTM zone and MGRS latitude band.
type GridZone struct {
	Zone int  // 1..60
	Band byte // C..X omitting I and O
}

// Validate checks the zone number and band letter.
func (z GridZone) Validate() error {
	if z.Zone < 1 || z.Zone > 60 {
		return fmt.Errorf("%w: zone %d outside [1,60]", ErrRange, z.Zone)
	}
	if strings.IndexByte(latBandLetters, z.Band) < 0 {
		return fmt.Errorf("%w: invalid latitude band %q", ErrRange, string(rune(z.Band)))
	}
	return nil
}

// GridSquare identifies a 100 km grid square within a grid zone.
type GridSquare struct {
	GridZone
	Column byte
	Row    byte
}

// Validate checks the zone, band and that the column and row letters belong
// to the zone's letter cycles.
func (s GridSquare) Validate() error {
	if err := s.GridZone.Validate(); err != nil {
		return err
	}
	if strings.IndexByte(e100kLetters[(s.Zone-1)%3], s.Column) < 0 {
		return fmt.Errorf("%w: column letter %q invalid for zone %d", ErrRange, string(rune(s.Column)), s.Zone)
	}
	if strings.IndexByte(n100kLetters[(s.Zone-1)%2], s.Row) < 0 {
		return fmt.Errorf("%w: row letter %q invalid for zone %d", ErrRange, string(rune(s.Row)), s.Zone)
	}
	return nil
}

// MGRSRef is a Military Grid Reference System reference: a 100 km grid
// square plus meter offsets within it. A reference denotes a square, not a
// point; the square's size is implied by the digit precision used when the
// reference is formatted, and is not stored with the value.
type MGRSRef struct {
	Square   GridSquare
	Easting  int // meters within the square, [0, 99999]
	Northing int // meters within the square, [0, 99999]
	Datum    Datum
}

// Validate checks the grid square and the in-square offsets.
func (r MGRSRef) Validate() error {
	if err := r.Square.Validate(); err != nil {
		return err
	}
	if r.Easting < 0 || r.Easting > 99999 {
		return fmt.Errorf("%w: easting %d outside [0,99999]", ErrRange, r.Easting)
	}
	if r.Northing < 0 || r.Northing > 99999 {
		return fmt.Errorf("%w: northing %d outside [0,99999]", ErrRange, r.Northing)
	}
	return nil
}

// MGRSFromUTM encodes a UTM coordinate as an MGRS reference. The latitude
// band is derived by unprojecting the coordinate; the in-square offsets are
// truncated, never rounded.
func MGRSFromUTM(c UTMCoord) (MGRSRef, error) {
	col := int(c.Easting / 100000)
	if col < 1 || col > 8 {
		return MGRSRef{}, fmt.Errorf("%w: easting %.3f outside the 100km square columns", ErrRange, c.Easting)
	}
	if c.Northing < 0 || c.Northing > utmFalseNorthing {
		return MGRSRef{}, fmt.Errorf("%w: northing %.3f outside the 100km square rows", ErrRange, c.Northing)
	}
	row := int(c.Northing/100000) % 20

	d := datumOrWGS84(c.Datum)
	conv, err := NewUTMConverter(d)
	if err != nil {
		return MGRSRef{}, err
	}
	g, _, err := conv.ConvertToGeographic(c)
	if err != nil {
		return MGRSRef{}, err
	}

	sq := GridSquare{
		GridZone: GridZone{Zone: c.Zone, Band: latitudeBand(g.Lat)},
		Column:   e100kLetters[(c.Zone-1)%3][col-1],
		Row:      n100kLetters[(c.Zone-1)%2][row],
	}
	return MGRSRef{
		Square:   sq,
		Easting:  int(math.Mod(c.Easting, 100000)),
		Northing: int(math.Mod(c.Northing, 100000)),
		Datum:    d,
	}, nil
}

// MGRSFromGeographic encodes a geographic position on the given datum.
func MGRSFromGeographic(p Geographic, d Datum) (MGRSRef, error) {
	conv, err := NewUTMConverter(d)
	if err != nil {
		return MGRSRef{}, err
	}
	c, _, err := conv.ConvertFromGeographic(p)
	if err != nil {
		return MGRSRef{}, err
	}
	return MGRSFromUTM(c)
}

// ToUTM resolves the reference to the UTM coordinate of the southwest
// corner of the square it denotes. The 2000 km row-letter ambiguity is
// resolved against a reference northing projected at the southern edge of
// the latitude band.
func (r MGRSRef) ToUTM() (UTMCoord, error) {
	if err := r.Validate(); err != nil {
		return UTMCoord{}, err
	}
	z := r.Square.Zone
	hemi := HemisphereSouth
	if r.Square.Band >= 'N' {
		hemi = HemisphereNorth
	}

	col := strings.IndexByte(e100kLetters[(z-1)%3], r.Square.Column)
	e100k := float64(col+1) * 100000
	row := strings.IndexByte(n100kLetters[(z-1)%2], r.Square.Row)
	n100k := float64(row) * 100000

	// northing of the bottom of the latitude band, floored to the 100 km
	// square containing it
	bandLat := float64(strings.IndexByte(latBandLetters, r.Square.Band)-10) * 8
	d := datumOrWGS84(r.Datum)
	conv, err := NewUTMConverter(d, WithZoneOverride(z))
	if err != nil {
		return UTMCoord{}, err
	}
	ref := NewGeographic(centralMeridian(z)*radToDeg, bandLat)
	refUTM, _, err := conv.ConvertFromGeographic(ref)
	if err != nil {
		return UTMCoord{}, err
	}
	nBand := math.Floor(refUTM.Northing/100000) * 100000

	// row letters repeat every 2000 km; climb in blocks until the northing
	// reaches the band
	n2M := 0.0
	for n2M+n100k+float64(r.Northing) < nBand {
		n2M += 2000000
	}

	return UTMCoord{
		Zone:       z,
		Hemisphere: hemi,
		Easting:    e100k + float64(r.Easting),
		Northing:   n2M + n100k + float64(r.Northing),
		Datum:      d,
	}, nil
}

// ToGeographic resolves the reference to the geographic position of the
// southwest corner of the square it denotes.
func (r MGRSRef) ToGeographic() (Geographic, error) {
	c, err := r.ToUTM()
	if err != nil {
		return Geographic{}, err
	}
	conv, err := NewUTMConverter(c.Datum)
	if err != nil {
		return Geographic{}, err
	}
	g, _, err := conv.ConvertToGeographic(c)
	return g, err
}

// Format renders the reference in the space-separated form with the given
// total digit count (2, 4, 6, 8 or 10), truncating the offsets to the
// implied square size.
func (r MGRSRef) Format(digits int) (string, error) {
	if digits < 2 || digits > 10 || digits%2 != 0 {
		return "", fmt.Errorf("%w: digit count %d not one of 2,4,6,8,10", ErrRange, digits)
	}
	if err := r.Validate(); err != nil {
		return "", err
	}
	n := digits / 2
	div := pow10(5 - n)
	return fmt.Sprintf("%02d%c %c%c %0*d %0*d",
		r.Square.Zone, r.Square.Band, r.Square.Column, r.Square.Row,
		n, r.Easting/div, n, r.Northing/div), nil
}

// FormatCompact renders the reference in the unseparated military form.
func (r MGRSRef) FormatCompact(digits int) (string, error) {
	s, err := r.Format(digits)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(s, " ", ""), nil
}

// String renders the reference at full (1 m) precision.
func (r MGRSRef) String() string {
	s, err := r.Format(10)
	if err != nil {
		return fmt.Sprintf("invalid MGRS reference (%s)", err)
	}
	return s
}

// ParseMGRS parses a grid reference in either the space-separated form
// ("31U DQ 48251 11932") or the unseparated military form
// ("31UDQ4825111932"), detected by the presence of whitespace. The datum is
// attached to the result.
func ParseMGRS(s string, d Datum) (MGRSRef, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return MGRSRef{}, fmt.Errorf("%w: empty MGRS reference", ErrFormat)
	}
	var (
		r   MGRSRef
		err error
	)
	if strings.ContainsAny(t, " \t") {
		r, err = parseMGRSSeparated(t)
	} else {
		r, err = parseMGRSCompact(t)
	}
	if err != nil {
		return MGRSRef{}, err
	}
	r.Datum = datumOrWGS84(d)
	if err := r.Validate(); err != nil {
		return MGRSRef{}, err
	}
	return r, nil
}

func parseMGRSSeparated(t string) (MGRSRef, error) {
	fields := strings.Fields(t)
	if len(fields) != 4 {
		return MGRSRef{}, fmt.Errorf("%w: %q is not an MGRS reference", ErrFormat, t)
	}

	gz := fields[0]
	i := 0
	for i < len(gz) && isdigit(gz[i]) {
		i++
	}
	if i < 1 || i > 2 || i != len(gz)-1 || !isalpha(gz[i]) {
		return MGRSRef{}, fmt.Errorf("%w: bad grid zone %q", ErrFormat, gz)
	}
	zone, _ := strconv.Atoi(gz[:i])
	band := toupper(gz[i])

	sq := fields[1]
	if len(sq) != 2 || !isalpha(sq[0]) || !isalpha(sq[1]) {
		return MGRSRef{}, fmt.Errorf("%w: bad grid square %q", ErrFormat, sq)
	}

	if mgrsDigitCount(fields[2]) != mgrsDigitCount(fields[3]) {
		return MGRSRef{}, fmt.Errorf("%w: easting %q and northing %q differ in precision",
			ErrFormat, fields[2], fields[3])
	}
	easting, err := parseMGRSNumber(fields[2])
	if err != nil {
		return MGRSRef{}, err
	}
	northing, err := parseMGRSNumber(fields[3])
	if err != nil {
		return MGRSRef{}, err
	}

	return MGRSRef{
		Square: GridSquare{
			GridZone: GridZone{Zone: zone, Band: band},
			Column:   toupper(sq[0]),
			Row:      toupper(sq[1]),
		},
		Easting:  easting,
		Northing: northing,
	}, nil
}

func parseMGRSCompact(t string) (MGRSRef, error) {
	i := 0
	for i < len(t) && isdigit(t[i]) {
		i++
	}
	if i < 1 || i > 2 {
		return MGRSRef{}, fmt.Errorf("%w: bad zone in %q", ErrFormat, t)
	}
	zone, _ := strconv.Atoi(t[:i])
	if len(t) < i+3 || !isalpha(t[i]) || !isalpha(t[i+1]) || !isalpha(t[i+2]) {
		return MGRSRef{}, fmt.Errorf("%w: expected band and grid square letters in %q", ErrFormat, t)
	}
	band := toupper(t[i])
	column := toupper(t[i+1])
	row := toupper(t[i+2])

	// the remaining digits split at their midpoint into easting | northing
	en := t[i+3:]
	if len(en)%2 != 0 {
		return MGRSRef{}, fmt.Errorf("%w: odd easting/northing digit count in %q", ErrFormat, t)
	}
	for j := 0; j < len(en); j++ {
		if !isdigit(en[j]) {
			return MGRSRef{}, fmt.Errorf("%w: bad easting/northing %q", ErrFormat, en)
		}
	}
	mid := len(en) / 2
	easting, err := parseMGRSNumber(en[:mid])
	if err != nil {
		return MGRSRef{}, err
	}
	northing, err := parseMGRSNumber(en[mid:])
	if err != nil {
		return MGRSRef{}, err
	}

	return MGRSRef{
		Square: GridSquare{
			GridZone: GridZone{Zone: zone, Band: band},
			Column:   column,
			Row:      row,
		},
		Easting:  easting,
		Northing: northing,
	}, nil
}

// mgrsDigitCount returns the number of integer digits in a coordinate
// field, ignoring any fractional part.
func mgrsDigitCount(s string) int {
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		return dot
	}
	return len(s)
}

// parseMGRSNumber parses one easting/northing digit group, scaling it to
// meters within the 100 km square. A decimal point is only accepted when at
// least five integer digits precede it; the fraction is truncated.
func parseMGRSNumber(s string) (int, error) {
	intPart := s
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		if dot < 5 {
			return 0, fmt.Errorf("%w: decimal coordinate %q needs at least 5 integer digits", ErrFormat, s)
		}
		for j := dot + 1; j < len(s); j++ {
			if !isdigit(s[j]) {
				return 0, fmt.Errorf("%w: bad coordinate %q", ErrFormat, s)
			}
		}
		intPart = s[:dot]
	}
	if intPart == "" || len(intPart) > 5 {
		return 0, fmt.Errorf("%w: bad coordinate %q", ErrFormat, s)
	}
	for j := 0; j < len(intPart); j++ {
		if !isdigit(intPart[j]) {
			return 0, fmt.Errorf("%w: bad coordinate %q", ErrFormat, s)
		}
	}
	v, _ := strconv.Atoi(intPart)
	return v * pow10(5-len(intPart)), nil
}

func pow10(n int) int {
	p := 1
	for ; n > 0; n-- {
		p *= 10
	}
	return p
}

func isdigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isalpha(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func toupper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

package geodesy

import "fmt"

// DefaultUTMConverter is a WGS84 datum based UTM converter.
var DefaultUTMConverter *UTMConverter

// DefaultGeodesic is a WGS84 ellipsoid based geodesic solver.
var DefaultGeodesic = NewGeodesic(WGS84)

func init() {
	var err error
	DefaultUTMConverter, err = NewUTMConverter(DatumWGS84)
	if err != nil {
		panic(fmt.Sprintf("error constructing WGS84 UTM converter: %s", err))
	}
}

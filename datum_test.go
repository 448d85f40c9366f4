package geodesy_test

import (
	"math"
	"testing"

	"github.com/tzneal/geodesy"
)

func TestDatumIdentityConversion(t *testing.T) {
	p := geodesy.NewGeographic3D(-0.1278, 51.5074, 45).WithM(7)
	got := geodesy.ConvertGeographic(p, geodesy.DatumWGS84, geodesy.DatumWGS84)
	if got != p {
		t.Fatalf("expected identity conversion to return the input, got %s", got)
	}
}

func TestHelmertInverseRoundTrip(t *testing.T) {
	c := geodesy.ToGeocentric(geodesy.NewGeographic3D(-0.1278, 51.5074, 45), geodesy.WGS84)
	for _, d := range geodesy.Datums {
		fwd := geodesy.ConvertGeocentric(c, geodesy.DatumWGS84, d)
		back := geodesy.ConvertGeocentric(fwd, d, geodesy.DatumWGS84)
		if math.Abs(back.X-c.X) > 1e-4 || math.Abs(back.Y-c.Y) > 1e-4 || math.Abs(back.Z-c.Z) > 1e-4 {
			t.Errorf("%s: expected %s after round trip, got %s", d, c, back)
		}
	}
}

func TestDatumRoundTripGeographic(t *testing.T) {
	p := geodesy.NewGeographic3D(-0.1278, 51.5074, 45)
	for _, d := range geodesy.Datums {
		fwd := geodesy.ConvertGeographic(p, geodesy.DatumWGS84, d)
		back := geodesy.ConvertGeographic(fwd, d, geodesy.DatumWGS84)
		if math.Abs(back.Lon-p.Lon) > 1e-7 || math.Abs(back.Lat-p.Lat) > 1e-7 {
			t.Errorf("%s: expected %s after round trip, got %s", d, p, back)
		}
		if math.Abs(back.Elev-p.Elev) > 1e-2 {
			t.Errorf("%s: expected height %g after round trip, got %g", d, p.Elev, back.Elev)
		}
	}
}

func TestDatumPivotConsistency(t *testing.T) {
	// a cross-datum conversion must equal the two-step conversion through
	// WGS84, since WGS84 is the pivot
	c := geodesy.ToGeocentric(geodesy.NewGeographic3D(2.2945, 48.8582, 35), geodesy.WGS84)
	direct := geodesy.ConvertGeocentric(c, geodesy.DatumOSGB36, geodesy.DatumED50)
	viaPivot := geodesy.ConvertGeocentric(
		geodesy.ConvertGeocentric(c, geodesy.DatumOSGB36, geodesy.DatumWGS84),
		geodesy.DatumWGS84, geodesy.DatumED50)
	if math.Abs(direct.X-viaPivot.X) > 1e-9 ||
		math.Abs(direct.Y-viaPivot.Y) > 1e-9 ||
		math.Abs(direct.Z-viaPivot.Z) > 1e-9 {
		t.Fatalf("expected %s via pivot, got %s directly", viaPivot, direct)
	}
}

func TestDatumConversionPreservesDimensions(t *testing.T) {
	p2d := geodesy.NewGeographic(-0.1278, 51.5074).WithM(3)
	got := geodesy.ConvertGeographic(p2d, geodesy.DatumWGS84, geodesy.DatumOSGB36)
	if got.Has3D {
		t.Errorf("expected a 2D input to stay 2D, got height %g", got.Elev)
	}
	if !got.HasM || got.M != 3 {
		t.Errorf("expected measure 3 to be preserved, got %v (set %v)", got.M, got.HasM)
	}

	p3d := geodesy.NewGeographic3D(-0.1278, 51.5074, 45)
	got3 := geodesy.ConvertGeographic(p3d, geodesy.DatumWGS84, geodesy.DatumOSGB36)
	if !got3.Has3D {
		t.Error("expected a 3D input to stay 3D")
	}
}

func TestConvertGeographicSlice(t *testing.T) {
	ps := []geodesy.Geographic{
		geodesy.NewGeographic(-0.1278, 51.5074),
		geodesy.NewGeographic(2.2945, 48.8582),
		geodesy.NewGeographic(-3.07009, 58.64402),
	}
	got := geodesy.ConvertGeographicSlice(ps, geodesy.DatumWGS84, geodesy.DatumOSGB36)
	if len(got) != len(ps) {
		t.Fatalf("expected %d results, got %d", len(ps), len(got))
	}
	for i, p := range ps {
		want := geodesy.ConvertGeographic(p, geodesy.DatumWGS84, geodesy.DatumOSGB36)
		if got[i] != want {
			t.Errorf("element %d: expected %s, got %s", i, want, got[i])
		}
	}
}

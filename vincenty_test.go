package geodesy_test

import (
	"errors"
	"math"
	"testing"

	"github.com/tzneal/geodesy"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestVincentyInverseFixture(t *testing.T) {
	// Lizard Point to Duncansby Head
	p1 := geodesy.NewGeographic(-5.71475, 50.06632)
	p2 := geodesy.NewGeographic(-3.07009, 58.64402)
	arc, err := geodesy.DefaultGeodesic.Inverse(p1, p2)
	if err != nil {
		t.Fatalf("error solving inverse: %s", err)
	}
	if !scalar.EqualWithinAbs(arc.Distance, 969954.166, 1e-3) {
		t.Errorf("expected distance 969954.166, got %.3f", arc.Distance)
	}
	if !scalar.EqualWithinAbs(arc.InitialBearing.Degrees(), 9.1419, 1e-4) {
		t.Errorf("expected initial bearing 9.1419, got %.4f", arc.InitialBearing.Degrees())
	}
	if !scalar.EqualWithinAbs(arc.FinalBearing.Degrees(), 11.2972, 1e-4) {
		t.Errorf("expected final bearing 11.2972, got %.4f", arc.FinalBearing.Degrees())
	}
}

func TestVincentyDirectInverseConsistency(t *testing.T) {
	g := geodesy.DefaultGeodesic
	pairs := [][2]geodesy.Geographic{
		{geodesy.NewGeographic(-5.71475, 50.06632), geodesy.NewGeographic(-3.07009, 58.64402)},
		{geodesy.NewGeographic(151.2093, -33.8688), geodesy.NewGeographic(174.7633, -36.8485)},
		{geodesy.NewGeographic(-122.4194, 37.7749), geodesy.NewGeographic(-74.0060, 40.7128)},
		{geodesy.NewGeographic(18.4241, -33.9249), geodesy.NewGeographic(77.5946, 12.9716)},
	}
	for _, pair := range pairs {
		arc, err := g.Inverse(pair[0], pair[1])
		if err != nil {
			t.Fatalf("error solving inverse %s to %s: %s", pair[0], pair[1], err)
		}
		fwd, err := g.Direct(pair[0], arc.InitialBearing, arc.Distance)
		if err != nil {
			t.Fatalf("error solving direct from %s: %s", pair[0], err)
		}
		if math.Abs(fwd.Destination.Lat-pair[1].Lat) > 1e-9 ||
			math.Abs(fwd.Destination.Lon-pair[1].Lon) > 1e-9 {
			t.Errorf("expected destination %s, got %s", pair[1], fwd.Destination)
		}
		if !scalar.EqualWithinAbs(float64(fwd.FinalBearing), float64(arc.FinalBearing), 1e-9) {
			t.Errorf("expected final bearing %.9f, got %.9f",
				arc.FinalBearing.Degrees(), fwd.FinalBearing.Degrees())
		}
	}
}

func TestVincentyInverseSymmetry(t *testing.T) {
	g := geodesy.DefaultGeodesic
	p1 := geodesy.NewGeographic(-5.71475, 50.06632)
	p2 := geodesy.NewGeographic(-3.07009, 58.64402)
	ab, err := g.Inverse(p1, p2)
	if err != nil {
		t.Fatalf("error solving inverse: %s", err)
	}
	ba, err := g.Inverse(p2, p1)
	if err != nil {
		t.Fatalf("error solving inverse: %s", err)
	}
	if !scalar.EqualWithinAbs(ab.Distance, ba.Distance, 1e-6) {
		t.Errorf("expected symmetric distances, got %.6f and %.6f", ab.Distance, ba.Distance)
	}
	// the reverse initial bearing is the forward final bearing turned around
	want := math.Mod(ab.FinalBearing.Degrees()+180, 360)
	if !scalar.EqualWithinAbs(ba.InitialBearing.Degrees(), want, 1e-6) {
		t.Errorf("expected reverse initial bearing %.6f, got %.6f", want, ba.InitialBearing.Degrees())
	}
}

func TestVincentyCoincidentPoints(t *testing.T) {
	p := geodesy.NewGeographic(2.2945, 48.8582)
	arc, err := geodesy.DefaultGeodesic.Inverse(p, p)
	if err != nil {
		t.Fatalf("error solving inverse: %s", err)
	}
	if arc.Distance != 0 {
		t.Errorf("expected distance 0, got %g", arc.Distance)
	}
	if !math.IsNaN(float64(arc.InitialBearing)) || !math.IsNaN(float64(arc.FinalBearing)) {
		t.Errorf("expected NaN bearings for coincident points, got %v and %v",
			arc.InitialBearing, arc.FinalBearing)
	}
}

func TestVincentyExactAntipodal(t *testing.T) {
	arc, err := geodesy.DefaultGeodesic.Inverse(geodesy.NewGeographic(0, 0), geodesy.NewGeographic(180, 0))
	if err != nil {
		t.Fatalf("error solving inverse: %s", err)
	}
	// the exactly antipodal geodesic runs over the pole
	if float64(arc.InitialBearing) != 0 {
		t.Errorf("expected initial bearing 0, got %v", arc.InitialBearing)
	}
	if !scalar.EqualWithinAbs(arc.FinalBearing.Degrees(), 180, 1e-9) {
		t.Errorf("expected final bearing 180, got %v", arc.FinalBearing.Degrees())
	}
	if !scalar.EqualWithinAbs(arc.Distance, 20003931.459, 1) {
		t.Errorf("expected half the meridian circumference, got %.3f", arc.Distance)
	}
}

func TestVincentyNearAntipodalFailure(t *testing.T) {
	p1 := geodesy.NewGeographic(0, 0)
	p2 := geodesy.NewGeographic(179.7, 0.5)
	if _, err := geodesy.DefaultGeodesic.Inverse(p1, p2); !errors.Is(err, geodesy.ErrNoConvergence) {
		t.Fatalf("expected ErrNoConvergence, got %v", err)
	}
	if d := geodesy.DefaultGeodesic.Distance(p1, p2); !math.IsNaN(d) {
		t.Errorf("expected NaN distance from the convenience wrapper, got %g", d)
	}
	if b := geodesy.DefaultGeodesic.InitialBearing(p1, p2); !math.IsNaN(float64(b)) {
		t.Errorf("expected NaN bearing from the convenience wrapper, got %v", b)
	}
}

func TestVincentyZeroDistanceDirect(t *testing.T) {
	p := geodesy.NewGeographic(2.2945, 48.8582)
	arc, err := geodesy.DefaultGeodesic.Direct(p, 1.0, 0)
	if err != nil {
		t.Fatalf("error solving direct: %s", err)
	}
	if arc.Destination != p {
		t.Errorf("expected the origin back, got %s", arc.Destination)
	}
	if !math.IsNaN(float64(arc.FinalBearing)) {
		t.Errorf("expected NaN final bearing for zero distance, got %v", arc.FinalBearing)
	}
}

func TestVincentyMidpoint(t *testing.T) {
	g := geodesy.DefaultGeodesic
	p1 := geodesy.NewGeographic(-5.71475, 50.06632)
	p2 := geodesy.NewGeographic(-3.07009, 58.64402)
	mid, err := g.Midpoint(p1, p2)
	if err != nil {
		t.Fatalf("error solving midpoint: %s", err)
	}
	total := g.Distance(p1, p2)
	if !scalar.EqualWithinAbs(g.Distance(p1, mid), total/2, 1e-3) {
		t.Errorf("expected the midpoint %0.3f from the origin, got %.3f", total/2, g.Distance(p1, mid))
	}
	if !scalar.EqualWithinAbs(g.Distance(mid, p2), total/2, 1e-3) {
		t.Errorf("expected the midpoint %0.3f from the destination, got %.3f", total/2, g.Distance(mid, p2))
	}

	if same, err := g.Midpoint(p1, p1); err != nil || same != p1 {
		t.Errorf("expected the midpoint of coincident points to be the point, got %s (%v)", same, err)
	}
}

func TestVincentyIntermediatePoint(t *testing.T) {
	g := geodesy.DefaultGeodesic
	p1 := geodesy.NewGeographic(-5.71475, 50.06632)
	p2 := geodesy.NewGeographic(-3.07009, 58.64402)
	total := g.Distance(p1, p2)
	for _, f := range []float64{0.25, 0.75} {
		p, err := g.IntermediatePoint(p1, p2, f)
		if err != nil {
			t.Fatalf("error at fraction %g: %s", f, err)
		}
		if !scalar.EqualWithinAbs(g.Distance(p1, p), total*f, 1e-3) {
			t.Errorf("fraction %g: expected %.3f from origin, got %.3f", f, total*f, g.Distance(p1, p))
		}
	}
	end, err := g.IntermediatePoint(p1, p2, 1)
	if err != nil {
		t.Fatalf("error at fraction 1: %s", err)
	}
	if math.Abs(end.Lat-p2.Lat) > 1e-9 || math.Abs(end.Lon-p2.Lon) > 1e-9 {
		t.Errorf("expected fraction 1 to land on %s, got %s", p2, end)
	}
}

func TestGeodesicOnOtherEllipsoids(t *testing.T) {
	p1 := geodesy.NewGeographic(-5.71475, 50.06632)
	p2 := geodesy.NewGeographic(-3.07009, 58.64402)
	wgs := geodesy.DefaultGeodesic.Distance(p1, p2)
	airy := geodesy.NewGeodesicForDatum(geodesy.DatumOSGB36).Distance(p1, p2)
	if math.IsNaN(airy) {
		t.Fatal("expected a finite distance on Airy1830")
	}
	// different ellipsoid, slightly different distance, same order of magnitude
	if diff := math.Abs(wgs - airy); diff < 1e-6 || diff > 1000 {
		t.Errorf("expected a small ellipsoid-dependent difference, got %.6f", diff)
	}
}

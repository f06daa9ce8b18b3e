package form3_test

import (
	"math"
	"testing"

	"github.com/soypat/psurf"
	"github.com/soypat/psurf/form3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestConstructorErrors(t *testing.T) {
	plane, _ := form3.Plane(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	for _, test := range []struct {
		name string
		f    func() (psurf.Surface, error)
	}{
		{"plane parallel", func() (psurf.Surface, error) { return form3.Plane(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 2}) }},
		{"bilinear point", func() (psurf.Surface, error) {
			return form3.Bilinear(r3.Vec{}, r3.Vec{}, r3.Vec{}, r3.Vec{})
		}},
		{"sphere", func() (psurf.Surface, error) { return form3.Sphere(0) }},
		{"cylinder", func() (psurf.Surface, error) { return form3.Cylinder(-1, 1) }},
		{"torus", func() (psurf.Surface, error) { return form3.Torus(1, 2) }},
		{"bezier", func() (psurf.Surface, error) { return form3.Bezier([4][4]r3.Vec{}) }},
		{"extrusion", func() (psurf.Surface, error) { return form3.Extrusion([]r2.Vec{{X: 1}}, 1) }},
		{"extrusion repeat", func() (psurf.Surface, error) {
			return form3.Extrusion([]r2.Vec{{X: 1}, {X: 1}, {X: 2}}, 1)
		}},
		{"transform scale", func() (psurf.Surface, error) {
			return form3.Transform(plane, r3.Vec{}, r3.Vec{X: 1, Y: 0, Z: 1}, r3.Rotation{})
		}},
		{"sheet", func() (psurf.Surface, error) { return form3.Sheet(0, [4][4]float64{}) }},
	} {
		s, err := test.f()
		if err == nil || s != nil {
			t.Errorf("%s: expected error and nil surface, got %v, %v", test.name, s, err)
		}
	}
}

// evalOnly hides analytic derivatives so psurf.NumericDerivatives falls
// back to finite differences.
type evalOnly struct{ psurf.Surface }

func TestAnalyticDerivatives(t *testing.T) {
	sphere, _ := form3.Sphere(1.5)
	cyl, _ := form3.Cylinder(2, 0.5)
	bez, _ := form3.Sheet(1, [4][4]float64{{0, 1, 0, 0}, {1, 0, 2, 0}, {0, -1, 0, 1}, {0, 0, 1, 0}})
	bil, _ := form3.Bilinear(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{Y: 1})
	ext, _ := form3.Extrusion([]r2.Vec{{}, {X: 1, Y: 1}, {X: 2}}, 3)
	for name, s := range map[string]psurf.Surface{
		"sphere": sphere, "cylinder": cyl, "bezier": bez, "bilinear": bil, "extrusion": ext,
	} {
		d, ok := s.(psurf.Deriver)
		if !ok {
			t.Fatalf("%s has no analytic derivatives", name)
		}
		dom := s.Domain()
		for _, f := range []r2.Vec{{X: 0.3, Y: 0.4}, {X: 0.6, Y: 0.7}, {X: 0.9, Y: 0.2}} {
			u := dom.Min.X + f.X*(dom.Max.X-dom.Min.X)
			v := dom.Min.Y + f.Y*(dom.Max.Y-dom.Min.Y)
			got := d.Derivatives(u, v)
			want := psurf.NumericDerivatives(evalOnly{s}, u, v)
			for _, c := range [][2]r3.Vec{
				{got.Su, want.Su}, {got.Sv, want.Sv},
				{got.Suu, want.Suu}, {got.Svv, want.Svv}, {got.Suv, want.Suv},
			} {
				if r3.Norm(r3.Sub(c[0], c[1])) > 1e-3*math.Max(1, r3.Norm(c[1])) {
					t.Errorf("%s at (%g,%g): analytic %v, numeric %v", name, u, v, c[0], c[1])
				}
			}
			n := s.Normal(u, v)
			nn := psurf.NumericNormal(evalOnly{s}, u, v)
			if r3.Norm(r3.Sub(n, nn)) > 1e-6 {
				t.Errorf("%s normal at (%g,%g): got %v, numeric %v", name, u, v, n, nn)
			}
		}
	}
}

func TestTorusNormal(t *testing.T) {
	torus, _ := form3.Torus(3, 1)
	for _, uv := range []r2.Vec{{X: 0.1, Y: 0.2}, {X: 2, Y: 4}, {X: 5, Y: 1}} {
		n := torus.Normal(uv.X, uv.Y)
		nn := psurf.NumericNormal(torus, uv.X, uv.Y)
		if r3.Norm(r3.Sub(n, nn)) > 1e-6 {
			t.Errorf("normal at %v: got %v, numeric %v", uv, n, nn)
		}
	}
}

func TestTransform(t *testing.T) {
	plane, _ := form3.Plane(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	// Quarter turn about X then shift along Z.
	q := r3.NewRotation(math.Pi/2, r3.Vec{X: 1})
	s, err := form3.Transform(plane, r3.Vec{Z: 5}, r3.Vec{X: 2, Y: 1, Z: 1}, q)
	if err != nil {
		t.Fatal(err)
	}
	p := s.Evaluate(1, 1)
	want := r3.Vec{X: 2, Y: 0, Z: 6}
	if r3.Norm(r3.Sub(p, want)) > 1e-12 {
		t.Errorf("got %v, want %v", p, want)
	}
	n := s.Normal(0.5, 0.5)
	if r3.Norm(r3.Sub(n, r3.Vec{Y: -1})) > 1e-12 {
		t.Errorf("got normal %v, want -Y", n)
	}
	nn := psurf.NumericNormal(evalOnly{s}, 0.5, 0.5)
	if r3.Norm(r3.Sub(n, nn)) > 1e-6 {
		t.Errorf("normal %v disagrees with numeric %v", n, nn)
	}
}

func TestExtrusionCreases(t *testing.T) {
	// Collinear middle vertex is not a crease.
	s, err := form3.Extrusion([]r2.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3, Y: 1}, {X: 4, Y: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := s.(psurf.Creaser)
	if !ok {
		t.Fatal("extrusion must report creases")
	}
	for _, test := range []struct {
		lo, hi float64
		want   float64
		found  bool
	}{
		{0, 4, 2, true},
		{0, 2, 0, false},
		{2, 4, 3, true},
		{2.5, 4, 3, true},
		{3, 4, 0, false},
	} {
		got, found := c.C1Discontinuity(psurf.AxisU, test.lo, test.hi)
		if found != test.found || (found && got != test.want) {
			t.Errorf("crease in (%g,%g): got %g,%v want %g,%v", test.lo, test.hi, got, found, test.want, test.found)
		}
	}
	if _, found := c.C1Discontinuity(psurf.AxisV, 0, 1); found {
		t.Error("extrusion has no creases along V")
	}
	p := s.Evaluate(2.5, 0.25)
	if r3.Norm(r3.Sub(p, r3.Vec{X: 2.5, Y: 0.25, Z: 0.5})) > 1e-12 {
		t.Errorf("got %v", p)
	}
}

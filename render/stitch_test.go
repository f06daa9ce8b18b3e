package render

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/psurf"
	"github.com/soypat/psurf/form3/must3"
	"github.com/soypat/psurf/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestProjectOntoLine(t *testing.T) {
	for _, test := range []struct {
		p, a, b r3.Vec
		want    r3.Vec
		ratio   float64
	}{
		{p: r3.Vec{X: 1, Y: 1}, b: r3.Vec{X: 2}, want: r3.Vec{X: 1}, ratio: 0.5},
		{p: r3.Vec{X: 3, Z: -2}, b: r3.Vec{X: 2}, want: r3.Vec{X: 3}, ratio: 1.5},
		{p: r3.Vec{X: -1, Y: 5}, a: r3.Vec{Y: 1}, b: r3.Vec{Y: 3}, want: r3.Vec{Y: 5}, ratio: 2},
		// Degenerate line.
		{p: r3.Vec{X: 1, Y: 1}, a: r3.Vec{Z: 1}, b: r3.Vec{Z: 1}, want: r3.Vec{Z: 1}, ratio: 0},
	} {
		got, ratio := projectOntoLine(test.p, test.a, test.b)
		if r3.Norm(r3.Sub(got, test.want)) > 1e-14 || math.Abs(ratio-test.ratio) > 1e-14 {
			t.Errorf("project %v onto (%v,%v): got %v,%g want %v,%g", test.p, test.a, test.b, got, ratio, test.want, test.ratio)
		}
	}
}

func TestBlendNormal(t *testing.T) {
	x, y := r3.Vec{X: 1}, r3.Vec{Y: 1}
	got := blendNormal(x, y, 0.5)
	want := r3.Unit(r3.Vec{X: 1, Y: 1})
	if r3.Norm(r3.Sub(got, want)) > 1e-14 {
		t.Errorf("got %v, want %v", got, want)
	}
	// Ratio is clamped to the chord.
	if got := blendNormal(x, y, 3); got != y {
		t.Errorf("clamped blend got %v, want %v", got, y)
	}
	// Opposing normals cancel, fall back to the nearest master.
	if got := blendNormal(x, r3.Scale(-1, x), 0.25); got != x {
		t.Errorf("cancelled blend got %v, want %v", got, x)
	}
}

func TestSpan(t *testing.T) {
	s := span{lo: 0.25, hi: 0.5}
	if !s.inside(0.375) || s.inside(0.25) || s.inside(0.5) || s.inside(0.25+1e-15) {
		t.Error("inside misbehaves at span ends")
	}
	if !s.contains(span{lo: 0.25, hi: 0.375}) || s.contains(span{lo: 0.125, hi: 0.375}) {
		t.Error("contains misbehaves")
	}
	if !s.overlaps(span{lo: 0.375, hi: 1}) || s.overlaps(span{lo: 0.5, hi: 1}) {
		t.Error("overlaps misbehaves")
	}
}

func newTestTessellator(t *testing.T, s psurf.Surface, cfg Config) *tessellator {
	t.Helper()
	cfg, err := cfg.withDefaults()
	if err != nil {
		t.Fatal(err)
	}
	return newTessellator(s, cfg)
}

func TestStitchSeamMismatch(t *testing.T) {
	s := must3.Plane(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	for _, test := range []struct {
		name string
		r    r2.Box
	}{
		{name: "leftover", r: r2.Box{Min: r2.Vec{X: 0.5}, Max: r2.Vec{X: 1, Y: 0.5}}},
		{name: "disjoint", r: r2.Box{Min: r2.Vec{X: 0.5, Y: 2}, Max: r2.Vec{X: 1, Y: 3}}},
	} {
		tess := newTestTessellator(t, s, DefaultConfig(1))
		l := tess.leaf(r2.Box{Max: r2.Vec{X: 0.5, Y: 1}}, 1, true)
		r := tess.leaf(test.r, 1, true)
		err := tess.stitch(l.right, r.left, psurf.AxisV)
		if !errors.Is(err, ErrSeamMismatch) {
			t.Errorf("%s: expected ErrSeamMismatch, got %v", test.name, err)
		}
	}
}

func TestStitchContainedEdges(t *testing.T) {
	s := must3.Plane(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	tess := newTestTessellator(t, s, DefaultConfig(1))
	coarse := tess.leaf(r2.Box{Min: r2.Vec{X: 0.5}, Max: r2.Vec{X: 1, Y: 1}}, 1, true)
	var fine []edge
	for _, v := range [][2]float64{{0, 0.25}, {0.25, 0.5}, {0.5, 1}} {
		c := tess.leaf(r2.Box{Min: r2.Vec{Y: v[0]}, Max: r2.Vec{X: 0.5, Y: v[1]}}, 3, true)
		fine = append(fine, c.right...)
	}
	if err := tess.stitch(fine, coarse.left, psurf.AxisV); err != nil {
		t.Fatal(err)
	}
	// Four fine corners lie strictly inside the coarse edge, two links each.
	if tess.stats.dependencies != 8 {
		t.Errorf("got %d dependency links, want 8", tess.stats.dependencies)
	}
	master := tess.arena.get(coarse.left[0].patch)
	if master.Dependents(0) != 4 || master.Dependents(3) != 4 {
		t.Errorf("masters got %d and %d dependents, want 4", master.Dependents(0), master.Dependents(3))
	}
}

// bumpSheet is a Bézier sheet over [-1/2,1/2]² whose height is 3v(1-v),
// flat along u.
func bumpSheet() psurf.Surface {
	var ctl [4][4]r3.Vec
	z := [4]float64{0, 1, 1, 0}
	for i := range ctl {
		for j := range ctl[i] {
			ctl[i][j] = r3.Vec{X: float64(i)/3 - 0.5, Y: float64(j)/3 - 0.5, Z: z[j]}
		}
	}
	return must3.Bezier(ctl)
}

// TestTJunctionResolved refines the left half of a bump sheet once more than
// the right half. The T-junction at the middle of the seam must be moved onto
// the chord of the coarse right patch.
func TestTJunctionResolved(t *testing.T) {
	cfg := DefaultConfig(0.5)
	cfg.Strategy = Alternate{}
	cfg.Estimator = EstimatorFunc(func(s psurf.Surface, dom r2.Box, axis psurf.Axis, depth int) float64 {
		if depth == 0 || (depth == 1 && dom.Max.X <= 0.5) {
			return 1
		}
		return 0
	})
	ps, err := TessellatePatches(bumpSheet(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps.Patches) != 3 {
		t.Fatalf("got %d patches, want 3", len(ps.Patches))
	}
	lb, lt, r := ps.Patches[0], ps.Patches[1], ps.Patches[2]
	if r.Domain.Min.X != 0.5 || lb.Domain.Max.Y != 0.5 || lt.Domain.Min.Y != 0.5 {
		t.Fatalf("unexpected patch layout: %+v %+v %+v", lb.Domain, lt.Domain, r.Domain)
	}
	if r.Dependents(0) != 2 || r.Dependents(3) != 2 {
		t.Errorf("coarse corners got %d and %d dependents, want 2", r.Dependents(0), r.Dependents(3))
	}
	if ps.Stats.Dependencies != 4 {
		t.Errorf("got %d dependency links, want 4", ps.Stats.Dependencies)
	}
	for _, c := range []Corner{lb.Corners[2], lt.Corners[1]} {
		if c.UV != (r2.Vec{X: 0.5, Y: 0.5}) {
			t.Fatalf("slave at unexpected parameter %v", c.UV)
		}
		if !c.Displaced() {
			t.Error("T-junction corner was not moved")
		}
		// The coarse edge runs straight from (0,-1/2,0) to (0,1/2,0).
		if r3.Norm(c.Pos) > 1e-12 {
			t.Errorf("slave at %v, want origin", c.Pos)
		}
		if math.Abs(c.Home.Z-0.75) > 1e-12 {
			t.Errorf("slave home height %g, want 0.75", c.Home.Z)
		}
		if r3.Norm(r3.Sub(c.Normal, r3.Vec{Z: 1})) > 1e-12 {
			t.Errorf("slave normal %v, want +Z", c.Normal)
		}
	}
	s := bumpSheet()
	for _, p := range ps.Patches {
		for _, c := range p.Corners {
			if c.Displaced() {
				continue
			}
			if want := s.Normal(c.UV.X, c.UV.Y); r3.Norm(r3.Sub(c.Normal, want)) > 1e-12 {
				t.Errorf("corner at %v has normal %v, want surface normal %v", c.UV, c.Normal, want)
			}
		}
	}
	if got := len(ps.Triangles()); got != 6 {
		t.Errorf("got %d triangles, want 6", got)
	}
}

// TestInvalidNeverMaster checks that a discarded coarse patch leaves the
// corners of its finer neighbours on the surface.
func TestInvalidNeverMaster(t *testing.T) {
	cfg := DefaultConfig(0.5)
	cfg.Strategy = Alternate{}
	cfg.Estimator = EstimatorFunc(func(s psurf.Surface, dom r2.Box, axis psurf.Axis, depth int) float64 {
		switch {
		case depth == 0:
			return 1
		case depth == 1 && dom.Min.X >= 0.5:
			return -1
		case depth == 1:
			return 1
		}
		return 0
	})
	ps, err := TessellatePatches(bumpSheet(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if ps.Stats.Dependencies != 0 || ps.Stats.Discarded != 1 {
		t.Errorf("got %d links and %d discarded patches, want 0 and 1", ps.Stats.Dependencies, ps.Stats.Discarded)
	}
	for _, p := range ps.Patches {
		for _, c := range p.Corners {
			if c.Displaced() {
				t.Errorf("corner at %v displaced by a discarded patch", c.UV)
			}
		}
	}
	if got := len(ps.Triangles()); got != 4 {
		t.Errorf("got %d triangles, want 4", got)
	}
}

// TestPropagationConverged refines a sheet around a point so that corners
// slaved at inner seams act as masters at outer seams.
func TestPropagationConverged(t *testing.T) {
	q := r2.Vec{X: 0.45, Y: 0.45}
	cfg := DefaultConfig(0.5)
	cfg.Strategy = Alternate{}
	cfg.Estimator = EstimatorFunc(func(s psurf.Surface, dom r2.Box, axis psurf.Axis, depth int) float64 {
		size := r2.Sub(dom.Max, dom.Min)
		if d2.Box(dom).Contains(q) && math.Max(size.X, size.Y) > 1./16 {
			return 1
		}
		return 0
	})
	tess := newTestTessellator(t, bumpSheet(), cfg)
	if _, err := tess.subdivide(tess.s.Domain(), 0); err != nil {
		t.Fatal(err)
	}
	if tess.stats.dependencies == 0 {
		t.Fatal("expected dependency links")
	}
	chained := false
	patches := tess.arena.list()
	for h, p := range patches {
		for i := range p.Corners {
			m := &p.Corners[i]
			if p.Dependents(i) > 0 && m.Displaced() {
				chained = true
			}
			for _, d := range p.deps[i] {
				s := tess.arena.corner(d.slave)
				o := tess.arena.corner(d.other)
				want, _ := projectOntoLine(s.Home, m.Pos, o.Pos)
				if r3.Norm(r3.Sub(s.Pos, want)) > 1e-12 {
					t.Errorf("slave %v of patch %d corner %d off its chord by %g", s.UV, h, i, r3.Norm(r3.Sub(s.Pos, want)))
				}
			}
		}
	}
	if !chained {
		t.Error("expected a displaced corner acting as master")
	}

	// Propagating again from every corner must be a no-op.
	before := make([][4]r3.Vec, len(patches))
	for h, p := range patches {
		for i := range p.Corners {
			before[h][i] = p.Corners[i].Pos
		}
	}
	for h := range patches {
		for i := 0; i < 4; i++ {
			tess.propagate(cornerRef{patchHandle(h), i})
		}
	}
	for h, p := range patches {
		for i := range p.Corners {
			if d := r3.Norm(r3.Sub(p.Corners[i].Pos, before[h][i])); d > 1e-12 {
				t.Errorf("patch %d corner %d moved %g after repeated propagation", h, i, d)
			}
		}
	}
}

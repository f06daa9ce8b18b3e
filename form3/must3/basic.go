package must3

import (
	"math"

	"github.com/soypat/psurf"
	"github.com/soypat/psurf/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const tau = 2 * math.Pi

var unitDomain = r2.Box{Max: r2.Vec{X: 1, Y: 1}}

// plane is a flat parallelogram spanned by two edge vectors.
type plane struct {
	origin, du, dv r3.Vec
	n              r3.Vec
}

// Plane returns a flat parallelogram surface with corner at origin
// and edges du, dv over the unit domain.
func Plane(origin, du, dv r3.Vec) psurf.Surface {
	n := r3.Cross(du, dv)
	if r3.Norm(n) == 0 {
		panic("plane edge vectors are parallel or zero")
	}
	return &plane{origin: origin, du: du, dv: dv, n: r3.Unit(n)}
}

func (s *plane) Evaluate(u, v float64) r3.Vec {
	return r3.Add(s.origin, r3.Add(r3.Scale(u, s.du), r3.Scale(v, s.dv)))
}

func (s *plane) Normal(u, v float64) r3.Vec { return s.n }

func (s *plane) Domain() r2.Box { return unitDomain }

func (s *plane) Derivatives(u, v float64) psurf.Derivs {
	return psurf.Derivs{Su: s.du, Sv: s.dv}
}

// bilinear is the doubly ruled surface through four corners.
type bilinear struct {
	p [4]r3.Vec
}

// Bilinear returns the bilinear surface interpolating four corner points
// ordered (0,0), (1,0), (1,1), (0,1) in parameter space.
func Bilinear(p00, p10, p11, p01 r3.Vec) psurf.Surface {
	if p00 == p10 && p10 == p11 && p11 == p01 {
		panic("bilinear corners coincide")
	}
	return &bilinear{p: [4]r3.Vec{p00, p10, p11, p01}}
}

func (s *bilinear) Evaluate(u, v float64) r3.Vec {
	a := lerp(s.p[0], s.p[1], u)
	b := lerp(s.p[3], s.p[2], u)
	return lerp(a, b, v)
}

func (s *bilinear) Normal(u, v float64) r3.Vec {
	d := s.Derivatives(u, v)
	return unitOrZero(r3.Cross(d.Su, d.Sv))
}

func (s *bilinear) Domain() r2.Box { return unitDomain }

func (s *bilinear) Derivatives(u, v float64) psurf.Derivs {
	su := lerp(r3.Sub(s.p[1], s.p[0]), r3.Sub(s.p[2], s.p[3]), v)
	sv := lerp(r3.Sub(s.p[3], s.p[0]), r3.Sub(s.p[2], s.p[1]), u)
	twist := r3.Add(r3.Sub(s.p[0], s.p[1]), r3.Sub(s.p[2], s.p[3]))
	return psurf.Derivs{Su: su, Sv: sv, Suv: twist}
}

// sphere is parametrized by longitude u in [0,2pi] and latitude v in [-pi/2,pi/2].
type sphere struct {
	radius float64
}

// Sphere returns a sphere surface centered at the origin.
func Sphere(radius float64) psurf.Surface {
	if radius <= 0 {
		panic("radius <= 0")
	}
	return &sphere{radius: radius}
}

func (s *sphere) Evaluate(u, v float64) r3.Vec {
	return r3.Scale(s.radius, s.Normal(u, v))
}

func (s *sphere) Normal(u, v float64) r3.Vec {
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	return r3.Vec{X: cv * cu, Y: cv * su, Z: sv}
}

func (s *sphere) Domain() r2.Box {
	return r2.Box{Min: r2.Vec{X: 0, Y: -math.Pi / 2}, Max: r2.Vec{X: tau, Y: math.Pi / 2}}
}

func (s *sphere) Derivatives(u, v float64) psurf.Derivs {
	r := s.radius
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	return psurf.Derivs{
		Su:  r3.Vec{X: -r * cv * su, Y: r * cv * cu},
		Sv:  r3.Vec{X: -r * sv * cu, Y: -r * sv * su, Z: r * cv},
		Suu: r3.Vec{X: -r * cv * cu, Y: -r * cv * su},
		Svv: r3.Vec{X: -r * cv * cu, Y: -r * cv * su, Z: -r * sv},
		Suv: r3.Vec{X: r * sv * su, Y: -r * sv * cu},
	}
}

// cylinder is an open cylinder along the Z axis, u is the angle and v the height.
type cylinder struct {
	radius, height float64
}

// Cylinder returns an open cylindrical surface with base at z=0.
func Cylinder(height, radius float64) psurf.Surface {
	if radius <= 0 {
		panic("radius <= 0")
	}
	if height <= 0 {
		panic("height <= 0")
	}
	return &cylinder{radius: radius, height: height}
}

func (s *cylinder) Evaluate(u, v float64) r3.Vec {
	su, cu := math.Sincos(u)
	return r3.Vec{X: s.radius * cu, Y: s.radius * su, Z: v}
}

func (s *cylinder) Normal(u, v float64) r3.Vec {
	su, cu := math.Sincos(u)
	return r3.Vec{X: cu, Y: su}
}

func (s *cylinder) Domain() r2.Box {
	return r2.Box{Max: r2.Vec{X: tau, Y: s.height}}
}

func (s *cylinder) Derivatives(u, v float64) psurf.Derivs {
	su, cu := math.Sincos(u)
	return psurf.Derivs{
		Su:  r3.Vec{X: -s.radius * su, Y: s.radius * cu},
		Sv:  r3.Vec{Z: 1},
		Suu: r3.Vec{X: -s.radius * cu, Y: -s.radius * su},
	}
}

// torus around the Z axis. u sweeps the major circle, v the tube.
type torus struct {
	major, minor float64
}

// Torus returns a torus surface with major radius R and tube radius r.
func Torus(major, minor float64) psurf.Surface {
	if minor <= 0 {
		panic("minor radius <= 0")
	}
	if major <= minor {
		panic("major radius must exceed minor radius")
	}
	return &torus{major: major, minor: minor}
}

func (s *torus) Evaluate(u, v float64) r3.Vec {
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	w := s.major + s.minor*cv
	return r3.Vec{X: w * cu, Y: w * su, Z: s.minor * sv}
}

func (s *torus) Normal(u, v float64) r3.Vec {
	su, cu := math.Sincos(u)
	sv, cv := math.Sincos(v)
	return r3.Vec{X: cv * cu, Y: cv * su, Z: sv}
}

func (s *torus) Domain() r2.Box {
	return r2.Box{Max: r2.Vec{X: tau, Y: tau}}
}

// MaxCurvature locates the tube angle closest to the outer equator (v=0 mod 2pi)
// where the principal curvature along u, cos(v)/(R+r*cos(v)), peaks. Curvature
// is constant along u.
func (s *torus) MaxCurvature(axis psurf.Axis, dom r2.Box) (float64, bool) {
	if axis != psurf.AxisV {
		return 0, false
	}
	lo, hi := dom.Min.Y, dom.Max.Y
	for k := math.Ceil(lo / tau); k*tau <= hi; k++ {
		if v := k * tau; psurf.Interior(v, lo, hi) {
			return v, true
		}
	}
	if math.Cos(lo) > math.Cos(hi) {
		return lo, true
	}
	return hi, true
}

// extrusion sweeps a planar polyline profile in XZ along Y. Profile
// vertices are C1 creases at integer u values.
type extrusion struct {
	profile []r2.Vec
	depth   float64
}

// Extrusion returns the surface generated by sweeping the profile polyline
// (X,Z coordinates) a distance depth along the Y axis. The u parameter runs
// over [0, len(profile)-1] with one unit per profile segment.
func Extrusion(profile []r2.Vec, depth float64) psurf.Surface {
	if len(profile) < 2 {
		panic("profile needs at least 2 vertices")
	}
	if depth <= 0 {
		panic("depth <= 0")
	}
	for i := 1; i < len(profile); i++ {
		if profile[i] == profile[i-1] {
			panic("repeated profile vertex")
		}
	}
	p := make([]r2.Vec, len(profile))
	copy(p, profile)
	return &extrusion{profile: p, depth: depth}
}

func (s *extrusion) segment(u float64) (int, float64) {
	n := len(s.profile) - 1
	i := int(math.Floor(u))
	if i < 0 {
		i = 0
	} else if i >= n {
		i = n - 1
	}
	return i, u - float64(i)
}

func (s *extrusion) Evaluate(u, v float64) r3.Vec {
	i, t := s.segment(u)
	a, b := s.profile[i], s.profile[i+1]
	return r3.Vec{X: a.X + t*(b.X-a.X), Y: v, Z: a.Y + t*(b.Y-a.Y)}
}

func (s *extrusion) Normal(u, v float64) r3.Vec {
	i, _ := s.segment(u)
	d := r2.Sub(s.profile[i+1], s.profile[i])
	su := r3.Vec{X: d.X, Z: d.Y}
	return r3.Unit(r3.Cross(su, r3.Vec{Y: 1}))
}

// Derivatives are one-sided at profile vertices, taken from the segment
// starting there.
func (s *extrusion) Derivatives(u, v float64) psurf.Derivs {
	i, _ := s.segment(u)
	d := r2.Sub(s.profile[i+1], s.profile[i])
	return psurf.Derivs{Su: r3.Vec{X: d.X, Z: d.Y}, Sv: r3.Vec{Y: 1}}
}

func (s *extrusion) Domain() r2.Box {
	return r2.Box{Max: r2.Vec{X: float64(len(s.profile) - 1), Y: s.depth}}
}

func (s *extrusion) C1Discontinuity(axis psurf.Axis, lo, hi float64) (float64, bool) {
	if axis != psurf.AxisU {
		return 0, false
	}
	mid := (lo + hi) / 2
	best, found := 0.0, false
	// Prefer the crease closest to the middle to keep the split balanced.
	for k := 1; k < len(s.profile)-1; k++ {
		t := float64(k)
		if !psurf.Interior(t, lo, hi) || !isCrease(s.profile[k-1], s.profile[k], s.profile[k+1]) {
			continue
		}
		if !found || math.Abs(t-mid) < math.Abs(best-mid) {
			best, found = t, true
		}
	}
	return best, found
}

func isCrease(a, b, c r2.Vec) bool {
	d1 := r2.Sub(b, a)
	d2 := r2.Sub(c, b)
	cross := d1.X*d2.Y - d1.Y*d2.X
	return math.Abs(cross) > 1e-12*r2.Norm(d1)*r2.Norm(d2)
}

type transformed struct {
	s psurf.Surface
	t d3.Transform
}

// Transform returns the surface s moved by a rotation q, per-axis scaling
// and translation to position.
func Transform(s psurf.Surface, position, scale r3.Vec, q r3.Rotation) psurf.Surface {
	if s == nil {
		panic("nil surface argument")
	}
	if d3.LTEZero(scale) {
		panic("scale <= 0")
	}
	if q == (r3.Rotation{}) {
		q = r3.Rotation{Real: 1}
	}
	return &transformed{s: s, t: d3.ComposeTransform(position, scale, q)}
}

func (s *transformed) Evaluate(u, v float64) r3.Vec {
	return s.t.Transform(s.s.Evaluate(u, v))
}

func (s *transformed) Normal(u, v float64) r3.Vec {
	n := s.s.Normal(u, v)
	if n == (r3.Vec{}) {
		return n
	}
	return s.t.TransformNormal(n)
}

func (s *transformed) Domain() r2.Box { return s.s.Domain() }

func (s *transformed) C1Discontinuity(axis psurf.Axis, lo, hi float64) (float64, bool) {
	if c, ok := s.s.(psurf.Creaser); ok {
		return c.C1Discontinuity(axis, lo, hi)
	}
	return 0, false
}

func (s *transformed) MaxCurvature(axis psurf.Axis, dom r2.Box) (float64, bool) {
	if c, ok := s.s.(psurf.CurvatureExtremer); ok {
		return c.MaxCurvature(axis, dom)
	}
	return 0, false
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

func unitOrZero(v r3.Vec) r3.Vec {
	if r3.Norm2(v) == 0 {
		return v
	}
	return r3.Unit(v)
}

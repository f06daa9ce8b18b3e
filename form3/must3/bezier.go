package must3

import (
	"github.com/soypat/psurf"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// bezier is a bicubic Bézier patch. ctl[i][j] is the control point
// at u index i and v index j.
type bezier struct {
	ctl [4][4]r3.Vec
}

// Bezier returns the bicubic Bézier surface defined by a 4x4 control net
// indexed [u][v] over the unit domain.
func Bezier(ctl [4][4]r3.Vec) psurf.Surface {
	first := ctl[0][0]
	for i := range ctl {
		for j := range ctl[i] {
			if ctl[i][j] != first {
				return &bezier{ctl: ctl}
			}
		}
	}
	panic("all bezier control points coincide")
}

func (s *bezier) Evaluate(u, v float64) r3.Vec {
	bu, _, _ := bernstein3(u)
	bv, _, _ := bernstein3(v)
	return s.sum(bu, bv)
}

func (s *bezier) Normal(u, v float64) r3.Vec {
	d := s.Derivatives(u, v)
	n := r3.Cross(d.Su, d.Sv)
	if r3.Norm2(n) < 1e-24 {
		// Collapsed edge, fall back to sampling slightly inside the patch.
		return psurf.NumericNormal(s, psurf.Clamp(u, 1e-4, 1-1e-4), psurf.Clamp(v, 1e-4, 1-1e-4))
	}
	return r3.Unit(n)
}

func (s *bezier) Domain() r2.Box { return unitDomain }

func (s *bezier) Derivatives(u, v float64) psurf.Derivs {
	bu, du, ddu := bernstein3(u)
	bv, dv, ddv := bernstein3(v)
	return psurf.Derivs{
		Su:  s.sum(du, bv),
		Sv:  s.sum(bu, dv),
		Suu: s.sum(ddu, bv),
		Svv: s.sum(bu, ddv),
		Suv: s.sum(du, dv),
	}
}

func (s *bezier) sum(wu, wv [4]float64) (p r3.Vec) {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			p = r3.Add(p, r3.Scale(wu[i]*wv[j], s.ctl[i][j]))
		}
	}
	return p
}

// bernstein3 returns the cubic Bernstein basis and its first and second
// derivatives evaluated at t.
func bernstein3(t float64) (b, d, dd [4]float64) {
	mt := 1 - t
	b = [4]float64{mt * mt * mt, 3 * t * mt * mt, 3 * t * t * mt, t * t * t}
	d = [4]float64{-3 * mt * mt, 3 * mt * (mt - 2*t), 3 * t * (2*mt - t), 3 * t * t}
	dd = [4]float64{6 * mt, 6 * (3*t - 2), 6 * (1 - 3*t), 6 * t}
	return b, d, dd
}

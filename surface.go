package psurf

import (
	"math"

	"github.com/soypat/psurf/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is the interface to a parametric surface patch S(u,v).
type Surface interface {
	// Evaluate returns the point on the surface at parameters (u,v).
	Evaluate(u, v float64) r3.Vec
	// Normal returns the unit surface normal at parameters (u,v).
	Normal(u, v float64) r3.Vec
	// Domain returns the parametric domain of the surface. Min.X and Max.X
	// bound the U parameter, Min.Y and Max.Y bound V.
	Domain() r2.Box
}

// Creaser is implemented by surfaces whose tangent is discontinuous
// along constant parameter lines (knots of multiplicity equal to degree,
// piecewise definitions).
type Creaser interface {
	// C1Discontinuity returns a parameter value strictly inside (lo, hi)
	// along axis at which the surface is not C1 continuous.
	C1Discontinuity(axis Axis, lo, hi float64) (float64, bool)
}

// CurvatureExtremer is implemented by surfaces that can locate the
// maximum normal curvature along a parameter axis.
type CurvatureExtremer interface {
	// MaxCurvature returns the parameter along axis inside dom where the
	// normal curvature is largest.
	MaxCurvature(axis Axis, dom r2.Box) (float64, bool)
}

// Deriver is implemented by surfaces with analytic partial derivatives.
type Deriver interface {
	Derivatives(u, v float64) Derivs
}

// Derivs holds the first and second partial derivatives of a surface
// at a point.
type Derivs struct {
	Su, Sv        r3.Vec
	Suu, Svv, Suv r3.Vec
}

// Axis is a parametric direction.
type Axis uint8

const (
	AxisU Axis = iota
	AxisV
)

func (a Axis) String() string {
	switch a {
	case AxisU:
		return "U"
	case AxisV:
		return "V"
	}
	return "Axis(?)"
}

// Other returns the perpendicular axis.
func (a Axis) Other() Axis { return 1 - a }

// Along returns the component of v along axis.
func (a Axis) Along(v r2.Vec) float64 {
	if a == AxisU {
		return v.X
	}
	return v.Y
}

// Width returns the extent of dom along axis.
func Width(dom r2.Box, axis Axis) float64 {
	return axis.Along(dom.Max) - axis.Along(dom.Min)
}

// Split divides dom at parameter t along axis. The first box
// contains the lower parameter values.
func Split(dom r2.Box, axis Axis, t float64) (lo, hi r2.Box) {
	lo, hi = dom, dom
	if axis == AxisU {
		lo.Max.X = t
		hi.Min.X = t
	} else {
		lo.Max.Y = t
		hi.Min.Y = t
	}
	return lo, hi
}

// Center returns the parametric midpoint of dom.
func Center(dom r2.Box) r2.Vec {
	return d2.Box(dom).Center()
}

// Corners returns the parameters of the four corners of dom ordered
// (u0,v0), (u1,v0), (u1,v1), (u0,v1).
func Corners(dom r2.Box) [4]r2.Vec {
	return [4]r2.Vec{
		dom.Min,
		{X: dom.Max.X, Y: dom.Min.Y},
		dom.Max,
		{X: dom.Min.X, Y: dom.Max.Y},
	}
}

// Interior reports whether t lies strictly between lo and hi with a margin
// relative to the interval width.
func Interior(t, lo, hi float64) bool {
	eps := tolerance * math.Max(1, hi-lo)
	return t > lo+eps && t < hi-eps
}

// derivativeStep is the relative finite difference step.
const derivativeStep = 1e-5

// NumericDerivatives calculates first and second partial derivatives of s
// at (u,v) by central finite differences. Samples are kept inside the
// surface domain so that surfaces undefined outside it are never queried.
func NumericDerivatives(s Surface, u, v float64) Derivs {
	if d, ok := s.(Deriver); ok {
		return d.Derivatives(u, v)
	}
	dom := s.Domain()
	hu := derivativeStep * math.Max(1, Width(dom, AxisU))
	hv := derivativeStep * math.Max(1, Width(dom, AxisV))
	u = Clamp(u, dom.Min.X+hu, dom.Max.X-hu)
	v = Clamp(v, dom.Min.Y+hv, dom.Max.Y-hv)

	p := s.Evaluate(u, v)
	pu0, pu1 := s.Evaluate(u-hu, v), s.Evaluate(u+hu, v)
	pv0, pv1 := s.Evaluate(u, v-hv), s.Evaluate(u, v+hv)
	p00, p11 := s.Evaluate(u-hu, v-hv), s.Evaluate(u+hu, v+hv)
	p01, p10 := s.Evaluate(u-hu, v+hv), s.Evaluate(u+hu, v-hv)

	twoP := r3.Scale(2, p)
	return Derivs{
		Su:  r3.Scale(0.5/hu, r3.Sub(pu1, pu0)),
		Sv:  r3.Scale(0.5/hv, r3.Sub(pv1, pv0)),
		Suu: r3.Scale(1/(hu*hu), r3.Sub(r3.Add(pu1, pu0), twoP)),
		Svv: r3.Scale(1/(hv*hv), r3.Sub(r3.Add(pv1, pv0), twoP)),
		Suv: r3.Scale(0.25/(hu*hv), r3.Sub(r3.Add(p11, p00), r3.Add(p01, p10))),
	}
}

// NumericNormal returns the unit normal Su x Sv of s at (u,v). Degenerate
// points (poles, collapsed edges) return the zero vector.
func NumericNormal(s Surface, u, v float64) r3.Vec {
	d := NumericDerivatives(s, u, v)
	n := r3.Cross(d.Su, d.Sv)
	if r3.Norm2(n) < epsilon*epsilon {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

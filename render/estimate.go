package render

import (
	"math"

	"github.com/soypat/psurf"
	"github.com/soypat/psurf/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrorEstimator estimates how far the surface deviates from the flat
// quadrilateral through the corners of dom along axis. A negative return value
// discards the patch: it is kept for stitching but emits no geometry.
type ErrorEstimator interface {
	EstimateError(s psurf.Surface, dom r2.Box, axis psurf.Axis, depth int) float64
}

// EstimatorFunc adapts a function to the ErrorEstimator interface.
type EstimatorFunc func(s psurf.Surface, dom r2.Box, axis psurf.Axis, depth int) float64

func (f EstimatorFunc) EstimateError(s psurf.Surface, dom r2.Box, axis psurf.Axis, depth int) float64 {
	return f(s, dom, axis, depth)
}

var (
	_ ErrorEstimator = CurvatureBound{}
	_ ErrorEstimator = BilinearDeviation{}
	_ ErrorEstimator = Clipped{}
	_ ErrorEstimator = EstimatorFunc(nil)
)

// CurvatureBound bounds the chordal deviation along an axis of parameter
// width w by (w²·|S_aa| + w·w'·|S_uv|)/8, taking the largest second derivatives
// found on a Samples×Samples grid over the patch (3 when zero).
// Surfaces implementing psurf.Deriver supply analytic derivatives, others are
// differentiated numerically.
type CurvatureBound struct {
	Samples int
}

func (c CurvatureBound) EstimateError(s psurf.Surface, dom r2.Box, axis psurf.Axis, depth int) float64 {
	n := c.Samples
	if n < 2 {
		n = 3
	}
	w := psurf.Width(dom, axis)
	wo := psurf.Width(dom, axis.Other())
	var maxAA, maxUV float64
	forGrid(dom, n, func(uv r2.Vec) {
		d := psurf.NumericDerivatives(s, uv.X, uv.Y)
		aa := d.Suu
		if axis == psurf.AxisV {
			aa = d.Svv
		}
		maxAA = math.Max(maxAA, r3.Norm(aa))
		maxUV = math.Max(maxUV, r3.Norm(d.Suv))
	})
	return (w*w*maxAA + w*wo*maxUV) / 8
}

// BilinearDeviation measures the largest distance between surface samples and
// the bilinear interpolation of the patch corners. Samples are taken at
// Samples interior stations along axis (3 when zero) on the two boundary lines
// and the centre line of the other axis.
type BilinearDeviation struct {
	Samples int
}

func (b BilinearDeviation) EstimateError(s psurf.Surface, dom r2.Box, axis psurf.Axis, depth int) float64 {
	n := b.Samples
	if n < 1 {
		n = 3
	}
	var c [4]r3.Vec
	for i, uv := range psurf.Corners(dom) {
		c[i] = s.Evaluate(uv.X, uv.Y)
	}
	size := r2.Sub(dom.Max, dom.Min)
	var dev float64
	for _, o := range [3]float64{0, 0.5, 1} {
		for k := 1; k <= n; k++ {
			a := float64(k) / float64(n+1)
			fu, fv := a, o
			if axis == psurf.AxisV {
				fu, fv = o, a
			}
			want := bilerp(c, fu, fv)
			got := s.Evaluate(dom.Min.X+fu*size.X, dom.Min.Y+fv*size.Y)
			dev = math.Max(dev, r3.Norm(r3.Sub(got, want)))
		}
	}
	return dev
}

// Clipped discards patches lying entirely outside Bounds and delegates the
// rest to Estimator. A patch is outside when its corners and centre are.
type Clipped struct {
	Bounds    r3.Box
	Estimator ErrorEstimator
}

func (c Clipped) EstimateError(s psurf.Surface, dom r2.Box, axis psurf.Axis, depth int) float64 {
	inside := false
	corners := psurf.Corners(dom)
	for _, uv := range append(corners[:], psurf.Center(dom)) {
		if d3.Box(c.Bounds).Contains(s.Evaluate(uv.X, uv.Y)) {
			inside = true
			break
		}
	}
	if !inside {
		return -1
	}
	return c.Estimator.EstimateError(s, dom, axis, depth)
}

// forGrid calls f on an n×n grid of parameters spanning dom, borders included.
func forGrid(dom r2.Box, n int, f func(uv r2.Vec)) {
	size := r2.Sub(dom.Max, dom.Min)
	for i := 0; i < n; i++ {
		fu := float64(i) / float64(n-1)
		for j := 0; j < n; j++ {
			fv := float64(j) / float64(n-1)
			f(r2.Vec{X: dom.Min.X + fu*size.X, Y: dom.Min.Y + fv*size.Y})
		}
	}
}

// bilerp interpolates corners ordered (0,0), (1,0), (1,1), (0,1).
func bilerp(c [4]r3.Vec, u, v float64) r3.Vec {
	a := r3.Add(c[0], r3.Scale(u, r3.Sub(c[1], c[0])))
	b := r3.Add(c[3], r3.Scale(u, r3.Sub(c[2], c[3])))
	return r3.Add(a, r3.Scale(v, r3.Sub(b, a)))
}

package render

import (
	"math"

	"github.com/soypat/psurf"
	"gonum.org/v1/gonum/spatial/r2"
)

// SplitQuery holds what a DirectionStrategy may inspect to pick the axis along
// which a patch is divided.
type SplitQuery struct {
	Surface   psurf.Surface
	Estimator ErrorEstimator
	Domain    r2.Box
	Depth     int
	// ErrU and ErrV are the estimator's deviation along each axis for the
	// undivided patch.
	ErrU, ErrV float64
	// AtU and AtV are the candidate split parameters along each axis.
	AtU, AtV float64
}

// At returns the candidate split parameter along axis.
func (q SplitQuery) At(axis psurf.Axis) float64 {
	if axis == psurf.AxisU {
		return q.AtU
	}
	return q.AtV
}

// DirectionStrategy chooses the split axis of a patch that needs refinement.
type DirectionStrategy interface {
	ChooseAxis(q SplitQuery) psurf.Axis
}

var (
	_ DirectionStrategy = Alternate{}
	_ DirectionStrategy = MinMax{}
	_ DirectionStrategy = MaxDeviation{}
)

// Alternate splits along U at even depths and along V at odd depths.
type Alternate struct{}

func (Alternate) ChooseAxis(q SplitQuery) psurf.Axis {
	if q.Depth%2 == 0 {
		return psurf.AxisU
	}
	return psurf.AxisV
}

// MinMax tries both candidate splits and picks the axis whose worst half has
// the smaller estimated error. Ties fall back to Alternate.
type MinMax struct{}

func (MinMax) ChooseAxis(q SplitQuery) psurf.Axis {
	worstU := q.worstHalf(psurf.AxisU)
	worstV := q.worstHalf(psurf.AxisV)
	switch {
	case worstU < worstV:
		return psurf.AxisU
	case worstV < worstU:
		return psurf.AxisV
	}
	return Alternate{}.ChooseAxis(q)
}

func (q SplitQuery) worstHalf(axis psurf.Axis) float64 {
	lo, hi := psurf.Split(q.Domain, axis, q.At(axis))
	return math.Max(q.patchError(lo), q.patchError(hi))
}

// patchError is the larger deviation of dom along both axes. Halves the
// estimator would discard need no refinement and count as exact.
func (q SplitQuery) patchError(dom r2.Box) float64 {
	eu := q.Estimator.EstimateError(q.Surface, dom, psurf.AxisU, q.Depth+1)
	ev := q.Estimator.EstimateError(q.Surface, dom, psurf.AxisV, q.Depth+1)
	if eu < 0 || ev < 0 {
		return 0
	}
	return math.Max(eu, ev)
}

// MaxDeviation splits along the axis with the larger estimated deviation of
// the undivided patch. It needs no extra estimator calls.
type MaxDeviation struct{}

func (MaxDeviation) ChooseAxis(q SplitQuery) psurf.Axis {
	if q.ErrV > q.ErrU {
		return psurf.AxisV
	}
	return psurf.AxisU
}

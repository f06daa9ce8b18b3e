package render

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/soypat/psurf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// tessellator holds the state of one tessellation. It is discarded once the
// triangles have been emitted.
type tessellator struct {
	s     psurf.Surface
	cfg   Config
	log   *zap.Logger
	arena patchArena
	// minSize is the absolute parameter width floor along U (X) and V (Y).
	minSize     r2.Vec
	warnOverlap sync.Once
	stats       struct {
		discarded       int64
		dependencies    int64
		partialOverlaps int64
		maxDepth        int64
	}
}

func newTessellator(s psurf.Surface, cfg Config) *tessellator {
	dom := s.Domain()
	return &tessellator{
		s:   s,
		cfg: cfg,
		log: cfg.Logger,
		minSize: r2.Vec{
			X: cfg.MinSize * psurf.Width(dom, psurf.AxisU),
			Y: cfg.MinSize * psurf.Width(dom, psurf.AxisV),
		},
	}
}

// subdivide refines dom until the error estimator is satisfied and returns the
// stitched boundary of the resulting patches.
func (t *tessellator) subdivide(dom r2.Box, depth int) (connectivity, error) {
	eu := t.cfg.Estimator.EstimateError(t.s, dom, psurf.AxisU, depth)
	ev := t.cfg.Estimator.EstimateError(t.s, dom, psurf.AxisV, depth)
	if eu < 0 || ev < 0 {
		return t.leaf(dom, depth, false), nil
	}
	if psurf.Width(dom, psurf.AxisU) < t.minSize.X || psurf.Width(dom, psurf.AxisV) < t.minSize.Y {
		// Reached the numeric floor, keep the patch even if it is too coarse.
		return t.leaf(dom, depth, true), nil
	}
	axis, at, creased := t.crease(dom)
	if !creased {
		if math.Max(eu, ev) < t.cfg.Tolerance {
			return t.leaf(dom, depth, true), nil
		}
		q := SplitQuery{
			Surface:   t.s,
			Estimator: t.cfg.Estimator,
			Domain:    dom,
			Depth:     depth,
			ErrU:      eu,
			ErrV:      ev,
			AtU:       t.splitAt(dom, psurf.AxisU),
			AtV:       t.splitAt(dom, psurf.AxisV),
		}
		axis = t.cfg.Strategy.ChooseAxis(q)
		at = q.At(axis)
	}
	lo, hi := psurf.Split(dom, axis, at)
	a, b, err := t.children(lo, hi, depth+1)
	if err != nil {
		return connectivity{}, err
	}
	return t.merge(a, b, axis, at)
}

// children subdivides both halves of a split. Near the root the halves are
// processed concurrently; they share no patches until merged.
func (t *tessellator) children(lo, hi r2.Box, depth int) (a, b connectivity, err error) {
	if depth > t.cfg.ParallelDepth {
		if a, err = t.subdivide(lo, depth); err != nil {
			return a, b, err
		}
		b, err = t.subdivide(hi, depth)
		return a, b, err
	}
	var g errgroup.Group
	g.Go(func() (err error) {
		a, err = t.subdivide(lo, depth)
		return err
	})
	b, err = t.subdivide(hi, depth)
	if gerr := g.Wait(); gerr != nil {
		return a, b, gerr
	}
	return a, b, err
}

// crease returns a forced split at a C1 discontinuity strictly inside dom.
// U creases are preferred over V creases.
func (t *tessellator) crease(dom r2.Box) (psurf.Axis, float64, bool) {
	c, ok := t.s.(psurf.Creaser)
	if !ok {
		return 0, 0, false
	}
	for _, axis := range [2]psurf.Axis{psurf.AxisU, psurf.AxisV} {
		lo, hi := axis.Along(dom.Min), axis.Along(dom.Max)
		if at, ok := c.C1Discontinuity(axis, lo, hi); ok && psurf.Interior(at, lo, hi) {
			return axis, at, true
		}
	}
	return 0, 0, false
}

// splitAt returns the split parameter along axis: the curvature extremum when
// the surface reports one, clamped to the middle half of the interval, or the
// midpoint.
func (t *tessellator) splitAt(dom r2.Box, axis psurf.Axis) float64 {
	lo, hi := axis.Along(dom.Min), axis.Along(dom.Max)
	mid := lo + 0.5*(hi-lo)
	c, ok := t.s.(psurf.CurvatureExtremer)
	if !ok {
		return mid
	}
	at, ok := c.MaxCurvature(axis, dom)
	if !ok || math.IsNaN(at) {
		return mid
	}
	quarter := 0.25 * (hi - lo)
	return psurf.Clamp(at, lo+quarter, hi-quarter)
}

// leaf evaluates the surface at the corners of dom and stores the new patch.
func (t *tessellator) leaf(dom r2.Box, depth int, valid bool) connectivity {
	p := &Patch{Domain: dom, Valid: valid, Depth: depth}
	for i, uv := range psurf.Corners(dom) {
		pos := t.s.Evaluate(uv.X, uv.Y)
		c := Corner{Pos: pos, Home: pos, UV: uv}
		if t.cfg.Normals {
			c.Normal = t.s.Normal(uv.X, uv.Y)
		}
		p.Corners[i] = c
	}
	if !valid {
		atomic.AddInt64(&t.stats.discarded, 1)
	}
	for d := int64(depth); ; {
		cur := atomic.LoadInt64(&t.stats.maxDepth)
		if d <= cur || atomic.CompareAndSwapInt64(&t.stats.maxDepth, cur, d) {
			break
		}
	}
	return leafConnectivity(t.arena.add(p))
}

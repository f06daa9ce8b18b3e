package render

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/soypat/psurf"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrSeamMismatch is returned when the two boundaries of a seam do not cover
// the same parameter interval. It indicates broken domain bookkeeping and
// aborts tessellation of the surface.
var ErrSeamMismatch = errors.New("seam boundaries do not correspond")

// paramTol is the relative tolerance for comparing edge parameters along a seam.
const paramTol = 1e-12

// span is the parameter extent of an edge along a seam.
type span struct {
	lo, hi   float64
	clo, chi cornerRef
	valid    bool
}

func (t *tessellator) span(e edge, along psurf.Axis) span {
	p := t.arena.get(e.patch)
	ilo, ihi := e.corners()
	return span{
		lo:    along.Along(p.Corners[ilo].UV),
		hi:    along.Along(p.Corners[ihi].UV),
		clo:   cornerRef{e.patch, ilo},
		chi:   cornerRef{e.patch, ihi},
		valid: p.Valid,
	}
}

func sameParam(a, b float64) bool {
	return math.Abs(a-b) <= paramTol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// inside reports whether t lies strictly inside the span.
func (s span) inside(t float64) bool {
	return t > s.lo && t < s.hi && !sameParam(t, s.lo) && !sameParam(t, s.hi)
}

func (s span) equal(o span) bool {
	return sameParam(s.lo, o.lo) && sameParam(s.hi, o.hi)
}

func (s span) contains(o span) bool {
	return (s.lo < o.lo || sameParam(s.lo, o.lo)) && (o.hi < s.hi || sameParam(o.hi, s.hi))
}

func (s span) overlaps(o span) bool {
	return s.lo < o.hi && !sameParam(s.lo, o.hi) && o.lo < s.hi && !sameParam(o.lo, s.hi)
}

// stitch walks the two edge lists of a seam in lock step and removes
// T-junctions by projecting the interior corners of finer edges onto the
// chord of the coarser edge facing them. along is the axis the seam runs along.
func (t *tessellator) stitch(l, r []edge, along psurf.Axis) error {
	i, j := 0, 0
	for i < len(l) && j < len(r) {
		el, er := t.span(l[i], along), t.span(r[j], along)
		switch {
		case el.equal(er):
			i++
			j++
		case el.contains(er):
			t.resolve(el, er)
			if sameParam(er.hi, el.hi) {
				i++
			}
			j++
		case er.contains(el):
			t.resolve(er, el)
			if sameParam(el.hi, er.hi) {
				j++
			}
			i++
		case el.overlaps(er):
			t.overlap(el, er, along)
			if el.hi < er.hi {
				i++
			} else {
				j++
			}
		default:
			return fmt.Errorf("%w: disjoint edges [%g,%g] and [%g,%g] along %v",
				ErrSeamMismatch, el.lo, el.hi, er.lo, er.hi, along)
		}
	}
	if i != len(l) || j != len(r) {
		return fmt.Errorf("%w: consumed %d/%d and %d/%d edges along %v",
			ErrSeamMismatch, i, len(l), j, len(r), along)
	}
	return nil
}

// resolve slaves the corners of the finer edge lying strictly inside the
// coarser edge to the coarser edge's chord.
func (t *tessellator) resolve(coarse, fine span) {
	if !coarse.valid {
		// Discarded patches emit no geometry so there is no crack to close.
		return
	}
	if coarse.inside(fine.lo) {
		t.enslave(fine.clo, coarse.clo, coarse.chi)
	}
	if coarse.inside(fine.hi) {
		t.enslave(fine.chi, coarse.clo, coarse.chi)
	}
}

// enslave records that slave lies on the line through m1 and m2, moves it
// there and updates everything depending on it.
func (t *tessellator) enslave(slave, m1, m2 cornerRef) {
	p1 := t.arena.get(m1.patch)
	p1.deps[m1.corner] = append(p1.deps[m1.corner], dependency{slave: slave, other: m2})
	p2 := t.arena.get(m2.patch)
	p2.deps[m2.corner] = append(p2.deps[m2.corner], dependency{slave: slave, other: m1})
	atomic.AddInt64(&t.stats.dependencies, 2)
	t.reproject(slave, m1, m2)
	t.propagate(slave)
}

// overlap handles two edges that overlap without either containing the other.
// Each edge's endpoint inside the other edge is projected onto its chord. No
// dependency links are recorded since the two edges would be mutual masters.
// The resulting seam is not guaranteed crack free.
func (t *tessellator) overlap(a, b span, along psurf.Axis) {
	atomic.AddInt64(&t.stats.partialOverlaps, 1)
	t.warnOverlap.Do(func() {
		t.log.Warn("partial seam overlap, stitching is best effort",
			zap.Stringer("along", along),
			zap.Float64("lo0", a.lo), zap.Float64("hi0", a.hi),
			zap.Float64("lo1", b.lo), zap.Float64("hi1", b.hi),
		)
	})
	type move struct {
		ref         cornerRef
		pos, normal r3.Vec
	}
	var moves []move
	project := func(onto span, ref cornerRef) {
		if !onto.valid {
			return
		}
		c := t.arena.corner(ref)
		m1, m2 := t.arena.corner(onto.clo), t.arena.corner(onto.chi)
		pos, ratio := projectOntoLine(c.Home, m1.Pos, m2.Pos)
		moves = append(moves, move{ref: ref, pos: pos, normal: blendNormal(m1.Normal, m2.Normal, ratio)})
	}
	for _, ep := range [2]struct {
		t   float64
		ref cornerRef
	}{{a.lo, a.clo}, {a.hi, a.chi}} {
		if b.inside(ep.t) {
			project(b, ep.ref)
		}
	}
	for _, ep := range [2]struct {
		t   float64
		ref cornerRef
	}{{b.lo, b.clo}, {b.hi, b.chi}} {
		if a.inside(ep.t) {
			project(a, ep.ref)
		}
	}
	// Positions are computed before any corner moves so the result does not
	// depend on the order of the two projections.
	for _, m := range moves {
		c := t.arena.corner(m.ref)
		c.Pos = m.pos
		if t.cfg.Normals {
			c.Normal = m.normal
		}
	}
	for _, m := range moves {
		t.propagate(m.ref)
	}
}

// reproject places slave on the line through the current positions of its
// masters. The slave's surface point is projected, never its current position,
// so the result only depends on where the masters are.
func (t *tessellator) reproject(slave, m1, m2 cornerRef) {
	s := t.arena.corner(slave)
	a, b := t.arena.corner(m1), t.arena.corner(m2)
	pos, ratio := projectOntoLine(s.Home, a.Pos, b.Pos)
	s.Pos = pos
	if t.cfg.Normals {
		s.Normal = blendNormal(a.Normal, b.Normal, ratio)
	}
}

// propagate re-projects every corner that transitively depends on start.
// Dependency links are acyclic so the worklist drains.
func (t *tessellator) propagate(start cornerRef) {
	queue := []cornerRef{start}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		for _, d := range t.arena.get(m.patch).deps[m.corner] {
			t.reproject(d.slave, m, d.other)
			queue = append(queue, d.slave)
		}
	}
}

// projectOntoLine returns the orthogonal projection of p onto the infinite
// line through a and b, and the position of the projection along the line
// where 0 corresponds to a and 1 to b. A degenerate line projects onto a.
func projectOntoLine(p, a, b r3.Vec) (r3.Vec, float64) {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a, 0
	}
	ratio := r3.Dot(r3.Sub(p, a), ab) / l2
	return r3.Add(a, r3.Scale(ratio, ab)), ratio
}

// blendNormal linearly interpolates two normals and renormalizes the result.
func blendNormal(na, nb r3.Vec, ratio float64) r3.Vec {
	ratio = psurf.Clamp(ratio, 0, 1)
	n := r3.Add(r3.Scale(1-ratio, na), r3.Scale(ratio, nb))
	if r3.Norm2(n) == 0 {
		if ratio < 0.5 || r3.Norm2(nb) == 0 {
			return na
		}
		return nb
	}
	return r3.Unit(n)
}

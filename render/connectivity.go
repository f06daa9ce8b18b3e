package render

import (
	"github.com/soypat/psurf"
)

// Edge sides of a Patch.
const (
	sideBottom = 0
	sideRight  = 1
	sideTop    = 2
	sideLeft   = 3
)

// edge is a handle to one of the four boundary edges of a patch.
// Edge side i joins corner i and corner (i+1)%4.
type edge struct {
	patch patchHandle
	side  int
}

// corners returns the corner indices of the edge ordered by increasing
// parameter along the edge.
func (e edge) corners() (lo, hi int) {
	switch e.side {
	case sideBottom:
		return 0, 1
	case sideRight:
		return 1, 2
	case sideTop:
		return 3, 2
	case sideLeft:
		return 0, 3
	}
	panic("bug: bad edge side")
}

// connectivity describes the boundary of a rectangular region of the
// parameter domain as four edge lists. Each list is ordered by increasing
// parameter: left and right by V, bottom and top by U.
type connectivity struct {
	left, right, bottom, top []edge
	// split is set on merged connectivities. seamAxis is the axis the region
	// was divided along and seamAt the parameter of the dividing line.
	split    bool
	seamAxis psurf.Axis
	seamAt   float64
}

func leafConnectivity(h patchHandle) connectivity {
	return connectivity{
		bottom: []edge{{h, sideBottom}},
		right:  []edge{{h, sideRight}},
		top:    []edge{{h, sideTop}},
		left:   []edge{{h, sideLeft}},
	}
}

// merge joins the connectivities of two sibling regions. For a split along U
// a holds the lower U half and the seam is a.right against b.left, running
// along V. For a split along V a holds the lower V half and the seam is
// a.top against b.bottom, running along U. The seam is stitched before the
// merged boundary is returned.
func (t *tessellator) merge(a, b connectivity, axis psurf.Axis, at float64) (connectivity, error) {
	var m connectivity
	var err error
	switch axis {
	case psurf.AxisU:
		m = connectivity{
			left:   a.left,
			right:  b.right,
			bottom: concatEdges(a.bottom, b.bottom),
			top:    concatEdges(a.top, b.top),
		}
		err = t.stitch(a.right, b.left, psurf.AxisV)
	case psurf.AxisV:
		m = connectivity{
			left:   concatEdges(a.left, b.left),
			right:  concatEdges(a.right, b.right),
			bottom: a.bottom,
			top:    b.top,
		}
		err = t.stitch(a.top, b.bottom, psurf.AxisU)
	default:
		panic("bug: bad merge axis")
	}
	if err != nil {
		return connectivity{}, err
	}
	m.split = true
	m.seamAxis = axis
	m.seamAt = at
	return m, nil
}

func concatEdges(a, b []edge) []edge {
	out := make([]edge, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

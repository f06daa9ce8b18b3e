package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/soypat/psurf/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []r3.Vec
	// Faces index Vertices, one entry per model triangle.
	Faces [][3]int
}

// Weld merges triangle vertices closer than tol into shared vertices. Vertex
// order follows first appearance in model so output is deterministic.
func Weld(model []Triangle3, tol float64) Mesh {
	raw := make(kdVertices, 0, 3*len(model))
	for i := range model {
		for j := range model[i].V {
			raw = append(raw, kdVertex{pos: model[i].V[j], idx: len(raw)})
		}
	}
	var mesh Mesh
	if len(raw) == 0 {
		return mesh
	}
	// The tree reorders its backing slice, keep raw in model order.
	tree := kdtree.New(append(kdVertices(nil), raw...), false)
	welded := make([]int, len(raw))
	for i := range welded {
		welded[i] = -1
	}
	for i, v := range raw {
		if welded[i] >= 0 {
			continue
		}
		id := len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, v.pos)
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, v)
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			if j := c.Comparable.(kdVertex).idx; welded[j] < 0 {
				welded[j] = id
			}
		}
		welded[i] = id
	}
	mesh.Faces = make([][3]int, len(model))
	for i := range mesh.Faces {
		mesh.Faces[i] = [3]int{welded[3*i], welded[3*i+1], welded[3*i+2]}
	}
	return mesh
}

// WriteOBJ writes model as a Wavefront OBJ mesh. Positions closer than weld are
// shared. Per-vertex normals and texture coordinates are written when the
// model carries them.
func WriteOBJ(w io.Writer, model []Triangle3, weld float64) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	if weld < 0 || math.IsNaN(weld) {
		return fmt.Errorf("invalid weld distance %g", weld)
	}
	mesh := Weld(model, weld)
	var hasN, hasUV bool
	for _, t := range model {
		for j := range t.N {
			hasN = hasN || t.N[j] != (r3.Vec{})
			hasUV = hasUV || t.UV[j] != (r2.Vec{})
		}
	}
	bw := bufio.NewWriter(w)
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	// Texture coordinates and normals differ across seams of closed surfaces
	// so they are indexed separately from positions.
	uvIdx := make(map[r2.Vec]int)
	nIdx := make(map[r3.Vec]int)
	faces := make([][3][3]int, len(model))
	for i, t := range model {
		for j := 0; j < 3; j++ {
			f := &faces[i][j]
			f[0] = mesh.Faces[i][j] + 1
			if hasUV {
				id, ok := uvIdx[t.UV[j]]
				if !ok {
					id = len(uvIdx) + 1
					uvIdx[t.UV[j]] = id
					fmt.Fprintf(bw, "vt %g %g\n", t.UV[j].X, t.UV[j].Y)
				}
				f[1] = id
			}
			if hasN {
				id, ok := nIdx[t.N[j]]
				if !ok {
					id = len(nIdx) + 1
					nIdx[t.N[j]] = id
					fmt.Fprintf(bw, "vn %g %g %g\n", t.N[j].X, t.N[j].Y, t.N[j].Z)
				}
				f[2] = id
			}
		}
	}
	for _, f := range faces {
		bw.WriteString("f")
		for _, c := range f {
			switch {
			case hasUV && hasN:
				fmt.Fprintf(bw, " %d/%d/%d", c[0], c[1], c[2])
			case hasUV:
				fmt.Fprintf(bw, " %d/%d", c[0], c[1])
			case hasN:
				fmt.Fprintf(bw, " %d//%d", c[0], c[2])
			default:
				fmt.Fprintf(bw, " %d", c[0])
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

var (
	_ kdtree.Interface  = kdVertices{}
	_ kdtree.Comparable = kdVertex{}
)

// kdVertex is a triangle vertex stored in a kd-tree. idx is its position in
// the flattened vertex list of the model.
type kdVertex struct {
	pos r3.Vec
	idx int
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
//
// Given c = a.Compare(b, d):
//
//	c = a_d - b_d
func (a kdVertex) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return d3.Comp(a.pos, int(d)) - d3.Comp(b.(kdVertex).pos, int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdVertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdVertex) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.pos, b.(kdVertex).pos))
}

type kdVertices []kdVertex

func (k kdVertices) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdVertices) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdVertices) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), vertices: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdVertices) Slice(start, end int) kdtree.Interface { return k[start:end] }

type kdPlane struct {
	dim      int
	vertices kdVertices
}

func (p kdPlane) Less(i, j int) bool {
	return d3.Comp(p.vertices[i].pos, p.dim) < d3.Comp(p.vertices[j].pos, p.dim)
}
func (p kdPlane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}
func (p kdPlane) Len() int {
	return len(p.vertices)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}

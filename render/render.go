package render

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer is implemented by types that generate triangle meshes.
type Renderer interface {
	// ReadTriangles writes generated triangles into t and returns the number
	// written. io.EOF is returned once the model has been fully read.
	ReadTriangles(t []Triangle3) (int, error)
}

// Triangle3 is a mesh triangle. N and UV hold per-vertex surface normals and
// parameters when requested in the tessellation Config and are zero otherwise.
type Triangle3 struct {
	V  [3]r3.Vec
	N  [3]r3.Vec
	UV [3]r2.Vec
}

// Normal returns the unit face normal following the vertex winding.
// Degenerate triangles return the zero vector.
func (t Triangle3) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))
	if r3.Norm2(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Degenerate returns true if the triangle vertices are collinear within tol,
// measured as the sine of the angle between the two edges leaving V[0].
// Coincident vertices are always degenerate.
func (t Triangle3) Degenerate(tol float64) bool {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	l1, l2 := r3.Norm(e1), r3.Norm(e2)
	if l1 == 0 || l2 == 0 || r3.Norm2(r3.Sub(t.V[2], t.V[1])) == 0 {
		return true
	}
	return r3.Norm(r3.Cross(e1, e2)) <= tol*l1*l2
}

// Area returns the area of the triangle.
func (t Triangle3) Area() float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0])))
}

package render

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Patch is a leaf quadrilateral of the subdivision. Corners are ordered
// (u0,v0), (u1,v0), (u1,v1), (u0,v1) so that corner i and corner (i+1)%4
// bound edge i: 0 bottom, 1 right, 2 top, 3 left.
type Patch struct {
	Corners [4]Corner
	// Domain is the parametric rectangle covered by the patch.
	Domain r2.Box
	// Valid is false when the error estimator discarded the patch. Discarded
	// patches keep their place in the seam lists but never emit triangles and
	// never act as masters during stitching.
	Valid bool
	// Depth is the subdivision depth at which the patch was created.
	Depth int

	// deps[i] lists the corners that depend on corner i as master.
	deps [4][]dependency
}

// Corner is a patch vertex.
type Corner struct {
	// Pos is the current vertex position. It differs from Home once the
	// corner has been projected onto a coarser neighbour's edge.
	Pos r3.Vec
	// Home is the surface point at UV.
	Home r3.Vec
	// Normal is the surface normal at UV, blended between the master
	// corners' normals when the corner is displaced.
	Normal r3.Vec
	UV     r2.Vec
}

// Displaced reports whether the corner has been moved off the surface by stitching.
func (c Corner) Displaced() bool { return c.Pos != c.Home }

// Dependents returns the number of dependency links mastered by corner i.
func (p *Patch) Dependents(i int) int { return len(p.deps[i]) }

// patchHandle indexes a Patch in a patchArena.
type patchHandle int

// cornerRef addresses one corner of one patch.
type cornerRef struct {
	patch  patchHandle
	corner int
}

// dependency is stored on a master corner. slave must be kept on the line
// through the master and other.
type dependency struct {
	slave cornerRef
	other cornerRef
}

// patchArena owns every patch created during one tessellation. Patches are
// appended at subdivision leaves and never removed. Appends are safe for
// concurrent use; a patch is only mutated by the goroutine that owns the
// subtree it belongs to.
type patchArena struct {
	mu      sync.Mutex
	patches []*Patch
}

func (a *patchArena) add(p *Patch) patchHandle {
	a.mu.Lock()
	h := patchHandle(len(a.patches))
	a.patches = append(a.patches, p)
	a.mu.Unlock()
	return h
}

func (a *patchArena) get(h patchHandle) *Patch {
	a.mu.Lock()
	p := a.patches[h]
	a.mu.Unlock()
	return p
}

func (a *patchArena) corner(ref cornerRef) *Corner {
	return &a.get(ref.patch).Corners[ref.corner]
}

func (a *patchArena) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.patches)
}

// list returns the patches in creation order.
func (a *patchArena) list() []*Patch {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Patch, len(a.patches))
	copy(out, a.patches)
	return out
}

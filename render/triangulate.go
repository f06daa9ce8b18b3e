package render

import (
	"github.com/soypat/psurf"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mode selects how many triangles each patch is split into.
type Mode uint8

const (
	// TwoPerPatch splits each patch along its (c0,c2) diagonal.
	TwoPerPatch Mode = iota
	// FourPerPatch fans four triangles around the surface point at the
	// parametric centre of the patch.
	FourPerPatch
)

func (m Mode) String() string {
	switch m {
	case TwoPerPatch:
		return "two"
	case FourPerPatch:
		return "four"
	}
	return "Mode(?)"
}

// collinearTol is the sine of the smallest angle a triangle may have
// before being dropped as degenerate.
const collinearTol = 1e-10

// emit triangulates the valid patches. Degenerate triangles are dropped.
func emit(s psurf.Surface, cfg Config, patches []*Patch) []Triangle3 {
	per := 2
	if cfg.Mode == FourPerPatch {
		per = 4
	}
	out := make([]Triangle3, 0, per*len(patches))
	for _, p := range patches {
		if !p.Valid {
			continue
		}
		c := &p.Corners
		switch cfg.Mode {
		case TwoPerPatch:
			out = appendTriangle(out, cfg, &c[0], &c[1], &c[2])
			out = appendTriangle(out, cfg, &c[0], &c[2], &c[3])
		case FourPerPatch:
			uv := psurf.Center(p.Domain)
			mid := Corner{UV: uv, Pos: s.Evaluate(uv.X, uv.Y)}
			if cfg.Normals {
				mid.Normal = s.Normal(uv.X, uv.Y)
			}
			for i := 0; i < 4; i++ {
				out = appendTriangle(out, cfg, &c[i], &c[(i+1)%4], &mid)
			}
		default:
			panic("bug: unknown triangulation mode")
		}
	}
	return out
}

func appendTriangle(dst []Triangle3, cfg Config, a, b, c *Corner) []Triangle3 {
	tri := Triangle3{V: [3]r3.Vec{a.Pos, b.Pos, c.Pos}}
	if tri.Degenerate(collinearTol) {
		return dst
	}
	if cfg.Normals {
		tri.N = [3]r3.Vec{a.Normal, b.Normal, c.Normal}
	}
	if cfg.UV {
		tri.UV = [3]r2.Vec{a.UV, b.UV, c.UV}
	}
	return append(dst, tri)
}

package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/psurf"
	"go.uber.org/zap"
)

var (
	// ErrBadTolerance is returned for non-positive or NaN tolerances.
	ErrBadTolerance = errors.New("tolerance must be positive")
	// ErrBadDomain is returned for surfaces with an empty parametric domain.
	ErrBadDomain = errors.New("surface domain is empty")
)

// DefaultMinSize is the default numeric floor of patch width as a fraction of
// the surface domain width along the same axis.
const DefaultMinSize = 1. / 512

// Config controls adaptive tessellation.
type Config struct {
	// Tolerance is the largest estimated deviation accepted for a patch.
	Tolerance float64
	// Strategy picks the split axis when no crease forces it. Defaults to MinMax.
	Strategy DirectionStrategy
	// Estimator measures patch deviation. Defaults to CurvatureBound.
	Estimator ErrorEstimator
	// Normals enables per-vertex normals. When false normal evaluation and
	// blending are skipped entirely.
	Normals bool
	// UV enables per-vertex parameters on the output triangles.
	UV bool
	// Mode selects two or four triangles per patch.
	Mode Mode
	// MinSize is the patch width floor as a fraction of the domain width.
	// Patches narrower than it along either axis are never split, which
	// bounds the recursion. Defaults to DefaultMinSize.
	MinSize float64
	// ParallelDepth is the subdivision depth down to which sibling patches
	// are refined concurrently. Zero refines on the calling goroutine.
	ParallelDepth int
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the configuration used when only a tolerance is known.
func DefaultConfig(tolerance float64) Config {
	return Config{
		Tolerance: tolerance,
		Strategy:  MinMax{},
		Estimator: CurvatureBound{},
		Normals:   true,
		UV:        true,
		Mode:      TwoPerPatch,
		MinSize:   DefaultMinSize,
	}
}

func (cfg Config) withDefaults() (Config, error) {
	if !(cfg.Tolerance > 0) || math.IsInf(cfg.Tolerance, 1) {
		return cfg, fmt.Errorf("%w: got %g", ErrBadTolerance, cfg.Tolerance)
	}
	if cfg.Strategy == nil {
		cfg.Strategy = MinMax{}
	}
	if cfg.Estimator == nil {
		cfg.Estimator = CurvatureBound{}
	}
	if cfg.MinSize <= 0 || math.IsNaN(cfg.MinSize) {
		cfg.MinSize = DefaultMinSize
	}
	if cfg.Mode != TwoPerPatch && cfg.Mode != FourPerPatch {
		return cfg, fmt.Errorf("unknown triangulation mode %d", cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg, nil
}

// Stats summarizes a tessellation.
type Stats struct {
	Patches         int
	Discarded       int
	Dependencies    int
	PartialOverlaps int
	MaxDepth        int
}

// PatchSet is the stitched result of adaptive subdivision of a surface.
type PatchSet struct {
	// Patches are in creation order. Stitching has already moved the corners
	// of finer patches onto the edges of coarser neighbours.
	Patches []*Patch
	Stats   Stats

	s    psurf.Surface
	cfg  Config
	root connectivity
}

// Triangles triangulates the valid patches of the set.
func (ps *PatchSet) Triangles() []Triangle3 {
	return emit(ps.s, ps.cfg, ps.Patches)
}

// TessellatePatches adaptively subdivides s and stitches the resulting patches.
func TessellatePatches(s psurf.Surface, cfg Config) (*PatchSet, error) {
	if s == nil {
		panic("nil surface argument")
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	dom := s.Domain()
	if !(psurf.Width(dom, psurf.AxisU) > 0 && psurf.Width(dom, psurf.AxisV) > 0) {
		return nil, fmt.Errorf("%w: %+v", ErrBadDomain, dom)
	}
	t := newTessellator(s, cfg)
	root, err := t.subdivide(dom, 0)
	if err != nil {
		return nil, fmt.Errorf("tessellating surface: %w", err)
	}
	ps := &PatchSet{
		Patches: t.arena.list(),
		s:       s,
		cfg:     cfg,
		root:    root,
	}
	ps.Stats = Stats{
		Patches:         len(ps.Patches),
		Discarded:       int(t.stats.discarded),
		Dependencies:    int(t.stats.dependencies),
		PartialOverlaps: int(t.stats.partialOverlaps),
		MaxDepth:        int(t.stats.maxDepth),
	}
	t.log.Debug("surface subdivided",
		zap.Int("patches", ps.Stats.Patches),
		zap.Int("discarded", ps.Stats.Discarded),
		zap.Int("dependencies", ps.Stats.Dependencies),
		zap.Int("maxDepth", ps.Stats.MaxDepth),
	)
	return ps, nil
}

// Tessellate returns a crack free triangle mesh approximating s within the
// configured tolerance.
func Tessellate(s psurf.Surface, cfg Config) ([]Triangle3, error) {
	ps, err := TessellatePatches(s, cfg)
	if err != nil {
		return nil, err
	}
	return ps.Triangles(), nil
}

// PatchRenderer adapts adaptive tessellation to the Renderer interface.
// The surface is tessellated on the first call to ReadTriangles.
type PatchRenderer struct {
	s    psurf.Surface
	cfg  Config
	done bool
	out  SliceRenderer
}

var _ Renderer = (*PatchRenderer)(nil)

// NewPatchRenderer returns a Renderer that tessellates s with cfg.
func NewPatchRenderer(s psurf.Surface, cfg Config) *PatchRenderer {
	if s == nil {
		panic("nil surface argument")
	}
	return &PatchRenderer{s: s, cfg: cfg}
}

// ReadTriangles writes tessellated triangles into dst. It returns io.EOF once
// every triangle has been read.
func (pr *PatchRenderer) ReadTriangles(dst []Triangle3) (int, error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	if !pr.done {
		model, err := Tessellate(pr.s, pr.cfg)
		if err != nil {
			return 0, err
		}
		pr.out = SliceRenderer{unread: triangle3Buffer{buf: model}}
		pr.done = true
	}
	return pr.out.ReadTriangles(dst)
}

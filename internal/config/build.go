package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/psurf"
	"github.com/soypat/psurf/form3"
	"github.com/soypat/psurf/render"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// BuildSurface constructs the configured surface and applies its transform.
func (c *SurfaceConfig) BuildSurface() (psurf.Surface, error) {
	s, err := c.base()
	if err != nil {
		return nil, fmt.Errorf("%s surface: %w", c.Kind, err)
	}
	tf := c.Transform
	if tf == (TransformConfig{}) {
		return s, nil
	}
	scale := vec(tf.Scale)
	if scale == (r3.Vec{}) {
		scale = r3.Vec{X: 1, Y: 1, Z: 1}
	}
	var q r3.Rotation
	if tf.AngleDeg == 0 {
		q = r3.NewRotation(0, r3.Vec{Z: 1})
	} else {
		axis := vec(tf.Axis)
		if r3.Norm(axis) == 0 {
			return nil, errors.New("transform rotation axis is zero")
		}
		q = r3.NewRotation(psurf.DtoR(tf.AngleDeg), axis)
	}
	return form3.Transform(s, vec(tf.Position), scale, q)
}

func (c *SurfaceConfig) base() (psurf.Surface, error) {
	switch c.Kind {
	case "sphere":
		return form3.Sphere(c.Radius)
	case "cylinder":
		return form3.Cylinder(c.Height, c.Radius)
	case "torus":
		return form3.Torus(c.Major, c.Minor)
	case "plane":
		if c.Size <= 0 {
			return nil, errors.New("size <= 0")
		}
		h := c.Size / 2
		return form3.Plane(r3.Vec{X: -h, Y: -h}, r3.Vec{X: c.Size}, r3.Vec{Y: c.Size})
	case "sheet":
		return form3.Sheet(c.Size, c.Heights)
	case "bilinear":
		return form3.Bilinear(vec(c.Corners[0]), vec(c.Corners[1]), vec(c.Corners[2]), vec(c.Corners[3]))
	case "bezier":
		var ctl [4][4]r3.Vec
		for i := range ctl {
			for j := range ctl[i] {
				ctl[i][j] = vec(c.Control[i][j])
			}
		}
		return form3.Bezier(ctl)
	case "extrusion":
		profile := make([]r2.Vec, len(c.Profile))
		for i, p := range c.Profile {
			profile[i] = r2.Vec{X: p[0], Y: p[1]}
		}
		return form3.Extrusion(profile, c.Depth)
	}
	return nil, fmt.Errorf("unknown surface kind %q", c.Kind)
}

// RenderConfig converts the tessellation settings to a render.Config logging
// to log.
func (t *TessellationConfig) RenderConfig(log *zap.Logger) (render.Config, error) {
	if !(t.Tolerance > 0) || math.IsInf(t.Tolerance, 1) {
		return render.Config{}, fmt.Errorf("%w: got %g", render.ErrBadTolerance, t.Tolerance)
	}
	cfg := render.Config{
		Tolerance:     t.Tolerance,
		Normals:       t.Normals,
		UV:            t.UV,
		MinSize:       t.MinSize,
		ParallelDepth: t.ParallelDepth,
		Logger:        log,
	}
	switch t.Strategy {
	case "alternate":
		cfg.Strategy = render.Alternate{}
	case "", "minmax":
		cfg.Strategy = render.MinMax{}
	case "maxdeviation":
		cfg.Strategy = render.MaxDeviation{}
	default:
		return cfg, fmt.Errorf("unknown strategy %q", t.Strategy)
	}
	switch t.Estimator {
	case "", "curvature":
		cfg.Estimator = render.CurvatureBound{Samples: t.Samples}
	case "bilinear":
		cfg.Estimator = render.BilinearDeviation{Samples: t.Samples}
	default:
		return cfg, fmt.Errorf("unknown estimator %q", t.Estimator)
	}
	if t.Clip != nil {
		cfg.Estimator = render.Clipped{
			Bounds:    r3.Box{Min: vec(t.Clip.Min), Max: vec(t.Clip.Max)},
			Estimator: cfg.Estimator,
		}
	}
	switch t.Mode {
	case "", render.TwoPerPatch.String():
		cfg.Mode = render.TwoPerPatch
	case render.FourPerPatch.String():
		cfg.Mode = render.FourPerPatch
	default:
		return cfg, fmt.Errorf("unknown triangulation mode %q", t.Mode)
	}
	return cfg, nil
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

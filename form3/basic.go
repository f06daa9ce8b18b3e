package form3

import (
	"fmt"
	"runtime/debug"

	"github.com/soypat/psurf"
	"github.com/soypat/psurf/form3/must3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// recoverShape converts a panic raised by a must3 constructor into an error.
func recoverShape(err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}

// Plane returns a flat parallelogram with corner at origin and edges du, dv.
func Plane(origin, du, dv r3.Vec) (s psurf.Surface, err error) {
	defer recoverShape(&err)
	return must3.Plane(origin, du, dv), err
}

// Bilinear returns the bilinear surface through four corners ordered
// (0,0), (1,0), (1,1), (0,1) in parameter space.
func Bilinear(p00, p10, p11, p01 r3.Vec) (s psurf.Surface, err error) {
	defer recoverShape(&err)
	return must3.Bilinear(p00, p10, p11, p01), err
}

// Sphere returns a sphere surface parametrized by longitude and latitude.
func Sphere(radius float64) (s psurf.Surface, err error) {
	defer recoverShape(&err)
	return must3.Sphere(radius), err
}

// Cylinder returns an open cylinder surface along Z.
func Cylinder(height, radius float64) (s psurf.Surface, err error) {
	defer recoverShape(&err)
	return must3.Cylinder(height, radius), err
}

// Torus returns a torus surface around Z.
func Torus(major, minor float64) (s psurf.Surface, err error) {
	defer recoverShape(&err)
	return must3.Torus(major, minor), err
}

// Bezier returns a bicubic Bézier patch from a 4x4 control net indexed [u][v].
func Bezier(ctl [4][4]r3.Vec) (s psurf.Surface, err error) {
	defer recoverShape(&err)
	return must3.Bezier(ctl), err
}

// Extrusion sweeps an XZ polyline profile along Y. Profile vertices
// are reported as C1 discontinuities.
func Extrusion(profile []r2.Vec, depth float64) (s psurf.Surface, err error) {
	defer recoverShape(&err)
	return must3.Extrusion(profile, depth), err
}

// Transform places s with a rotation, per-axis scaling and translation.
func Transform(s psurf.Surface, position, scale r3.Vec, q r3.Rotation) (out psurf.Surface, err error) {
	defer recoverShape(&err)
	return must3.Transform(s, position, scale, q), err
}

// Sheet returns a bicubic Bézier patch over the square [-size/2, size/2]²
// in XY whose control net heights are given by z, indexed [u][v].
func Sheet(size float64, z [4][4]float64) (psurf.Surface, error) {
	if size <= 0 {
		return nil, ErrMsg("size <= 0")
	}
	var ctl [4][4]r3.Vec
	for i := range ctl {
		for j := range ctl[i] {
			ctl[i][j] = r3.Vec{
				X: size * (float64(i)/3 - 0.5),
				Y: size * (float64(j)/3 - 0.5),
				Z: z[i][j],
			}
		}
	}
	return Bezier(ctl)
}

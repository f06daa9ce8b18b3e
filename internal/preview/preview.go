// Package preview rasterizes tessellated triangles to a shaded PNG image.
package preview

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/psurf/internal/d3"
	"github.com/soypat/psurf/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Background is the color of pixels not covered by the model.
var Background = fauxgl.HexColor("#FFF8E3")

// View describes the camera. The model is fitted to a bi-unit cube centred
// at the origin before drawing.
type View struct {
	// what position (point) to look at
	Lookat r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye  r3.Vec
	Near float64
	Far  float64
	// Supersample renders at a multiple of the output size and downsamples
	// for antialiasing. Values below 1 are read as 1.
	Supersample int
}

// DefaultView is an isometric view from the +X+Y+Z octant.
var DefaultView = View{
	Up:          r3.Vec{Z: 1},
	Eye:         d3.Elem(2.4),
	Near:        1,
	Far:         10,
	Supersample: 2,
}

// Render draws model as seen from view into a width by height image.
// Vertex normals are used for shading when present.
func Render(model []render.Triangle3, width, height int, view View) (image.Image, error) {
	if len(model) == 0 {
		return nil, errors.New("empty model")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("image dimensions must be positive")
	}
	scale := view.Supersample
	if scale < 1 {
		scale = 1
	}
	const fovy = 30 // vertical field of view in degrees
	var (
		eye    = fvec(view.Eye)
		center = fvec(view.Lookat)
		up     = fvec(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	mesh := toMesh(model)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(Background)
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	}
	return img, nil
}

// SavePNG renders model with DefaultView to a size by size PNG at path.
func SavePNG(path string, model []render.Triangle3, size int) error {
	img, err := Render(model, size, size, DefaultView)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

func toMesh(model []render.Triangle3) *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, 0, len(model))
	for _, t := range model {
		ft := fauxgl.NewTriangleForPoints(fvec(t.V[0]), fvec(t.V[1]), fvec(t.V[2]))
		if t.N != ([3]r3.Vec{}) {
			ft.V1.Normal = fvec(t.N[0])
			ft.V2.Normal = fvec(t.N[1])
			ft.V3.Normal = fvec(t.N[2])
		}
		tris = append(tris, ft)
	}
	return fauxgl.NewTriangleMesh(tris)
}

func fvec(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }

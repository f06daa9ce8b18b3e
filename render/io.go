package render

import "io"

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF, like the io.ReadAll implementation.
// Triangles read alongside an error are kept.
func RenderAll(r Renderer) ([]Triangle3, error) {
	result := make([]Triangle3, 0, 1<<12)
	buf := make([]Triangle3, 1024)
	for {
		nt, err := r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return result, err
		}
	}
}

// SliceRenderer serves an already tessellated model through the Renderer
// interface, for example to stream it to CreateSTL.
type SliceRenderer struct {
	unread triangle3Buffer
}

var _ Renderer = (*SliceRenderer)(nil)

// NewSliceRenderer returns a Renderer reading model. The slice is not copied.
func NewSliceRenderer(model []Triangle3) *SliceRenderer {
	return &SliceRenderer{unread: triangle3Buffer{buf: model}}
}

// ReadTriangles copies unread triangles into dst and returns io.EOF once the
// model is exhausted.
func (sr *SliceRenderer) ReadTriangles(dst []Triangle3) (int, error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	if sr.unread.Len() == 0 {
		return 0, io.EOF
	}
	return sr.unread.Read(dst), nil
}

type triangle3Buffer struct {
	buf []Triangle3
}

// Read reads from this buffer.
func (b *triangle3Buffer) Read(t []Triangle3) int {
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n
}

func (b *triangle3Buffer) Len() int { return len(b.buf) }

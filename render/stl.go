package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
)

// CreateSTL writes the triangles read from r to a binary STL file at path.
// The triangle count is written once r has been drained.
func CreateSTL(path string, r Renderer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	// Header is written last, once the count is known.
	if _, err = file.Seek(stlHeaderSize, io.SeekStart); err != nil {
		return err
	}
	rd := &stlReader{r: r}
	n, err := io.CopyBuffer(file, rd, make([]byte, stlTriangleSize*trianglesInBuffer))
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if n == 0 {
		return errors.New("renderer produced no triangles")
	}
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	header := stlHeader{Count: uint32(n / stlTriangleSize)}
	if err = binary.Write(file, binary.LittleEndian, &header); err != nil {
		return err
	}
	return file.Close()
}

// WriteSTL writes model triangles to a writer in binary STL file format.
// Face normals are computed from the vertex winding.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	header := stlHeader{Count: uint32(len(model))}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	buf := make([]byte, stlTriangleSize*min(len(model), trianglesInBuffer))
	for len(model) > 0 {
		n := min(len(model), trianglesInBuffer)
		for i, t := range model[:n] {
			fromTriangle3(t).put(buf[i*stlTriangleSize:])
		}
		if _, err := w.Write(buf[:n*stlTriangleSize]); err != nil {
			return err
		}
		model = model[n:]
	}
	return nil
}

// ReadSTL reads a binary STL model. Only vertex positions are recovered.
func ReadSTL(r io.Reader) ([]Triangle3, error) {
	return readBinarySTL(r)
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

const trianglesInBuffer = 1 << 10

// stlReader encodes triangles from a Renderer as STL triangle records.
type stlReader struct {
	r   Renderer
	buf [trianglesInBuffer]Triangle3
}

func (w *stlReader) Read(b []byte) (int, error) {
	ntMax := min(len(b)/stlTriangleSize, len(w.buf))
	if ntMax == 0 {
		return 0, errors.New("stlReader requires at least 50 bytes to write a single triangle")
	}
	var (
		err error
		it  int // Number of triangles written to byte buffer
		nt  int // number of triangles read during ReadTriangles
	)
	for it < ntMax && err == nil {
		nt, err = w.r.ReadTriangles(w.buf[:ntMax-it])
		if nt > ntMax-it {
			panic("bug: ReadTriangles read more triangles than available in buffer")
		}
		for _, t := range w.buf[:nt] {
			fromTriangle3(t).put(b[it*stlTriangleSize:])
			it++
		}
	}
	return it * stlTriangleSize, err
}

func readBinarySTL(r io.Reader) (output []Triangle3, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, fmt.Errorf("STL header read failed: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf            [stlTriangleSize]byte
		d              stlTriangle
		i              int
		normMismatches int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, errCalculatedNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	output = make([]Triangle3, 0, header.Count)
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, errCalculatedNormalMismatch) {
				return nil, err
			}
			normMismatches++
			if normMismatches > 10_000 {
				// This may be valid output, so we return the triangles.
				return output, fmt.Errorf("got too many normal vector mismatches (%d)", normMismatches)
			}
			readErr = err
		}
		output = append(output, d.toTriangle3())
	}
	// NormalMismatch error validation may be returned.
	// For high resolution models this error may be incorrectly returned.
	return output, readErr
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal [3]float32
	Vertex [3][3]float32
	_      uint16 // Attribute byte count
}

func fromTriangle3(t Triangle3) (d stlTriangle) {
	d.Normal = to3F32(t.Normal())
	for i := range t.V {
		d.Vertex[i] = to3F32(t.V[i])
	}
	return d
}

func (d stlTriangle) toTriangle3() (t Triangle3) {
	for i := range d.Vertex {
		t.V[i] = r3From3F32(d.Vertex[i])
	}
	return t
}

func (d stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, d.Normal)
	put3F32(b[12:], d.Vertex[0])
	put3F32(b[24:], d.Vertex[1])
	put3F32(b[36:], d.Vertex[2])
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (d *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &d.Normal)
	get3F32(b[12:], &d.Vertex[0])
	get3F32(b[24:], &d.Vertex[1])
	get3F32(b[36:], &d.Vertex[2])
	// no attributes supported yet.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

var errCalculatedNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices. Ignore this error if model is OK")

func (d stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(d.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(d.Vertex[0]) || bad3F32(d.Vertex[1]) || bad3F32(d.Vertex[2]) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if d.degenerate(epsilon) {
		return errors.New("triangle is degenerate")
	}
	calc := to3F32(d.toTriangle3().Normal())
	calcNeg := [3]float32{-calc[0], -calc[1], -calc[2]}
	if !equalWithin3F32(calc, d.Normal, normTol) && !equalWithin3F32(calcNeg, d.Normal, normTol) {
		return errCalculatedNormalMismatch // sometimes may fail
	}
	return nil
}

// degenerate returns true if two vertices coincide.
func (d stlTriangle) degenerate(tol float32) bool {
	return equalWithin3F32(d.Vertex[0], d.Vertex[1], tol) ||
		equalWithin3F32(d.Vertex[1], d.Vertex[2], tol) ||
		equalWithin3F32(d.Vertex[2], d.Vertex[0], tol)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func to3F32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func min(a, b int) int {
	if a <= b {
		return a
	}
	return b
}

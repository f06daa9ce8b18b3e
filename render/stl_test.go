package render

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/psurf"
	"github.com/soypat/psurf/form3/must3"
	"github.com/soypat/psurf/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func sheetModel(t testing.TB) []Triangle3 {
	model, err := Tessellate(bumpSheet(), DefaultConfig(0.01))
	if err != nil {
		t.Fatal(err)
	}
	return model
}

func TestSTLWriteReadback(t *testing.T) {
	const tol = 1e-6
	input := sheetModel(t)
	var b bytes.Buffer
	err := WriteSTL(&b, input)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != stlHeaderSize+stlTriangleSize*len(input) {
		t.Fatalf("got %d bytes for %d triangles", b.Len(), len(input))
	}
	output, err := ReadSTL(&b)
	if err != nil && !errors.Is(err, errCalculatedNormalMismatch) {
		t.Fatal(err)
	}
	if len(output) != len(input) {
		t.Fatal("length of triangles written/read not equal")
	}
	mismatches := 0
	for iface, expect := range input {
		got := output[iface]
		if got.Degenerate(1e-12) {
			t.Fatalf("triangle degenerate: %+v", got)
		}
		for i := range expect.V {
			if !d3.EqualWithin(got.V[i], expect.V[i], tol) {
				mismatches++
				t.Errorf("%dth triangle equality out of tolerance. got vertex %0.5g, want %0.5g", iface, got.V[i], expect.V[i])
			}
		}
		if mismatches > 10 {
			t.Fatal("too many mismatches")
		}
	}
}

func TestSTLCreateWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.stl")
	s := bumpSheet()
	cfg := DefaultConfig(0.01)
	err := CreateSTL(path, NewPatchRenderer(s, cfg))
	if err != nil {
		t.Fatal(err)
	}
	bfile, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = WriteSTL(&b, sheetModel(t))
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != len(bfile) {
		t.Fatal("WriteSTL and CreateSTL output length mismatch")
	}
	if !bytes.Equal(b.Bytes(), bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
}

func TestSTLReadErrors(t *testing.T) {
	if _, err := ReadSTL(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Error("expected error on short header")
	}
	if _, err := ReadSTL(bytes.NewReader(make([]byte, stlHeaderSize))); err == nil {
		t.Error("expected error on empty model")
	}
	var b bytes.Buffer
	model := []Triangle3{{V: [3]r3.Vec{{}, {X: 1}, {Y: 1}}}}
	if err := WriteSTL(&b, model); err != nil {
		t.Fatal(err)
	}
	truncated := b.Bytes()[:b.Len()-10]
	if _, err := ReadSTL(bytes.NewReader(truncated)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected EOF, got %v", err)
	}
	if err := WriteSTL(&b, nil); err == nil {
		t.Error("expected error writing empty model")
	}
}

type oneAtATime struct {
	r Renderer
}

func (o oneAtATime) ReadTriangles(dst []Triangle3) (int, error) {
	return o.r.ReadTriangles(dst[:1])
}

func TestSTLReaderPartialBatches(t *testing.T) {
	s := must3.Plane(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	cfg := DefaultConfig(0.5)
	cfg.Estimator = EstimatorFunc(func(_ psurf.Surface, _ r2.Box, _ psurf.Axis, depth int) float64 {
		if depth < 4 {
			return 1
		}
		return 0
	})
	want, err := Tessellate(s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "plane.stl")
	if err := CreateSTL(path, oneAtATime{NewPatchRenderer(s, cfg)}); err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	got, err := ReadSTL(fp)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) || len(want) != 32 {
		t.Errorf("read %d triangles, want %d (32)", len(got), len(want))
	}
}

// eofWithData returns its last triangles together with io.EOF.
type eofWithData struct {
	model []Triangle3
}

func (e *eofWithData) ReadTriangles(dst []Triangle3) (int, error) {
	n := copy(dst, e.model)
	e.model = e.model[n:]
	if len(e.model) == 0 {
		return n, io.EOF
	}
	return n, nil
}

func TestRenderAllKeepsFinalBatch(t *testing.T) {
	model := sheetModel(t)
	got, err := RenderAll(&eofWithData{model: model})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(model) {
		t.Fatalf("read %d triangles, want %d", len(got), len(model))
	}
	got, err = RenderAll(NewSliceRenderer(model))
	if err != nil || len(got) != len(model) {
		t.Fatalf("slice renderer read %d triangles, err %v", len(got), err)
	}
	if _, err := NewSliceRenderer(nil).ReadTriangles(make([]Triangle3, 1)); err != io.EOF {
		t.Errorf("expected io.EOF from empty renderer, got %v", err)
	}
}

package wom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/wurmonline/womconverter/pkg/scene"
)

// fixture builds expected little-endian bytes.
type fixture struct {
	bytes.Buffer
}

func (f *fixture) i32(vs ...int32) {
	for _, v := range vs {
		binary.Write(&f.Buffer, binary.LittleEndian, v)
	}
}

func (f *fixture) u16(vs ...uint16) {
	for _, v := range vs {
		binary.Write(&f.Buffer, binary.LittleEndian, v)
	}
}

func (f *fixture) f32(vs ...float32) {
	for _, v := range vs {
		binary.Write(&f.Buffer, binary.LittleEndian, v)
	}
}

func (f *fixture) u8(vs ...uint8) {
	f.Buffer.Write(vs)
}

func (f *fixture) str(s string) {
	f.i32(int32(len(s)))
	f.Buffer.WriteString(s)
}

// makeTriangleScene returns one mesh with three vertices, one triangle and an
// untextured material named "M" with zero-valued properties.
func makeTriangleScene() *scene.Scene {
	return &scene.Scene{
		Materials: []scene.Material{{Name: "M"}},
		Meshes: []scene.Mesh{{
			Name:      "tri",
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
			TexCoords: [][2]float32{{0, 0}, {1, 0}, {0, 1}},
			Faces:     []scene.Face{{0, 1, 2}},
		}},
		Root: scene.NewNode("root"),
	}
}

// makeStripMesh returns a mesh with n vertices laid out on a strip.
func makeStripMesh(name string, n int) scene.Mesh {
	m := scene.Mesh{Name: name}
	for i := 0; i < n; i++ {
		m.Positions = append(m.Positions, [3]float32{float32(i), float32(i % 2), 0})
		m.Normals = append(m.Normals, [3]float32{0, 0, 1})
		m.TexCoords = append(m.TexCoords, [2]float32{float32(i) / float32(n), 0.25})
	}
	return m
}

func encode(t *testing.T, sc *scene.Scene, opts EncodeOptions) ([]byte, *Stats) {
	t.Helper()
	var buf bytes.Buffer
	stats, err := Encode(&buf, sc, opts)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return buf.Bytes(), stats
}

type mapTable map[string]string

func (m mapTable) Lookup(texture string) (string, bool) {
	name, ok := m[texture]
	return name, ok
}

type recorded struct {
	material, texture string
}

type sliceRecorder struct {
	entries []recorded
}

func (r *sliceRecorder) Record(material, texture string) {
	r.entries = append(r.entries, recorded{material, texture})
}

// failingWriter accepts limit bytes and then fails.
type failingWriter struct {
	limit int
	n     int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.limit {
		accepted := w.limit - w.n
		w.n = w.limit
		return accepted, errDiskFull
	}
	w.n += len(p)
	return len(p), nil
}

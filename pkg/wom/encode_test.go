package wom

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wurmonline/womconverter/pkg/scene"
)

func TestEncode_TriangleScene(t *testing.T) {
	data, stats := encode(t, makeTriangleScene(), EncodeOptions{})

	var want fixture
	want.i32(1)       // mesh count
	want.u8(0, 0, 0)  // tangents, bitangents, colors
	want.str("tri")   // mesh name
	want.i32(3)       // vertex count
	want.f32(0, 0, 0, 0, 0, 1, 0, 1)
	want.f32(1, 0, 0, 0, 0, 1, 1, 1)
	want.f32(0, 1, 0, 0, 0, 1, 0, 0)
	want.i32(3) // index count
	want.u16(0, 1, 2)
	want.i32(1) // material count
	want.str("")
	want.str("M")
	want.u8(1) // enabled
	want.u8(1)
	want.f32(0, 0, 0, 0)
	want.u8(1)
	want.f32(0)
	want.u8(1)
	want.f32(0, 0, 0, 0)
	want.u8(1)
	want.f32(0, 0, 0, 0)
	want.i32(0) // node count
	want.u8(0)  // skinning

	if !bytes.Equal(data, want.Bytes()) {
		t.Errorf("encoded bytes differ\n got % x\nwant % x", data, want.Bytes())
	}
	if stats.Bytes != int64(want.Len()) {
		t.Errorf("stats.Bytes = %d, want %d", stats.Bytes, want.Len())
	}
	if len(stats.Meshes) != 1 || stats.Meshes[0].Faces != 1 || stats.Meshes[0].SkippedFaces != 0 {
		t.Errorf("unexpected mesh stats: %+v", stats.Meshes)
	}
}

func TestEncode_OptionalAttributes(t *testing.T) {
	plain := makeTriangleScene()
	base, _ := encode(t, plain, EncodeOptions{})

	full := makeTriangleScene()
	m := &full.Meshes[0]
	m.Colors = [][4]float32{{1, 0, 0, 0.5}, {0, 1, 0, 0.5}, {0, 0, 1, 0.5}}
	m.Tangents = [][3]float32{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}}
	m.Bitangents = [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}}
	data, stats := encode(t, full, EncodeOptions{})

	// 3 vertices, 9 extra floats each
	if got, want := len(data)-len(base), 3*9*4; got != want {
		t.Errorf("optional attributes added %d bytes, want %d", got, want)
	}
	if !stats.Meshes[0].HasColors || !stats.Meshes[0].HasTangents || !stats.Meshes[0].HasBitangents {
		t.Errorf("presence flags not reported: %+v", stats.Meshes[0])
	}

	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	v := f.Meshes[0].Vertices[2]
	if v.Color != [3]float32{0, 0, 1} {
		t.Errorf("color = %v, want alpha dropped [0 0 1]", v.Color)
	}
	if v.Tangent != [3]float32{1, 0, 0} || v.Bitangent != [3]float32{0, 1, 0} {
		t.Errorf("tangent frame = %v / %v", v.Tangent, v.Bitangent)
	}
}

func TestEncode_PresenceFlagOrder(t *testing.T) {
	tests := []struct {
		name string
		set  func(m *scene.Mesh)
		want []byte
	}{
		{"tangents", func(m *scene.Mesh) { m.Tangents = make([][3]float32, 3) }, []byte{1, 0, 0}},
		{"bitangents", func(m *scene.Mesh) { m.Bitangents = make([][3]float32, 3) }, []byte{0, 1, 0}},
		{"colors", func(m *scene.Mesh) { m.Colors = make([][4]float32, 3) }, []byte{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := makeTriangleScene()
			tt.set(&sc.Meshes[0])
			data, _ := encode(t, sc, EncodeOptions{})
			if got := data[4:7]; !bytes.Equal(got, tt.want) {
				t.Errorf("flags = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncode_SkipsNonTriangles(t *testing.T) {
	tests := []struct {
		name        string
		faces       []scene.Face
		wantIndices []uint16
		wantSkipped int
	}{
		{
			name:        "quad dropped",
			faces:       []scene.Face{{0, 1, 2, 3}, {0, 1, 2}},
			wantIndices: []uint16{0, 1, 2},
			wantSkipped: 1,
		},
		{
			name:        "lines and points dropped",
			faces:       []scene.Face{{0, 1}, {3}, {1, 2, 3}},
			wantIndices: []uint16{1, 2, 3},
			wantSkipped: 2,
		},
		{
			name:        "all faces non-triangular",
			faces:       []scene.Face{{0, 1, 2, 3}, {0, 1}},
			wantIndices: []uint16{},
			wantSkipped: 2,
		},
		{
			name:        "no faces",
			faces:       nil,
			wantIndices: []uint16{},
			wantSkipped: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := makeStripMesh("strip", 4)
			mesh.Faces = tt.faces
			sc := &scene.Scene{
				Materials: []scene.Material{{Name: "M"}},
				Meshes:    []scene.Mesh{mesh},
			}

			data, stats := encode(t, sc, EncodeOptions{})
			if stats.SkippedFaces() != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", stats.SkippedFaces(), tt.wantSkipped)
			}

			f, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			got := f.Meshes[0].Indices
			if len(got) != len(tt.wantIndices) {
				t.Fatalf("indices = %v, want %v", got, tt.wantIndices)
			}
			for i := range got {
				if got[i] != tt.wantIndices[i] {
					t.Errorf("index %d = %d, want %d", i, got[i], tt.wantIndices[i])
				}
			}
		})
	}
}

func TestEncode_IndexLimit(t *testing.T) {
	tests := []struct {
		name    string
		index   uint32
		wantErr error
	}{
		{"max uint16", 65535, nil},
		{"one past max", 65536, ErrMeshTooLarge},
		{"far past max", 1 << 20, ErrMeshTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := makeTriangleScene()
			sc.Meshes[0].Faces = []scene.Face{{0, 1, tt.index}}

			var buf bytes.Buffer
			_, err := Encode(&buf, sc, EncodeOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			f, err := Parse(buf.Bytes())
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := f.Meshes[0].Indices[2]; got != 65535 {
				t.Errorf("index = %d, want 65535", got)
			}
		})
	}
}

func TestEncode_MeshTooLargeNamesMesh(t *testing.T) {
	sc := makeTriangleScene()
	sc.Meshes[0].Name = "bigrock"
	sc.Meshes[0].Faces = []scene.Face{{0, 1, 70000}}

	_, err := Encode(&bytes.Buffer{}, sc, EncodeOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("bigrock")) {
		t.Errorf("error %q does not name the mesh", err)
	}
}

func TestEncode_UVFlip(t *testing.T) {
	sc := &scene.Scene{
		Materials: []scene.Material{{Name: "M"}},
		Meshes:    []scene.Mesh{makeStripMesh("strip", 2)},
	}
	data, _ := encode(t, sc, EncodeOptions{})

	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for i, v := range f.Meshes[0].Vertices {
		if v.UV[1] != 0.75 {
			t.Errorf("vertex %d v = %f, want 0.75", i, v.UV[1])
		}
	}
}

func TestEncode_ZeroVertexMesh(t *testing.T) {
	sc := &scene.Scene{
		Materials: []scene.Material{{Name: "M"}},
		Meshes:    []scene.Mesh{{Name: "empty"}},
	}
	data, _ := encode(t, sc, EncodeOptions{})

	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Meshes) != 1 || len(f.Meshes[0].Vertices) != 0 || len(f.Meshes[0].Indices) != 0 {
		t.Errorf("unexpected mesh: %+v", f.Meshes)
	}
}

func TestEncode_Material(t *testing.T) {
	tests := []struct {
		name        string
		texture     string
		overrides   OverrideTable
		wantTexture string
		wantName    string
	}{
		{"forward slash", "textures/foo.png", nil, "foo.png", "Native"},
		{"back slash", "textures\\foo.png", nil, "foo.png", "Native"},
		{"override", "textures/foo.png", mapTable{"foo.png": "Foo_Override"}, "foo.png", "Foo_Override"},
		{"override miss", "textures/bar.png", mapTable{"foo.png": "Foo_Override"}, "bar.png", "Native"},
		{"untextured", "", mapTable{"foo.png": "Foo_Override"}, "", "Native"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := makeTriangleScene()
			sc.Materials[0] = scene.Material{
				Name:           "Native",
				DiffuseTexture: tt.texture,
				Emissive:       scene.Color{0.1, 0.2, 0.3, 1},
				Shininess:      32,
				Specular:       scene.Color{0.5, 0.5, 0.5, 1},
				Transparent:    scene.Color{0, 0, 0, 0},
			}
			rec := &sliceRecorder{}

			data, stats := encode(t, sc, EncodeOptions{Overrides: tt.overrides, Recorder: rec})

			f, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			mats := f.Meshes[0].Materials
			if len(mats) != 1 {
				t.Fatalf("material count = %d, want 1", len(mats))
			}
			mat := mats[0]
			if mat.Texture != tt.wantTexture || mat.Name != tt.wantName {
				t.Errorf("material = (%q, %q), want (%q, %q)", mat.Texture, mat.Name, tt.wantTexture, tt.wantName)
			}
			if !mat.Enabled {
				t.Error("material not enabled")
			}
			for _, p := range []Property{mat.Emissive, mat.Shininess, mat.Specular, mat.Transparency} {
				if !p.Exists {
					t.Error("property exists flag not set")
				}
			}
			if mat.Emissive.Values[2] != 0.3 || mat.Shininess.Values[0] != 32 || mat.Specular.Values[0] != 0.5 {
				t.Errorf("property values = %v %v %v", mat.Emissive.Values, mat.Shininess.Values, mat.Specular.Values)
			}

			if len(rec.entries) != 1 || rec.entries[0] != (recorded{tt.wantName, tt.wantTexture}) {
				t.Errorf("recorded %v", rec.entries)
			}
			if stats.Materials[0].Overridden != (tt.wantName == "Foo_Override") {
				t.Errorf("Overridden = %v", stats.Materials[0].Overridden)
			}
		})
	}
}

func TestEncode_FixMeshNames(t *testing.T) {
	sc := &scene.Scene{
		Materials: []scene.Material{
			{Name: "a", DiffuseTexture: "tex/rock.diffuse.png"},
			{Name: "b", DiffuseTexture: "grass.png"},
		},
		Meshes: []scene.Mesh{
			makeStripMesh("one", 3),
			makeStripMesh("two", 3),
			makeStripMesh("three", 3),
		},
	}
	sc.Meshes[1].MaterialIndex = 1

	for run := 0; run < 2; run++ {
		_, stats := encode(t, sc, EncodeOptions{FixMeshNames: true})
		want := []string{"rock-1", "grass-1", "rock-2"}
		for i, m := range stats.Meshes {
			if m.Name != want[i] {
				t.Errorf("run %d mesh %d name = %q, want %q", run, i, m.Name, want[i])
			}
		}
	}

	_, stats := encode(t, sc, EncodeOptions{})
	if stats.Meshes[0].Name != "one" {
		t.Errorf("native name = %q, want %q", stats.Meshes[0].Name, "one")
	}
}

func TestEncode_Nodes(t *testing.T) {
	sc := makeTriangleScene()
	arm := scene.NewNode("wom-Arm")
	arm.Transform = mgl32.Translate3D(1, 2, 3)
	arm.AddChild(scene.NewNode("wom-Nested"))
	sc.Root.AddChild(arm)
	sc.Root.AddChild(scene.NewNode("Leg"))
	sc.Root.AddChild(scene.NewNode("wom-Head"))

	data, stats := encode(t, sc, EncodeOptions{})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(f.Nodes) != 2 {
		t.Fatalf("node count = %d, want 2", len(f.Nodes))
	}
	if f.Nodes[0].Name != "Arm" || f.Nodes[1].Name != "Head" {
		t.Errorf("node names = %q, %q", f.Nodes[0].Name, f.Nodes[1].Name)
	}
	for _, n := range f.Nodes {
		if n.Parent != "" || n.Reserved != 0 || n.Extra != [16]float32{} {
			t.Errorf("reserved fields not empty: %+v", n)
		}
	}

	want := [16]float32{
		1, 0, 0, 1,
		0, 1, 0, 2,
		0, 0, 1, 3,
		0, 0, 0, 1,
	}
	if f.Nodes[0].Transform != want {
		t.Errorf("transform = %v, want row-major %v", f.Nodes[0].Transform, want)
	}

	if len(stats.Nodes) != 3 || stats.SelectedNodes() != 2 || stats.Nodes[1].Selected {
		t.Errorf("unexpected node stats: %+v", stats.Nodes)
	}
}

func TestEncode_NilRoot(t *testing.T) {
	sc := makeTriangleScene()
	sc.Root = nil
	data, _ := encode(t, sc, EncodeOptions{})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f.Nodes) != 0 {
		t.Errorf("node count = %d, want 0", len(f.Nodes))
	}
}

func TestEncode_InvalidScene(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(sc *scene.Scene)
		wantErr error
	}{
		{"missing normals", func(sc *scene.Scene) { sc.Meshes[0].Normals = nil }, scene.ErrMissingAttribute},
		{"short uvs", func(sc *scene.Scene) { sc.Meshes[0].TexCoords = sc.Meshes[0].TexCoords[:2] }, scene.ErrMissingAttribute},
		{"bad material", func(sc *scene.Scene) { sc.Meshes[0].MaterialIndex = 3 }, scene.ErrInvalidMaterialIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := makeTriangleScene()
			tt.mutate(sc)
			var buf bytes.Buffer
			_, err := Encode(&buf, sc, EncodeOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if buf.Len() != 0 {
				t.Errorf("%d bytes written before validation failed", buf.Len())
			}
		})
	}
}

func TestEncode_WriteFailure(t *testing.T) {
	_, err := Encode(&failingWriter{limit: 10}, makeTriangleScene(), EncodeOptions{})
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("err = %v, want ErrWriteFailed", err)
	}
}

func TestSelectNodes(t *testing.T) {
	root := scene.NewNode("root")
	root.AddChild(scene.NewNode("wom-Arm"))
	root.AddChild(scene.NewNode("Leg"))
	root.AddChild(scene.NewNode("wom-Head"))
	root.AddChild(scene.NewNode("WOM-upper"))

	got := SelectNodes(root)
	if len(got) != 2 || got[0].Name != "wom-Arm" || got[1].Name != "wom-Head" {
		t.Errorf("SelectNodes = %v", got)
	}
	if SelectNodes(nil) != nil {
		t.Error("SelectNodes(nil) should select nothing")
	}
	if SelectNodes(scene.NewNode("lonely")) != nil {
		t.Error("childless root should select nothing")
	}
}

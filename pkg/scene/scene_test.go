package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func makeMesh(n int) Mesh {
	return Mesh{
		Name:      "m",
		Positions: make([][3]float32, n),
		Normals:   make([][3]float32, n),
		TexCoords: make([][2]float32, n),
	}
}

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Mesh)
		wantErr error
	}{
		{"valid", func(m *Mesh) {}, nil},
		{"all optional present", func(m *Mesh) {
			m.Colors = make([][4]float32, 3)
			m.Tangents = make([][3]float32, 3)
			m.Bitangents = make([][3]float32, 3)
		}, nil},
		{"missing normals", func(m *Mesh) { m.Normals = nil }, ErrMissingAttribute},
		{"missing uvs", func(m *Mesh) { m.TexCoords = nil }, ErrMissingAttribute},
		{"short colors", func(m *Mesh) { m.Colors = make([][4]float32, 2) }, ErrMissingAttribute},
		{"long tangents", func(m *Mesh) { m.Tangents = make([][3]float32, 4) }, ErrMissingAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := makeMesh(3)
			tt.mutate(&m)
			err := m.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMeshValidate_Empty(t *testing.T) {
	m := Mesh{Name: "empty"}
	if err := m.Validate(); err != nil {
		t.Errorf("empty mesh should be valid, got %v", err)
	}
}

func TestSceneValidate_MaterialIndex(t *testing.T) {
	sc := &Scene{
		Materials: []Material{{Name: "a"}},
		Meshes:    []Mesh{makeMesh(3)},
	}
	if err := sc.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	for _, idx := range []int{-1, 1} {
		sc.Meshes[0].MaterialIndex = idx
		if err := sc.Validate(); !errors.Is(err, ErrInvalidMaterialIndex) {
			t.Errorf("index %d: Validate() = %v, want ErrInvalidMaterialIndex", idx, err)
		}
	}
}

func TestNewNode(t *testing.T) {
	root := NewNode("root")
	if root.Transform != mgl32.Ident4() {
		t.Errorf("transform = %v, want identity", root.Transform)
	}
	child := root.AddChild(NewNode("wom-a"))
	if len(root.Children) != 1 || root.Children[0] != child {
		t.Errorf("AddChild did not append")
	}
}

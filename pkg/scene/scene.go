// Package scene holds the imported model graph consumed by the WOM encoder.
//
// Values in this package are plain data: importers build them once and the
// encoder only reads them.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Scene validation errors.
var (
	ErrMissingAttribute     = errors.New("mesh is missing a required vertex attribute")
	ErrInvalidMaterialIndex = errors.New("mesh references a material that does not exist")
)

// Color is an RGBA color with float components.
type Color [4]float32

// R returns the red component.
func (c Color) R() float32 { return c[0] }

// G returns the green component.
func (c Color) G() float32 { return c[1] }

// B returns the blue component.
func (c Color) B() float32 { return c[2] }

// A returns the alpha component.
func (c Color) A() float32 { return c[3] }

// Face lists vertex indices of one polygon. Triangles have exactly 3.
type Face []uint32

// Mesh is a named block of geometry with a single material.
type Mesh struct {
	Name string

	// Per-vertex attributes. Positions, Normals and TexCoords are required;
	// Colors, Tangents and Bitangents are either absent (nil) or hold one
	// entry per vertex.
	Positions  [][3]float32
	Normals    [][3]float32
	TexCoords  [][2]float32
	Colors     [][4]float32
	Tangents   [][3]float32
	Bitangents [][3]float32

	Faces         []Face
	MaterialIndex int
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// HasTangents reports whether the mesh carries per-vertex tangents.
func (m *Mesh) HasTangents() bool {
	return len(m.Tangents) > 0
}

// HasBitangents reports whether the mesh carries per-vertex bitangents.
func (m *Mesh) HasBitangents() bool {
	return len(m.Bitangents) > 0
}

// HasColors reports whether the mesh carries per-vertex colors.
func (m *Mesh) HasColors() bool {
	return len(m.Colors) > 0
}

// Validate checks that every attribute array matches the vertex count.
func (m *Mesh) Validate() error {
	n := len(m.Positions)

	required := []struct {
		name  string
		count int
	}{
		{"normals", len(m.Normals)},
		{"texture coordinates", len(m.TexCoords)},
	}
	for _, attr := range required {
		if attr.count != n {
			return errors.Wrapf(ErrMissingAttribute, "mesh %q has %d %s for %d vertices", m.Name, attr.count, attr.name, n)
		}
	}

	optional := []struct {
		name  string
		count int
	}{
		{"colors", len(m.Colors)},
		{"tangents", len(m.Tangents)},
		{"bitangents", len(m.Bitangents)},
	}
	for _, attr := range optional {
		if attr.count != 0 && attr.count != n {
			return errors.Wrapf(ErrMissingAttribute, "mesh %q has %d %s for %d vertices", m.Name, attr.count, attr.name, n)
		}
	}

	return nil
}

// Material describes how a mesh is shaded.
type Material struct {
	Name string

	// DiffuseTexture is the texture reference as stored by the source file,
	// possibly with a directory prefix. Empty when the material is untextured.
	DiffuseTexture string

	Emissive    Color
	Specular    Color
	Transparent Color
	Shininess   float32
}

// Node is an element of the scene hierarchy.
type Node struct {
	Name      string
	Transform mgl32.Mat4
	Children  []*Node

	// Meshes lists indices into Scene.Meshes drawn by this node.
	Meshes []int
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Transform: mgl32.Ident4(),
	}
}

// AddChild appends child to the node's children and returns it.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// Scene is the root of an imported model.
type Scene struct {
	Materials []Material
	Meshes    []Mesh
	Root      *Node
}

// Material returns the material referenced by mesh i.
func (s *Scene) Material(mesh int) *Material {
	return &s.Materials[s.Meshes[mesh].MaterialIndex]
}

// Validate checks material references and per-mesh attribute counts.
func (s *Scene) Validate() error {
	for i := range s.Meshes {
		m := &s.Meshes[i]
		if m.MaterialIndex < 0 || m.MaterialIndex >= len(s.Materials) {
			return errors.Wrapf(ErrInvalidMaterialIndex, "mesh %q uses material %d of %d", m.Name, m.MaterialIndex, len(s.Materials))
		}
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// String returns a short description of the scene.
func (s *Scene) String() string {
	rootName := "<none>"
	if s.Root != nil {
		rootName = s.Root.Name
	}
	return fmt.Sprintf("scene(meshes=%d, materials=%d, root=%s)", len(s.Meshes), len(s.Materials), rootName)
}

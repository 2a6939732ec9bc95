package importer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/wurmonline/womconverter/pkg/scene"
)

// triangulate splits a polygon into a triangle fan around its first vertex.
// Points and lines are returned unchanged.
func triangulate(poly []uint32) []scene.Face {
	if len(poly) <= 3 {
		return []scene.Face{append(scene.Face(nil), poly...)}
	}
	faces := make([]scene.Face, 0, len(poly)-2)
	for i := 1; i+1 < len(poly); i++ {
		faces = append(faces, scene.Face{poly[0], poly[i], poly[i+1]})
	}
	return faces
}

// vertexKey identifies one source vertex by its attribute indices. -1 marks
// an unused attribute.
type vertexKey struct {
	position, normal, texcoord, color, tangent, bitangent int
}

var noVertexKey = vertexKey{-1, -1, -1, -1, -1, -1}

// meshBuilder joins identical vertices while a mesh is assembled from
// indexed source attributes.
type meshBuilder struct {
	mesh  scene.Mesh
	index map[vertexKey]uint32
}

func newMeshBuilder(name string, material int) *meshBuilder {
	return &meshBuilder{
		mesh:  scene.Mesh{Name: name, MaterialIndex: material},
		index: make(map[vertexKey]uint32),
	}
}

// vertexSource holds the attribute pools a meshBuilder reads from.
type vertexSource struct {
	positions  [][3]float32
	normals    [][3]float32
	texcoords  [][2]float32
	colors     [][4]float32
	tangents   [][3]float32
	bitangents [][3]float32
}

// vertex returns the mesh index of the vertex described by key, appending it on first use.
func (b *meshBuilder) vertex(src *vertexSource, key vertexKey) uint32 {
	if idx, ok := b.index[key]; ok {
		return idx
	}
	idx := uint32(len(b.mesh.Positions))
	b.index[key] = idx

	m := &b.mesh
	m.Positions = append(m.Positions, pick3(src.positions, key.position))
	m.Normals = append(m.Normals, pick3(src.normals, key.normal))
	m.TexCoords = append(m.TexCoords, pick2(src.texcoords, key.texcoord))
	if key.color >= 0 {
		m.Colors = append(m.Colors, pick4(src.colors, key.color))
	}
	if key.tangent >= 0 {
		m.Tangents = append(m.Tangents, pick3(src.tangents, key.tangent))
	}
	if key.bitangent >= 0 {
		m.Bitangents = append(m.Bitangents, pick3(src.bitangents, key.bitangent))
	}
	return idx
}

// addPolygon appends poly, triangulated when it has more than 3 vertices.
func (b *meshBuilder) addPolygon(poly []uint32) {
	b.mesh.Faces = append(b.mesh.Faces, triangulate(poly)...)
}

// finish drops the normal and texcoord arrays when no vertex had them so that
// validation reports the missing attribute, and drops optional arrays that
// were only partly filled.
func (b *meshBuilder) finish(hasNormals, hasTexCoords bool) scene.Mesh {
	m := b.mesh
	if !hasNormals {
		m.Normals = nil
	}
	if !hasTexCoords {
		m.TexCoords = nil
	}
	n := len(m.Positions)
	if len(m.Colors) != n {
		m.Colors = nil
	}
	if len(m.Tangents) != n {
		m.Tangents = nil
	}
	if len(m.Bitangents) != n {
		m.Bitangents = nil
	}
	return m
}

func pick2(pool [][2]float32, i int) [2]float32 {
	if i < 0 || i >= len(pool) {
		return [2]float32{}
	}
	return pool[i]
}

func pick3(pool [][3]float32, i int) [3]float32 {
	if i < 0 || i >= len(pool) {
		return [3]float32{}
	}
	return pool[i]
}

func pick4(pool [][4]float32, i int) [4]float32 {
	if i < 0 || i >= len(pool) {
		return [4]float32{}
	}
	return pool[i]
}

// generateTangents computes per-vertex tangents and bitangents from the UV
// gradients of the mesh triangles. Tangents are orthogonalized against the
// normal and the bitangent is cross(N, T) signed by the UV handedness.
// Meshes that already have tangents, or lack normals or texcoords, are left alone.
func generateTangents(m *scene.Mesh) bool {
	n := m.VertexCount()
	if n == 0 || m.HasTangents() || len(m.Normals) != n || len(m.TexCoords) != n {
		return false
	}

	tan := make([]mgl32.Vec3, n)
	btan := make([]mgl32.Vec3, n)

	for _, f := range m.Faces {
		if len(f) != 3 {
			continue
		}
		i0, i1, i2 := f[0], f[1], f[2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}

		p0 := mgl32.Vec3(m.Positions[i0])
		edge1 := mgl32.Vec3(m.Positions[i1]).Sub(p0)
		edge2 := mgl32.Vec3(m.Positions[i2]).Sub(p0)

		uv0 := mgl32.Vec2(m.TexCoords[i0])
		duv1 := mgl32.Vec2(m.TexCoords[i1]).Sub(uv0)
		duv2 := mgl32.Vec2(m.TexCoords[i2]).Sub(uv0)

		det := duv1[0]*duv2[1] - duv1[1]*duv2[0]
		if det == 0 {
			continue
		}
		inv := 1 / det

		t := edge1.Mul(duv2[1]).Sub(edge2.Mul(duv1[1])).Mul(inv)
		b := edge2.Mul(duv1[0]).Sub(edge1.Mul(duv2[0])).Mul(inv)

		for _, idx := range []uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			btan[idx] = btan[idx].Add(b)
		}
	}

	m.Tangents = make([][3]float32, n)
	m.Bitangents = make([][3]float32, n)
	for i := 0; i < n; i++ {
		normal := mgl32.Vec3(m.Normals[i])
		ortho := tan[i].Sub(normal.Mul(normal.Dot(tan[i])))
		if ortho.Len() < 1e-6 {
			ortho = fallbackTangent(normal)
		} else {
			ortho = ortho.Normalize()
		}

		bitangent := normal.Cross(ortho)
		if bitangent.Dot(btan[i]) < 0 {
			bitangent = bitangent.Mul(-1)
		}

		m.Tangents[i] = ortho
		m.Bitangents[i] = bitangent
	}
	return true
}

// fallbackTangent returns a unit vector perpendicular to normal.
func fallbackTangent(normal mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if abs(normal[0]) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	t := axis.Sub(normal.Mul(normal.Dot(axis)))
	if t.Len() < 1e-6 {
		return mgl32.Vec3{1, 0, 0}
	}
	return t.Normalize()
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// postProcess applies the import options to every mesh of sc.
func postProcess(sc *scene.Scene, opts Options) int {
	generated := 0
	if !opts.GenerateTangents {
		return 0
	}
	for i := range sc.Meshes {
		if generateTangents(&sc.Meshes[i]) {
			generated++
		}
	}
	return generated
}

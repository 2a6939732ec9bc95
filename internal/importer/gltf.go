package importer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/wurmonline/womconverter/pkg/scene"
)

const gltfRootName = "ROOT"

// gltfImporter converts one glTF document.
type gltfImporter struct {
	doc *gltf.Document
	sc  *scene.Scene

	// meshes maps a glTF mesh to the scene meshes built from its primitives.
	meshes [][]int

	defaultMaterial int
}

// loadGLTF reads a .gltf or .glb file with its external buffers.
func loadGLTF(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading glTF")
	}
	return convertGLTF(doc)
}

func convertGLTF(doc *gltf.Document) (*scene.Scene, error) {
	imp := &gltfImporter{
		doc:             doc,
		sc:              &scene.Scene{},
		defaultMaterial: -1,
	}

	for _, m := range doc.Materials {
		imp.sc.Materials = append(imp.sc.Materials, imp.material(m))
	}

	imp.meshes = make([][]int, len(doc.Meshes))
	for i, m := range doc.Meshes {
		for j, prim := range m.Primitives {
			name := m.Name
			if name == "" {
				name = fmt.Sprintf("mesh%d", i)
			}
			if len(m.Primitives) > 1 {
				name = fmt.Sprintf("%s-%d", name, j)
			}
			mesh, err := imp.primitive(name, prim)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %q primitive %d", m.Name, j)
			}
			imp.meshes[i] = append(imp.meshes[i], len(imp.sc.Meshes))
			imp.sc.Meshes = append(imp.sc.Meshes, mesh)
		}
	}

	imp.sc.Root = scene.NewNode(gltfRootName)
	visited := make(map[uint32]bool)
	for _, idx := range imp.rootNodes() {
		child, err := imp.node(idx, visited)
		if err != nil {
			return nil, err
		}
		imp.sc.Root.AddChild(child)
	}

	return imp.sc, nil
}

// rootNodes returns the nodes of the default scene, or every node that is
// nobody's child when the document has no scenes.
func (imp *gltfImporter) rootNodes() []uint32 {
	doc := imp.doc
	if len(doc.Scenes) > 0 {
		idx := uint32(0)
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make(map[uint32]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !isChild[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func (imp *gltfImporter) node(idx uint32, visited map[uint32]bool) (*scene.Node, error) {
	if int(idx) >= len(imp.doc.Nodes) {
		return nil, errors.Errorf("node index %d out of range", idx)
	}
	if visited[idx] {
		return nil, errors.Errorf("node %d is part of a cycle", idx)
	}
	visited[idx] = true

	src := imp.doc.Nodes[idx]
	n := scene.NewNode(src.Name)
	if n.Name == "" {
		n.Name = fmt.Sprintf("node%d", idx)
	}
	n.Transform = gltfTransform(src)
	if src.Mesh != nil && int(*src.Mesh) < len(imp.meshes) {
		n.Meshes = append(n.Meshes, imp.meshes[*src.Mesh]...)
	}

	for _, c := range src.Children {
		child, err := imp.node(c, visited)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// gltfTransform returns the local transform of n, from its matrix or from
// translation * rotation * scale.
func gltfTransform(n *gltf.Node) mgl32.Mat4 {
	m := mgl32.Mat4(n.Matrix)
	if m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		return m
	}

	scale := mgl32.Vec3(n.Scale)
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	rot := mgl32.QuatIdent()
	if n.Rotation != ([4]float32{}) {
		rot = mgl32.Quat{W: n.Rotation[3], V: mgl32.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]}}.Normalize()
	}
	t := n.Translation

	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

func (imp *gltfImporter) material(m *gltf.Material) scene.Material {
	mat := scene.Material{
		Name:     m.Name,
		Emissive: scene.Color{m.EmissiveFactor[0], m.EmissiveFactor[1], m.EmissiveFactor[2], 1},
	}

	roughness := float32(1)
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			mat.DiffuseTexture = imp.texturePath(pbr.BaseColorTexture.Index)
		}
	}
	gloss := 1 - roughness
	mat.Shininess = gloss * gloss * 1000

	return mat
}

// texturePath returns the image URI of a texture, or the image name for
// embedded images.
func (imp *gltfImporter) texturePath(texture uint32) string {
	doc := imp.doc
	if int(texture) >= len(doc.Textures) || doc.Textures[texture].Source == nil {
		return ""
	}
	src := *doc.Textures[texture].Source
	if int(src) >= len(doc.Images) {
		return ""
	}
	img := doc.Images[src]
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return img.Name
	}
	if uri, err := url.PathUnescape(img.URI); err == nil {
		return uri
	}
	return img.URI
}

func (imp *gltfImporter) materialIndex(prim *gltf.Primitive) int {
	if prim.Material != nil && int(*prim.Material) < len(imp.sc.Materials) {
		return int(*prim.Material)
	}
	if imp.defaultMaterial < 0 {
		imp.sc.Materials = append(imp.sc.Materials, scene.Material{Name: objDefaultMaterial})
		imp.defaultMaterial = len(imp.sc.Materials) - 1
	}
	return imp.defaultMaterial
}

func (imp *gltfImporter) accessor(prim *gltf.Primitive, name string) (*gltf.Accessor, bool) {
	idx, ok := prim.Attributes[name]
	if !ok || int(idx) >= len(imp.doc.Accessors) {
		return nil, false
	}
	return imp.doc.Accessors[idx], true
}

func (imp *gltfImporter) primitive(name string, prim *gltf.Primitive) (scene.Mesh, error) {
	doc := imp.doc
	mesh := scene.Mesh{Name: name, MaterialIndex: imp.materialIndex(prim)}

	acr, ok := imp.accessor(prim, "POSITION")
	if !ok {
		return mesh, errors.New("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return mesh, errors.Wrap(err, "reading positions")
	}
	mesh.Positions = positions

	if acr, ok := imp.accessor(prim, "NORMAL"); ok {
		if mesh.Normals, err = modeler.ReadNormal(doc, acr, nil); err != nil {
			return mesh, errors.Wrap(err, "reading normals")
		}
	}

	if acr, ok := imp.accessor(prim, "TEXCOORD_0"); ok {
		uvs, err := modeler.ReadTextureCoord(doc, acr, nil)
		if err != nil {
			return mesh, errors.Wrap(err, "reading texture coordinates")
		}
		// glTF puts the UV origin top-left.
		for i := range uvs {
			uvs[i][1] = 1 - uvs[i][1]
		}
		mesh.TexCoords = uvs
	}

	if acr, ok := imp.accessor(prim, "COLOR_0"); ok {
		data, err := modeler.ReadAccessor(doc, acr, nil)
		if err != nil {
			return mesh, errors.Wrap(err, "reading colors")
		}
		if mesh.Colors, err = gltfColors(data); err != nil {
			return mesh, err
		}
	}

	if acr, ok := imp.accessor(prim, "TANGENT"); ok && len(mesh.Normals) == len(mesh.Positions) {
		tangents, err := modeler.ReadTangent(doc, acr, nil)
		if err != nil {
			return mesh, errors.Wrap(err, "reading tangents")
		}
		mesh.Tangents = make([][3]float32, len(tangents))
		mesh.Bitangents = make([][3]float32, len(tangents))
		for i, t := range tangents {
			tangent := mgl32.Vec3{t[0], t[1], t[2]}
			mesh.Tangents[i] = tangent
			if i < len(mesh.Normals) {
				mesh.Bitangents[i] = mgl32.Vec3(mesh.Normals[i]).Cross(tangent).Mul(t[3])
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil && int(*prim.Indices) < len(doc.Accessors) {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return mesh, errors.Wrap(err, "reading indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	mesh.Faces = gltfFaces(prim.Mode, indices)

	return mesh, nil
}

// gltfFaces builds faces from an index list according to the primitive mode.
// Strips and fans become triangles, line modes 2-index faces and points
// 1-index faces.
func gltfFaces(mode gltf.PrimitiveMode, idx []uint32) []scene.Face {
	var faces []scene.Face
	switch mode {
	case gltf.PrimitivePoints:
		for _, i := range idx {
			faces = append(faces, scene.Face{i})
		}
	case gltf.PrimitiveLines:
		for i := 0; i+1 < len(idx); i += 2 {
			faces = append(faces, scene.Face{idx[i], idx[i+1]})
		}
	case gltf.PrimitiveLineStrip, gltf.PrimitiveLineLoop:
		for i := 0; i+1 < len(idx); i++ {
			faces = append(faces, scene.Face{idx[i], idx[i+1]})
		}
		if mode == gltf.PrimitiveLineLoop && len(idx) > 2 {
			faces = append(faces, scene.Face{idx[len(idx)-1], idx[0]})
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				faces = append(faces, scene.Face{idx[i], idx[i+1], idx[i+2]})
			} else {
				faces = append(faces, scene.Face{idx[i+1], idx[i], idx[i+2]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(idx); i++ {
			faces = append(faces, scene.Face{idx[0], idx[i], idx[i+1]})
		}
	default:
		for i := 0; i+2 < len(idx); i += 3 {
			faces = append(faces, scene.Face{idx[i], idx[i+1], idx[i+2]})
		}
	}
	return faces
}

// gltfColors converts a COLOR_0 accessor payload into RGBA floats.
func gltfColors(data interface{}) ([][4]float32, error) {
	var out [][4]float32
	switch c := data.(type) {
	case [][4]float32:
		out = c
	case [][3]float32:
		out = make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{v[0], v[1], v[2], 1}
		}
	case [][4]uint8:
		out = make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{float32(v[0]) / 255, float32(v[1]) / 255, float32(v[2]) / 255, float32(v[3]) / 255}
		}
	case [][3]uint8:
		out = make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{float32(v[0]) / 255, float32(v[1]) / 255, float32(v[2]) / 255, 1}
		}
	case [][4]uint16:
		out = make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{float32(v[0]) / 65535, float32(v[1]) / 65535, float32(v[2]) / 65535, float32(v[3]) / 65535}
		}
	case [][3]uint16:
		out = make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{float32(v[0]) / 65535, float32(v[1]) / 65535, float32(v[2]) / 65535, 1}
		}
	default:
		return nil, errors.Errorf("unsupported COLOR_0 type %T", data)
	}
	return out, nil
}

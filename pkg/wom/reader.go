package wom

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// File is a decoded WOM file.
type File struct {
	Meshes   []Mesh
	Nodes    []Node
	Skinning []bool // one flag per mesh
}

// Mesh is a decoded mesh record with its materials.
type Mesh struct {
	Name          string
	HasTangents   bool
	HasBitangents bool
	HasColors     bool
	Vertices      []Vertex
	Indices       []uint16
	Materials     []Material
}

// Vertex holds the attributes of one vertex as stored. UV.V is already flipped.
type Vertex struct {
	Position  [3]float32
	Normal    [3]float32
	UV        [2]float32
	Color     [3]float32
	Tangent   [3]float32
	Bitangent [3]float32
}

// Property is a material property block.
type Property struct {
	Exists bool
	Values []float32
}

// Material is a decoded material record.
type Material struct {
	Texture      string
	Name         string
	Enabled      bool
	Emissive     Property
	Shininess    Property
	Specular     Property
	Transparency Property
}

// Node is a decoded node record. Transform is row-major.
type Node struct {
	Parent    string
	Name      string
	Reserved  uint8
	Transform [16]float32
	Extra     [16]float32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Minimum encoded sizes used to reject counts the remaining data cannot hold.
const (
	minMeshSize     = 3 + 4 + 4 + 4 + 4
	minVertexSize   = 8 * 4
	minMaterialSize = 4 + 4 + 1 + 4
	minNodeSize     = 4 + 4 + 1 + 2*matrixFloats*4
)

type decoder struct {
	r   *bytes.Reader
	buf [4]byte
	err error
}

func (d *decoder) offset() int64 {
	return d.r.Size() - int64(d.r.Len())
}

func (d *decoder) read(p []byte) {
	if d.err != nil {
		return
	}
	off := d.offset()
	if _, err := io.ReadFull(d.r, p); err != nil {
		d.err = errors.Wrapf(ErrTruncatedData, "reading %d bytes at offset %d", len(p), off)
	}
}

func (d *decoder) readInt32() int32 {
	d.read(d.buf[:4])
	if d.err != nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(d.buf[:4]))
}

func (d *decoder) readUint16() uint16 {
	d.read(d.buf[:2])
	if d.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(d.buf[:2])
}

func (d *decoder) readFloat32() float32 {
	d.read(d.buf[:4])
	if d.err != nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(d.buf[:4]))
}

func (d *decoder) readUint8() uint8 {
	d.read(d.buf[:1])
	if d.err != nil {
		return 0
	}
	return d.buf[0]
}

func (d *decoder) readBool() bool {
	return d.readUint8() != 0
}

func (d *decoder) readString() string {
	n := d.count("string length", 1)
	if d.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	d.read(buf)
	return string(buf)
}

// count reads an int32 count and checks it against the remaining data,
// assuming each element needs at least minSize bytes.
func (d *decoder) count(what string, minSize int) int {
	off := d.offset()
	n := d.readInt32()
	if d.err != nil {
		return 0
	}
	if n < 0 || int64(n)*int64(minSize) > int64(d.r.Len()) {
		d.err = errors.Wrapf(ErrInvalidCount, "%s %d at offset %d", what, n, off)
		return 0
	}
	return int(n)
}

func (d *decoder) vec3() [3]float32 {
	return [3]float32{d.readFloat32(), d.readFloat32(), d.readFloat32()}
}

func (d *decoder) floats(n int) []float32 {
	vs := make([]float32, n)
	for i := range vs {
		vs[i] = d.readFloat32()
	}
	return vs
}

// Parse decodes a WOM file from a byte slice. Data after the skinning
// trailer is rejected.
func Parse(data []byte) (*File, error) {
	d := &decoder{r: bytes.NewReader(data)}
	f := &File{}

	meshCount := d.count("mesh count", minMeshSize)
	f.Meshes = make([]Mesh, meshCount)
	for i := 0; i < meshCount && d.err == nil; i++ {
		d.mesh(&f.Meshes[i])
		if d.err != nil {
			return nil, errors.Wrapf(d.err, "parsing mesh %d", i)
		}
	}

	nodeCount := d.count("node count", minNodeSize)
	f.Nodes = make([]Node, nodeCount)
	for i := 0; i < nodeCount && d.err == nil; i++ {
		d.node(&f.Nodes[i])
	}

	f.Skinning = make([]bool, meshCount)
	for i := 0; i < meshCount && d.err == nil; i++ {
		f.Skinning[i] = d.readBool()
		if f.Skinning[i] {
			return nil, errors.Wrapf(ErrUnsupportedSkinning, "mesh %d", i)
		}
	}

	if d.err != nil {
		return nil, d.err
	}
	if n := d.r.Len(); n > 0 {
		return nil, errors.Wrapf(ErrInvalidCount, "%d trailing byte(s) at offset %d", n, d.offset())
	}
	return f, nil
}

func (d *decoder) mesh(m *Mesh) {
	m.HasTangents = d.readBool()
	m.HasBitangents = d.readBool()
	m.HasColors = d.readBool()
	m.Name = d.readString()

	vertexCount := d.count("vertex count", minVertexSize)
	m.Vertices = make([]Vertex, vertexCount)
	for i := 0; i < vertexCount && d.err == nil; i++ {
		v := &m.Vertices[i]
		v.Position = d.vec3()
		v.Normal = d.vec3()
		v.UV = [2]float32{d.readFloat32(), d.readFloat32()}
		if m.HasColors {
			v.Color = d.vec3()
		}
		if m.HasTangents {
			v.Tangent = d.vec3()
		}
		if m.HasBitangents {
			v.Bitangent = d.vec3()
		}
	}

	indexCount := d.count("index count", 2)
	m.Indices = make([]uint16, indexCount)
	for i := 0; i < indexCount && d.err == nil; i++ {
		m.Indices[i] = d.readUint16()
	}

	materialCount := d.count("material count", minMaterialSize)
	m.Materials = make([]Material, materialCount)
	for i := 0; i < materialCount && d.err == nil; i++ {
		d.material(&m.Materials[i])
	}
}

func (d *decoder) material(mat *Material) {
	mat.Texture = d.readString()
	mat.Name = d.readString()
	mat.Enabled = d.readBool()
	mat.Emissive = d.property(colorFloats)
	mat.Shininess = d.property(shininessFloats)
	mat.Specular = d.property(colorFloats)
	mat.Transparency = d.property(colorFloats)
}

// property reads an exists byte and, when set, n floats.
func (d *decoder) property(n int) Property {
	p := Property{Exists: d.readBool()}
	if p.Exists {
		p.Values = d.floats(n)
	}
	return p
}

func (d *decoder) node(n *Node) {
	n.Parent = d.readString()
	n.Name = d.readString()
	n.Reserved = d.readUint8()
	for i := range n.Transform {
		n.Transform[i] = d.readFloat32()
	}
	for i := range n.Extra {
		n.Extra[i] = d.readFloat32()
	}
}

// Decode reads all of r and parses it as a WOM file.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading WOM data")
	}
	return Parse(data)
}

// ParseFile parses a WOM file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading WOM file")
	}
	return Parse(data)
}

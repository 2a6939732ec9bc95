package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wurmonline/womconverter/internal/logger"
	"github.com/wurmonline/womconverter/pkg/scene"
)

const (
	objDefaultObject   = "defaultobject"
	objDefaultMaterial = "DefaultMaterial"
)

// objGroup collects the faces of one object that share a material.
type objGroup struct {
	builder      *meshBuilder
	allNormals   bool
	allTexCoords bool
}

type objObject struct {
	name   string
	groups map[int]*objGroup
	order  []int
}

type objReader struct {
	path string
	dir  string

	src vertexSource

	materials   []scene.Material
	matIndex    map[string]int
	curMaterial int

	objects []*objObject
	cur     *objObject
}

func newOBJReader(path string) *objReader {
	return &objReader{
		path:        path,
		dir:         filepath.Dir(path),
		matIndex:    make(map[string]int),
		curMaterial: -1,
	}
}

// loadOBJ reads a Wavefront OBJ file and the material libraries it references.
func loadOBJ(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening OBJ file")
	}
	defer f.Close()

	r := newOBJReader(path)
	if err := r.parse(f); err != nil {
		return nil, err
	}
	return r.scene(), nil
}

func (r *objReader) errorf(line int, format string, args ...interface{}) error {
	return errors.Errorf("[%s: %d] %s", filepath.Base(r.path), line, fmt.Sprintf(format, args...))
}

func (r *objReader) parse(in io.Reader) error {
	lineNum := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		var err error
		switch tokens[0] {
		case "v":
			var v [3]float32
			v, err = parseVec3(tokens)
			if err == nil {
				r.src.positions = append(r.src.positions, v)
				if len(tokens) >= 7 {
					var c [3]float32
					c, err = parseFloats3(tokens[4:7])
					r.setVertexColor(len(r.src.positions)-1, c)
				} else if len(r.src.colors) > 0 {
					r.src.colors = append(r.src.colors, [4]float32{1, 1, 1, 1})
				}
			}
		case "vn":
			var v [3]float32
			v, err = parseVec3(tokens)
			r.src.normals = append(r.src.normals, v)
		case "vt":
			var v [2]float32
			v, err = parseVec2(tokens)
			r.src.texcoords = append(r.src.texcoords, v)
		case "o", "g":
			name := objDefaultObject
			if len(tokens) > 1 {
				name = strings.Join(tokens[1:], " ")
			}
			r.startObject(name)
		case "usemtl":
			if len(tokens) < 2 {
				return r.errorf(lineNum, "unsupported syntax for 'usemtl'; expected 1 argument; got %d", len(tokens)-1)
			}
			r.curMaterial = r.material(strings.Join(tokens[1:], " "))
		case "mtllib":
			for _, lib := range tokens[1:] {
				r.loadMaterialLibrary(lib)
			}
		case "f":
			err = r.parseFace(tokens)
		case "l":
			err = r.parseLine(tokens)
		case "p":
			err = r.parsePoints(tokens)
		}

		if err != nil {
			return r.errorf(lineNum, "%v", err)
		}
	}
	return errors.Wrap(scanner.Err(), "reading OBJ file")
}

// setVertexColor records the color of position i. Positions without a color
// get opaque white.
func (r *objReader) setVertexColor(i int, c [3]float32) {
	for len(r.src.colors) < i {
		r.src.colors = append(r.src.colors, [4]float32{1, 1, 1, 1})
	}
	r.src.colors = append(r.src.colors, [4]float32{c[0], c[1], c[2], 1})
}

func (r *objReader) startObject(name string) {
	r.cur = &objObject{name: name, groups: make(map[int]*objGroup)}
	r.objects = append(r.objects, r.cur)
}

// material returns the index of the named material, creating an empty one
// for names no material library defined.
func (r *objReader) material(name string) int {
	if idx, ok := r.matIndex[name]; ok {
		return idx
	}
	r.materials = append(r.materials, scene.Material{Name: name})
	idx := len(r.materials) - 1
	r.matIndex[name] = idx
	return idx
}

// group returns the face group for the current object and material.
func (r *objReader) group() *objGroup {
	if r.cur == nil {
		r.startObject(objDefaultObject)
	}
	if r.curMaterial < 0 {
		r.curMaterial = r.material(objDefaultMaterial)
	}
	g, ok := r.cur.groups[r.curMaterial]
	if !ok {
		g = &objGroup{
			builder:      newMeshBuilder(r.cur.name, r.curMaterial),
			allNormals:   true,
			allTexCoords: true,
		}
		r.cur.groups[r.curMaterial] = g
		r.cur.order = append(r.cur.order, r.curMaterial)
	}
	return g
}

// resolveIndex converts a 1-based or negative OBJ index into a 0-based one.
func resolveIndex(token string, count int) (int, error) {
	v, err := strconv.Atoi(token)
	if err != nil {
		return -1, errors.Errorf("invalid index %q", token)
	}
	switch {
	case v > 0 && v <= count:
		return v - 1, nil
	case v < 0 && -v <= count:
		return count + v, nil
	default:
		return -1, errors.Errorf("index %d out of range (%d elements)", v, count)
	}
}

// vertexRef resolves a face vertex reference "v", "v/vt", "v//vn" or "v/vt/vn".
func (r *objReader) vertexRef(g *objGroup, ref string) (uint32, error) {
	parts := strings.Split(ref, "/")
	key := noVertexKey

	var err error
	if key.position, err = resolveIndex(parts[0], len(r.src.positions)); err != nil {
		return 0, err
	}
	if key.position < len(r.src.colors) {
		key.color = key.position
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.texcoord, err = resolveIndex(parts[1], len(r.src.texcoords)); err != nil {
			return 0, err
		}
	} else {
		g.allTexCoords = false
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.normal, err = resolveIndex(parts[2], len(r.src.normals)); err != nil {
			return 0, err
		}
	} else {
		g.allNormals = false
	}

	return g.builder.vertex(&r.src, key), nil
}

func (r *objReader) refs(g *objGroup, tokens []string) ([]uint32, error) {
	indices := make([]uint32, 0, len(tokens))
	for _, tok := range tokens {
		idx, err := r.vertexRef(g, tok)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func (r *objReader) parseFace(tokens []string) error {
	if len(tokens) < 4 {
		return errors.Errorf("unsupported syntax for 'f'; expected at least 3 arguments; got %d", len(tokens)-1)
	}
	g := r.group()
	poly, err := r.refs(g, tokens[1:])
	if err != nil {
		return err
	}
	g.builder.addPolygon(poly)
	return nil
}

// parseLine adds one 2-index face per segment of a polyline.
func (r *objReader) parseLine(tokens []string) error {
	if len(tokens) < 3 {
		return errors.Errorf("unsupported syntax for 'l'; expected at least 2 arguments; got %d", len(tokens)-1)
	}
	g := r.group()
	line, err := r.refs(g, tokens[1:])
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(line); i++ {
		g.builder.mesh.Faces = append(g.builder.mesh.Faces, scene.Face{line[i], line[i+1]})
	}
	return nil
}

func (r *objReader) parsePoints(tokens []string) error {
	g := r.group()
	points, err := r.refs(g, tokens[1:])
	if err != nil {
		return err
	}
	for _, p := range points {
		g.builder.mesh.Faces = append(g.builder.mesh.Faces, scene.Face{p})
	}
	return nil
}

// scene assembles the parsed objects. Each object becomes a child of the
// root node drawing one mesh per material it used.
func (r *objReader) scene() *scene.Scene {
	sc := &scene.Scene{
		Materials: r.materials,
		Root:      scene.NewNode(filepath.Base(r.path)),
	}
	for _, obj := range r.objects {
		if len(obj.order) == 0 {
			continue
		}
		node := sc.Root.AddChild(scene.NewNode(obj.name))
		for _, mat := range obj.order {
			g := obj.groups[mat]
			node.Meshes = append(node.Meshes, len(sc.Meshes))
			sc.Meshes = append(sc.Meshes, g.builder.finish(g.allNormals, g.allTexCoords))
		}
	}
	return sc
}

// loadMaterialLibrary reads an MTL file relative to the OBJ file. A missing
// or unreadable library is logged and ignored.
func (r *objReader) loadMaterialLibrary(name string) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, name)
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("Material library not found", zap.String("file", r.path), zap.String("mtllib", name))
		return
	}
	defer f.Close()

	if err := r.parseMaterials(f); err != nil {
		logger.Warn("Material library ignored", zap.String("mtllib", name), zap.Error(err))
	}
}

func (r *objReader) parseMaterials(in io.Reader) error {
	var cur *scene.Material
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		if tokens[0] == "newmtl" {
			name := strings.Join(tokens[1:], " ")
			cur = &r.materials[r.material(name)]
			continue
		}
		if cur == nil {
			continue
		}

		var err error
		switch tokens[0] {
		case "Ks":
			cur.Specular, err = parseColor(tokens)
		case "Ke":
			cur.Emissive, err = parseColor(tokens)
		case "Tf":
			alpha := cur.Transparent[3]
			cur.Transparent, err = parseColor(tokens)
			cur.Transparent[3] = alpha
		case "d":
			var d float32
			d, err = parseFloat(tokens)
			cur.Transparent[3] = d
		case "Ns":
			cur.Shininess, err = parseFloat(tokens)
		case "map_Kd":
			// Options such as "-s 1 1 1" precede the file name.
			cur.DiffuseTexture = tokens[len(tokens)-1]
		}
		if err != nil {
			return errors.Wrapf(err, "material %q", cur.Name)
		}
	}
	return scanner.Err()
}

func parseFloats3(tokens []string) ([3]float32, error) {
	var v [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(tokens[i], 32)
		if err != nil {
			return v, errors.Errorf("invalid number %q", tokens[i])
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseVec3(tokens []string) ([3]float32, error) {
	if len(tokens) < 4 {
		return [3]float32{}, errors.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", tokens[0], len(tokens)-1)
	}
	return parseFloats3(tokens[1:4])
}

// parseVec2 reads a texture coordinate. A missing v component is 0.
func parseVec2(tokens []string) ([2]float32, error) {
	if len(tokens) < 2 {
		return [2]float32{}, errors.Errorf("unsupported syntax for '%s'; expected 2 arguments; got %d", tokens[0], len(tokens)-1)
	}
	var v [2]float32
	for i := 0; i < 2 && i+1 < len(tokens); i++ {
		f, err := strconv.ParseFloat(tokens[i+1], 32)
		if err != nil {
			return v, errors.Errorf("invalid number %q", tokens[i+1])
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseFloat(tokens []string) (float32, error) {
	if len(tokens) < 2 {
		return 0, errors.Errorf("unsupported syntax for '%s'; expected 1 argument", tokens[0])
	}
	f, err := strconv.ParseFloat(tokens[1], 32)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", tokens[1])
	}
	return float32(f), nil
}

// parseColor reads an "r g b" color with alpha 1. A single value is used for all channels.
func parseColor(tokens []string) (scene.Color, error) {
	if len(tokens) == 2 {
		f, err := parseFloat(tokens)
		return scene.Color{f, f, f, 1}, err
	}
	v, err := parseVec3(tokens)
	return scene.Color{v[0], v[1], v[2], 1}, err
}

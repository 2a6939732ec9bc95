package importer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mogaika/go-collada"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/wurmonline/womconverter/pkg/scene"
)

// colladaExtras holds the document parts go-collada declares as empty
// placeholders: images, effect parameters and the non-Phong shading models.
type colladaExtras struct {
	XMLName xml.Name        `xml:"COLLADA"`
	Images  []colladaImage  `xml:"library_images>image"`
	Effects []colladaEffect `xml:"library_effects>effect"`
}

type colladaImage struct {
	ID       string `xml:"id,attr"`
	InitFrom struct {
		Value string `xml:",chardata"`
		Ref   string `xml:"ref"`
	} `xml:"init_from"`
}

type colladaEffect struct {
	ID         string            `xml:"id,attr"`
	Params     []colladaNewParam `xml:"profile_COMMON>newparam"`
	Techniques []struct {
		Blinn    *colladaShading `xml:"blinn"`
		Lambert  *colladaShading `xml:"lambert"`
		Constant *colladaShading `xml:"constant"`
	} `xml:"profile_COMMON>technique"`
}

type colladaNewParam struct {
	SID     string `xml:"sid,attr"`
	Surface *struct {
		InitFrom string `xml:"init_from"`
	} `xml:"surface"`
	Sampler *struct {
		Source        string `xml:"source"`
		InstanceImage struct {
			URL string `xml:"url,attr"`
		} `xml:"instance_image"`
	} `xml:"sampler2D"`
}

// colladaShading is the part of a profile_COMMON shading model the WOM
// material uses. Phong effects are copied from the go-collada types.
type colladaShading struct {
	Emission    *collada.FxCommonColorOrTextureType `xml:"emission"`
	Diffuse     *collada.FxCommonColorOrTextureType `xml:"diffuse"`
	Specular    *collada.FxCommonColorOrTextureType `xml:"specular"`
	Shininess   *collada.FxCommonFloatOrParamType   `xml:"shininess"`
	Transparent *collada.FxCommonColorOrTextureType `xml:"transparent"`
}

// colladaAccessor is read from a source's raw technique_common.
type colladaAccessor struct {
	Count  int `xml:"count,attr"`
	Offset int `xml:"offset,attr"`
	Stride int `xml:"stride,attr"`
}

type colladaSource struct {
	id       string
	data     []float32
	accessor colladaAccessor
}

type colladaInput struct {
	semantic string
	source   string
	offset   int
	set      int
}

// colladaPrimitive flattens the go-collada primitive element types.
type colladaPrimitive struct {
	kind     string
	material string
	inputs   []colladaInput
	vcount   string
	p        []string
}

// Shading defaults applied when an effect omits a value.
var (
	colladaDefaultEmissive    = scene.Color{0, 0, 0, 1}
	colladaDefaultSpecular    = scene.Color{0.4, 0.4, 0.4, 1}
	colladaDefaultTransparent = scene.Color{0, 0, 0, 1}
)

const colladaDefaultShininess = 10

type colladaImporter struct {
	doc *collada.Collada
	sc  *scene.Scene

	effects      map[string]*collada.Effect
	extraEffects map[string]*colladaEffect
	images       map[string]*colladaImage
	geometries   map[string]*collada.Geometry

	// materials maps a COLLADA material id to its scene index.
	materials       map[string]int
	defaultMaterial int

	// meshCache maps geometry id and bound materials to scene meshes.
	meshCache map[string][]int
}

// loadCollada reads a COLLADA 1.4 or 1.5 document.
func loadCollada(path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading COLLADA file")
	}
	return parseCollada(data)
}

func parseCollada(data []byte) (*scene.Scene, error) {
	doc, err := collada.LoadDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding COLLADA document")
	}
	extras := &colladaExtras{}
	if err := xml.Unmarshal(data, extras); err != nil {
		return nil, errors.Wrap(err, "decoding COLLADA effects")
	}
	return convertCollada(doc, extras)
}

func convertCollada(doc *collada.Collada, extras *colladaExtras) (*scene.Scene, error) {
	imp := &colladaImporter{
		doc:             doc,
		sc:              &scene.Scene{},
		effects:         make(map[string]*collada.Effect),
		extraEffects:    make(map[string]*colladaEffect),
		images:          make(map[string]*colladaImage),
		geometries:      make(map[string]*collada.Geometry),
		materials:       make(map[string]int),
		defaultMaterial: -1,
		meshCache:       make(map[string][]int),
	}
	for i := range extras.Images {
		imp.images[extras.Images[i].ID] = &extras.Images[i]
	}
	for i := range extras.Effects {
		imp.extraEffects[extras.Effects[i].ID] = &extras.Effects[i]
	}
	for _, lib := range doc.LibraryEffects {
		for _, fx := range lib.Effect {
			imp.effects[string(fx.Id)] = fx
		}
	}
	for _, lib := range doc.LibraryGeometries {
		for _, g := range lib.Geometry {
			imp.geometries[string(g.Id)] = g
		}
	}
	for _, lib := range doc.LibraryMaterials {
		for _, m := range lib.Material {
			imp.materials[string(m.Id)] = len(imp.sc.Materials)
			imp.sc.Materials = append(imp.sc.Materials, imp.material(m))
		}
	}

	vs := imp.visualScene()
	if vs == nil {
		return nil, errors.New("document has no visual scene")
	}

	imp.sc.Root = scene.NewNode(firstNonEmpty(vs.Name, string(vs.Id)))
	for _, n := range vs.Node {
		child, err := imp.node(n)
		if err != nil {
			return nil, err
		}
		imp.sc.Root.AddChild(child)
	}
	return imp.sc, nil
}

func (imp *colladaImporter) visualScene() *collada.VisualScene {
	var scenes []*collada.VisualScene
	for _, lib := range imp.doc.LibraryVisualScenes {
		scenes = append(scenes, lib.VisualScene...)
	}
	if len(scenes) == 0 {
		return nil
	}
	if s := imp.doc.Scene; s != nil && s.InstanceVisualScene != nil {
		id := refID(string(s.InstanceVisualScene.Url))
		for _, vs := range scenes {
			if string(vs.Id) == id {
				return vs
			}
		}
	}
	return scenes[0]
}

func refID(url string) string {
	return strings.TrimPrefix(url, "#")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (imp *colladaImporter) node(n *collada.Node) (*scene.Node, error) {
	out := scene.NewNode(firstNonEmpty(n.Name, string(n.Id)))

	transform, err := colladaTransformOf(n)
	if err != nil {
		return nil, errors.Wrapf(err, "node %q", out.Name)
	}
	out.Transform = transform

	for _, inst := range n.InstanceGeometry {
		meshes, err := imp.instanceGeometry(inst)
		if err != nil {
			return nil, errors.Wrapf(err, "node %q", out.Name)
		}
		out.Meshes = append(out.Meshes, meshes...)
	}

	for _, c := range n.Node {
		child, err := imp.node(c)
		if err != nil {
			return nil, err
		}
		out.AddChild(child)
	}
	return out, nil
}

// colladaTransformOf composes the node transforms as matrix * translate *
// rotate * scale, each kind in document order.
func colladaTransformOf(n *collada.Node) (mgl32.Mat4, error) {
	m := mgl32.Ident4()
	for _, e := range n.Matrix {
		v, err := colladaValues("matrix", e.V, 16)
		if err != nil {
			return m, err
		}
		// COLLADA matrices are row-major.
		var rows mgl32.Mat4
		copy(rows[:], v)
		m = m.Mul4(rows.Transpose())
	}
	for _, e := range n.Translate {
		v, err := colladaValues("translate", e.V, 3)
		if err != nil {
			return m, err
		}
		m = m.Mul4(mgl32.Translate3D(v[0], v[1], v[2]))
	}
	for _, e := range n.Rotate {
		v, err := colladaValues("rotate", e.V, 4)
		if err != nil {
			return m, err
		}
		axis := mgl32.Vec3{v[0], v[1], v[2]}
		if axis.Len() == 0 {
			continue
		}
		m = m.Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(v[3]), axis.Normalize()))
	}
	for _, e := range n.Scale {
		v, err := colladaValues("scale", e.V, 3)
		if err != nil {
			return m, err
		}
		m = m.Mul4(mgl32.Scale3D(v[0], v[1], v[2]))
	}
	return m, nil
}

func colladaValues(elem, data string, want int) ([]float32, error) {
	v, err := parseFloatList(data)
	if err != nil {
		return nil, err
	}
	if len(v) < want {
		return nil, errors.Errorf("<%s> needs %d values, got %d", elem, want, len(v))
	}
	return v[:want], nil
}

func (imp *colladaImporter) instanceGeometry(inst *collada.InstanceGeometry) ([]int, error) {
	id := refID(string(inst.Url))
	geom, ok := imp.geometries[id]
	if !ok {
		return nil, errors.Errorf("unknown geometry %q", inst.Url)
	}
	if geom.Mesh == nil {
		return nil, nil
	}

	bindings, err := colladaBindings(inst.BindMaterial)
	if err != nil {
		return nil, err
	}

	prims, err := colladaPrimitives(geom.Mesh)
	if err != nil {
		return nil, errors.Wrapf(err, "geometry %q", id)
	}
	materials := make([]int, len(prims))
	key := id
	for i := range prims {
		materials[i] = imp.boundMaterial(bindings, prims[i].material)
		key += fmt.Sprintf("|%d", materials[i])
	}
	if cached, ok := imp.meshCache[key]; ok {
		return cached, nil
	}

	sources, err := colladaSources(geom.Mesh)
	if err != nil {
		return nil, errors.Wrapf(err, "geometry %q", id)
	}

	name := firstNonEmpty(geom.Name, id)
	var indices []int
	for i := range prims {
		mesh, err := imp.primitive(name, geom.Mesh, sources, &prims[i], materials[i])
		if err != nil {
			return nil, errors.Wrapf(err, "geometry %q <%s>", name, prims[i].kind)
		}
		indices = append(indices, len(imp.sc.Meshes))
		imp.sc.Meshes = append(imp.sc.Meshes, mesh)
	}
	imp.meshCache[key] = indices
	return indices, nil
}

// colladaBindings maps material symbols to material ids. go-collada keeps
// bind_material's technique_common as raw XML.
func colladaBindings(bm *collada.BindMaterial) (map[string]string, error) {
	out := make(map[string]string)
	if bm == nil {
		return out, nil
	}
	var tc struct {
		InstanceMaterials []struct {
			Symbol string `xml:"symbol,attr"`
			Target string `xml:"target,attr"`
		} `xml:"instance_material"`
	}
	if err := xml.Unmarshal([]byte("<technique_common>"+bm.TechniqueCommon.XML+"</technique_common>"), &tc); err != nil {
		return nil, errors.Wrap(err, "bind_material")
	}
	for _, im := range tc.InstanceMaterials {
		out[im.Symbol] = refID(im.Target)
	}
	return out, nil
}

func colladaInputs(in []*collada.InputShared) []colladaInput {
	out := make([]colladaInput, 0, len(in))
	for _, i := range in {
		out = append(out, colladaInput{
			semantic: i.Semantic,
			source:   string(i.Source),
			offset:   int(i.Offset),
			set:      int(i.Set),
		})
	}
	return out
}

// colladaPrimitives lists the primitive elements of a mesh grouped by kind.
func colladaPrimitives(m *collada.Mesh) ([]colladaPrimitive, error) {
	var prims []colladaPrimitive
	add := func(kind, material string, inputs []*collada.InputShared, vcount *collada.Ints, ps ...*collada.P) {
		prim := colladaPrimitive{kind: kind, material: material, inputs: colladaInputs(inputs)}
		if vcount != nil {
			prim.vcount = vcount.V
		}
		for _, p := range ps {
			if p != nil {
				prim.p = append(prim.p, p.V)
			}
		}
		prims = append(prims, prim)
	}

	for _, e := range m.Triangles {
		add("triangles", e.Material, e.Input, nil, e.P)
	}
	for _, e := range m.Polylist {
		if e.VCount == nil {
			return nil, errors.New("<polylist> has no <vcount>")
		}
		add("polylist", e.Material, e.Input, e.VCount, e.P)
	}
	for _, e := range m.Polygons {
		ps := append([]*collada.P(nil), e.P...)
		// Holes are dropped; the outer ring is kept.
		for _, ph := range e.Ph {
			p := ph.P
			ps = append(ps, &p)
		}
		add("polygons", e.Material, e.Input, nil, ps...)
	}
	for _, e := range m.Trifans {
		add("trifans", e.Material, e.Input, nil, e.P)
	}
	for _, e := range m.Tristrips {
		add("tristrips", e.Material, e.Input, nil, e.P)
	}
	for _, e := range m.Lines {
		add("lines", e.Material, e.Input, nil, e.P)
	}
	for _, e := range m.Linestrips {
		add("linestrips", e.Material, e.Input, nil, e.P...)
	}
	return prims, nil
}

func colladaSources(m *collada.Mesh) (map[string]*colladaSource, error) {
	out := make(map[string]*colladaSource, len(m.Source))
	for _, s := range m.Source {
		src := &colladaSource{id: string(s.Id)}
		if s.FloatArray != nil {
			data, err := parseFloatList(s.FloatArray.V)
			if err != nil {
				return nil, errors.Wrapf(err, "source %q", s.Id)
			}
			src.data = data
		}
		var tc struct {
			Accessor colladaAccessor `xml:"accessor"`
		}
		if err := xml.Unmarshal([]byte("<technique_common>"+s.TechniqueCommon.XML+"</technique_common>"), &tc); err != nil {
			return nil, errors.Wrapf(err, "source %q accessor", s.Id)
		}
		src.accessor = tc.Accessor
		out[src.id] = src
	}
	return out, nil
}

// boundMaterial resolves a primitive's material symbol through the
// instance bindings. Unbound primitives use a default material.
func (imp *colladaImporter) boundMaterial(bindings map[string]string, symbol string) int {
	target, ok := bindings[symbol]
	if !ok {
		target = symbol
	}
	if idx, ok := imp.materials[target]; ok {
		return idx
	}
	if imp.defaultMaterial < 0 {
		imp.sc.Materials = append(imp.sc.Materials, scene.Material{
			Name:        objDefaultMaterial,
			Emissive:    colladaDefaultEmissive,
			Specular:    colladaDefaultSpecular,
			Transparent: colladaDefaultTransparent,
			Shininess:   colladaDefaultShininess,
		})
		imp.defaultMaterial = len(imp.sc.Materials) - 1
	}
	return imp.defaultMaterial
}

func (imp *colladaImporter) material(m *collada.Material) scene.Material {
	mat := scene.Material{
		Name:        firstNonEmpty(m.Name, string(m.Id)),
		Emissive:    colladaDefaultEmissive,
		Specular:    colladaDefaultSpecular,
		Transparent: colladaDefaultTransparent,
		Shininess:   colladaDefaultShininess,
	}

	effectID := refID(string(m.InstanceEffect.Url))
	shading := imp.shading(effectID)
	if shading == nil {
		return mat
	}

	if c, ok := colladaColor(shading.Emission); ok {
		mat.Emissive = c
	}
	if c, ok := colladaColor(shading.Specular); ok {
		mat.Specular = c
	}
	if c, ok := colladaColor(shading.Transparent); ok {
		mat.Transparent = c
	}
	if s := shading.Shininess; s != nil && s.Float != nil {
		mat.Shininess = float32(s.Float.Value)
	}
	if d := shading.Diffuse; d != nil && d.Texture != nil {
		mat.DiffuseTexture = imp.texturePath(effectID, d.Texture.Texture)
	}
	return mat
}

// shading returns the first profile_COMMON shading model of an effect.
func (imp *colladaImporter) shading(effectID string) *colladaShading {
	if fx, ok := imp.effects[effectID]; ok && fx.ProfileCommon != nil {
		for _, tech := range fx.ProfileCommon.TechniqueFx {
			if p := tech.Phone; p != nil {
				return &colladaShading{
					Emission:    p.Emission,
					Diffuse:     p.Diffuse,
					Specular:    p.Specular,
					Shininess:   p.Shininess,
					Transparent: p.Transparent,
				}
			}
		}
	}
	if fx, ok := imp.extraEffects[effectID]; ok {
		for _, tech := range fx.Techniques {
			for _, s := range []*colladaShading{tech.Blinn, tech.Lambert, tech.Constant} {
				if s != nil {
					return s
				}
			}
		}
	}
	return nil
}

func colladaColor(c *collada.FxCommonColorOrTextureType) (scene.Color, bool) {
	if c == nil || c.Color == nil {
		return scene.Color{}, false
	}
	v, err := parseFloatList(c.Color.V)
	if err != nil || len(v) < 3 {
		return scene.Color{}, false
	}
	color := scene.Color{v[0], v[1], v[2], 1}
	if len(v) > 3 {
		color[3] = v[3]
	}
	return color, true
}

// texturePath follows sampler -> surface -> image. Textures that name an
// image directly are accepted too.
func (imp *colladaImporter) texturePath(effectID, sampler string) string {
	params := make(map[string]*colladaNewParam)
	if fx, ok := imp.extraEffects[effectID]; ok {
		for i := range fx.Params {
			params[fx.Params[i].SID] = &fx.Params[i]
		}
	}

	imageID := sampler
	if p, ok := params[sampler]; ok && p.Sampler != nil {
		if url := p.Sampler.InstanceImage.URL; url != "" {
			imageID = refID(url)
		} else if s, ok := params[strings.TrimSpace(p.Sampler.Source)]; ok && s.Surface != nil {
			imageID = strings.TrimSpace(s.Surface.InitFrom)
		}
	}

	img, ok := imp.images[imageID]
	if !ok {
		return ""
	}
	path := strings.TrimSpace(firstNonEmpty(img.InitFrom.Ref, img.InitFrom.Value))
	path = strings.TrimPrefix(path, "file://")
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	return path
}

// colladaStream is one resolved per-vertex input of a primitive.
type colladaStream struct {
	semantic string
	offset   int
	source   *colladaSource
}

// colladaStreams expands the VERTEX input and picks the lowest texture
// coordinate set. It also returns the number of indices per vertex.
func colladaStreams(mesh *collada.Mesh, sources map[string]*colladaSource, prim *colladaPrimitive) ([]colladaStream, int, error) {
	var streams []colladaStream
	stride := 0
	texSet := -1

	add := func(in colladaInput) error {
		semantic := in.semantic
		switch semantic {
		case "TEXCOORD":
			if texSet >= 0 && in.set >= texSet {
				return nil
			}
			texSet = in.set
			for i := range streams {
				if streams[i].semantic == "TEXCOORD" {
					streams = append(streams[:i], streams[i+1:]...)
					break
				}
			}
		case "TANGENT":
			semantic = "TEXTANGENT"
		case "BINORMAL":
			semantic = "TEXBINORMAL"
		}
		src, ok := sources[refID(in.source)]
		if !ok {
			return errors.Errorf("unknown source %q", in.source)
		}
		streams = append(streams, colladaStream{semantic: semantic, offset: in.offset, source: src})
		return nil
	}

	for _, in := range prim.inputs {
		if in.offset+1 > stride {
			stride = in.offset + 1
		}
		if in.semantic == "VERTEX" {
			for _, vin := range mesh.Vertices.Input {
				if err := add(colladaInput{semantic: vin.Semantic, source: string(vin.Source), offset: in.offset}); err != nil {
					return nil, 0, err
				}
			}
			continue
		}
		if err := add(in); err != nil {
			return nil, 0, err
		}
	}
	return streams, stride, nil
}

func (s *colladaSource) stride(n int) int {
	if s.accessor.Stride > 0 {
		return s.accessor.Stride
	}
	return n
}

// elements splits the source data into elements of n floats. Extra
// components are dropped and missing ones are zero.
func (s *colladaSource) elements(n int) [][]float32 {
	stride := s.stride(n)
	count := s.accessor.Count
	if count <= 0 {
		count = (len(s.data) - s.accessor.Offset) / stride
	}
	if count < 0 {
		count = 0
	}
	out := make([][]float32, count)
	for i := range out {
		start := s.accessor.Offset + i*stride
		v := make([]float32, n)
		for k := 0; k < n && k < stride && start+k < len(s.data); k++ {
			v[k] = s.data[start+k]
		}
		out[i] = v
	}
	return out
}

func (imp *colladaImporter) primitive(name string, mesh *collada.Mesh, sources map[string]*colladaSource, prim *colladaPrimitive, material int) (scene.Mesh, error) {
	streams, stride, err := colladaStreams(mesh, sources, prim)
	if err != nil {
		return scene.Mesh{}, err
	}

	src := &vertexSource{}
	offsets := map[string]int{}
	for _, st := range streams {
		switch st.semantic {
		case "POSITION":
			for _, v := range st.source.elements(3) {
				src.positions = append(src.positions, [3]float32{v[0], v[1], v[2]})
			}
		case "NORMAL":
			for _, v := range st.source.elements(3) {
				src.normals = append(src.normals, [3]float32{v[0], v[1], v[2]})
			}
		case "TEXCOORD":
			for _, v := range st.source.elements(2) {
				src.texcoords = append(src.texcoords, [2]float32{v[0], v[1]})
			}
		case "COLOR":
			rgb := st.source.stride(4) < 4
			for _, v := range st.source.elements(4) {
				if rgb {
					v[3] = 1
				}
				src.colors = append(src.colors, [4]float32{v[0], v[1], v[2], v[3]})
			}
		case "TEXTANGENT":
			for _, v := range st.source.elements(3) {
				src.tangents = append(src.tangents, [3]float32{v[0], v[1], v[2]})
			}
		case "TEXBINORMAL":
			for _, v := range st.source.elements(3) {
				src.bitangents = append(src.bitangents, [3]float32{v[0], v[1], v[2]})
			}
		default:
			continue
		}
		offsets[st.semantic] = st.offset
	}
	if _, ok := offsets["POSITION"]; !ok {
		return scene.Mesh{}, errors.New("primitive has no POSITION input")
	}
	_, hasNormals := offsets["NORMAL"]
	_, hasTexCoords := offsets["TEXCOORD"]

	b := newMeshBuilder(name, material)
	vertex := func(p []int, v int) (uint32, error) {
		base := v * stride
		if base+stride > len(p) {
			return 0, errors.Errorf("index list too short for vertex %d", v)
		}
		key := noVertexKey
		for semantic, off := range offsets {
			idx := p[base+off]
			switch semantic {
			case "POSITION":
				key.position = idx
			case "NORMAL":
				key.normal = idx
			case "TEXCOORD":
				key.texcoord = idx
			case "COLOR":
				key.color = idx
			case "TEXTANGENT":
				key.tangent = idx
			case "TEXBINORMAL":
				key.bitangent = idx
			}
		}
		if key.position < 0 || key.position >= len(src.positions) {
			return 0, errors.Errorf("position index %d out of range", key.position)
		}
		return b.vertex(src, key), nil
	}
	polygon := func(p []int, first, n int) ([]uint32, error) {
		poly := make([]uint32, n)
		for k := 0; k < n; k++ {
			idx, err := vertex(p, first+k)
			if err != nil {
				return nil, err
			}
			poly[k] = idx
		}
		return poly, nil
	}

	lists := make([][]int, len(prim.p))
	for i, p := range prim.p {
		if lists[i], err = parseIntList(p); err != nil {
			return scene.Mesh{}, err
		}
	}

	switch prim.kind {
	case "triangles", "lines":
		n := 3
		if prim.kind == "lines" {
			n = 2
		}
		for _, p := range lists {
			for v := 0; (v+n)*stride <= len(p); v += n {
				poly, err := polygon(p, v, n)
				if err != nil {
					return scene.Mesh{}, err
				}
				b.mesh.Faces = append(b.mesh.Faces, poly)
			}
		}
	case "polylist":
		counts, err := parseIntList(prim.vcount)
		if err != nil {
			return scene.Mesh{}, err
		}
		if len(lists) == 0 {
			break
		}
		v := 0
		for _, n := range counts {
			poly, err := polygon(lists[0], v, n)
			if err != nil {
				return scene.Mesh{}, err
			}
			b.addPolygon(poly)
			v += n
		}
	case "polygons":
		for _, p := range lists {
			if len(p) < stride {
				continue
			}
			poly, err := polygon(p, 0, len(p)/stride)
			if err != nil {
				return scene.Mesh{}, err
			}
			b.addPolygon(poly)
		}
	case "linestrips":
		for _, p := range lists {
			line, err := polygon(p, 0, len(p)/stride)
			if err != nil {
				return scene.Mesh{}, err
			}
			for i := 0; i+1 < len(line); i++ {
				b.mesh.Faces = append(b.mesh.Faces, scene.Face{line[i], line[i+1]})
			}
		}
	case "tristrips", "trifans":
		mode := gltf.PrimitiveTriangleStrip
		if prim.kind == "trifans" {
			mode = gltf.PrimitiveTriangleFan
		}
		for _, p := range lists {
			idx, err := polygon(p, 0, len(p)/stride)
			if err != nil {
				return scene.Mesh{}, err
			}
			b.mesh.Faces = append(b.mesh.Faces, gltfFaces(mode, idx)...)
		}
	}

	return b.finish(hasNormals, hasTexCoords), nil
}

func parseFloatList(s string) ([]float32, error) {
	fields := strings.Fields(s)
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, errors.Errorf("invalid number %q", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseIntList(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Errorf("invalid index %q", f)
		}
		out[i] = v
	}
	return out, nil
}

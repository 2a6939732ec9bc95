// Package importer reads 3D model files into the scene model.
//
// Supported inputs are glTF 2.0 (.gltf and .glb), Wavefront OBJ with MTL
// material libraries (.obj) and COLLADA (.dae). Every importer triangulates
// polygons with more than three vertices, joins identical vertices and keeps
// lines and points as 2- and 1-index faces.
package importer

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wurmonline/womconverter/internal/logger"
	"github.com/wurmonline/womconverter/pkg/scene"
)

// Import errors.
var (
	ErrImportFailed      = errors.New("import failed")
	ErrUnsupportedFormat = errors.New("unsupported model format")
)

// Options controls the import post-processing.
type Options struct {
	// GenerateTangents computes tangents and bitangents for meshes that
	// have normals and texture coordinates but no tangents.
	GenerateTangents bool
}

type loadFunc func(path string) (*scene.Scene, error)

var loaders = map[string]loadFunc{
	".gltf": loadGLTF,
	".glb":  loadGLTF,
	".obj":  loadOBJ,
	".dae":  loadCollada,
}

// importError reports a failed import. It matches ErrImportFailed and
// unwraps to the cause.
type importError struct {
	path  string
	cause error
}

func (e *importError) Error() string {
	return "import " + e.path + ": " + e.cause.Error()
}

func (e *importError) Is(target error) bool {
	return target == ErrImportFailed
}

func (e *importError) Unwrap() error {
	return e.cause
}

// Supported reports whether path has an importable extension.
func Supported(path string) bool {
	_, ok := loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the supported file extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(loaders))
	for ext := range loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Import reads the model at path. Every failure matches ErrImportFailed.
func Import(path string, opts Options) (*scene.Scene, error) {
	load, ok := loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, &importError{path: path, cause: ErrUnsupportedFormat}
	}

	sc, err := load(path)
	if err != nil {
		return nil, &importError{path: path, cause: err}
	}

	if n := postProcess(sc, opts); n > 0 {
		logger.Debug("Generated tangents", zap.String("file", path), zap.Int("meshes", n))
	}
	return sc, nil
}

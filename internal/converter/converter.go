// Package converter writes imported scenes as WOM files.
package converter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wurmonline/womconverter/internal/importer"
	"github.com/wurmonline/womconverter/internal/logger"
	"github.com/wurmonline/womconverter/internal/matreport"
	"github.com/wurmonline/womconverter/pkg/encoding"
	"github.com/wurmonline/womconverter/pkg/scene"
	"github.com/wurmonline/womconverter/pkg/wom"
)

// ErrConversionFailed matches every error that aborted the conversion of a file.
var ErrConversionFailed = errors.New("conversion failed")

// OutputExt is the extension of converted files.
const OutputExt = ".wom"

// Options controls a conversion.
type Options struct {
	// GenerateTangents asks the importer to compute missing tangents.
	GenerateTangents bool

	// FixMeshNames names meshes after their texture, see wom.EncodeOptions.
	FixMeshNames bool

	// Overrides forces material names by texture name. May be nil.
	Overrides wom.OverrideTable

	// Report collects the materials of each converted file. May be nil.
	Report *matreport.Reporter
}

func (o Options) encodeOptions() wom.EncodeOptions {
	eo := wom.EncodeOptions{
		FixMeshNames: o.FixMeshNames,
		Overrides:    o.Overrides,
	}
	if o.Report != nil {
		eo.Recorder = o.Report
	}
	return eo
}

// conversionError matches ErrConversionFailed and unwraps to its cause.
type conversionError struct {
	path  string
	cause error
}

func (e *conversionError) Error() string {
	return "convert " + e.path + ": " + e.cause.Error()
}

func (e *conversionError) Is(target error) bool {
	return target == ErrConversionFailed
}

func (e *conversionError) Unwrap() error {
	return e.cause
}

// Convert encodes sc into a new file at outputPath.
//
// An invalid scene is rejected before the file is created. On any other
// error the file is left partially written. The file is closed on every path.
func Convert(sc *scene.Scene, outputPath string, opts Options) error {
	if err := sc.Validate(); err != nil {
		return &conversionError{path: outputPath, cause: err}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return &conversionError{path: outputPath, cause: errors.Wrap(err, "creating output file")}
	}

	stats, err := wom.Encode(bufio.NewWriter(f), sc, opts.encodeOptions())
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "closing output file")
	}
	if stats != nil {
		logStats(sc, stats)
	}
	if err != nil {
		return &conversionError{path: outputPath, cause: err}
	}

	logger.Info("Wrote WOM file",
		zap.String("file", outputPath),
		zap.Int("meshes", len(stats.Meshes)),
		zap.Int("nodes", stats.SelectedNodes()),
		zap.Int64("bytes", stats.Bytes),
	)
	return nil
}

// OutputPath returns the WOM file name for inputPath inside outputDir.
func OutputPath(inputPath, outputDir string) string {
	return filepath.Join(outputDir, encoding.TrimExt(filepath.Base(inputPath))+OutputExt)
}

// ConvertFile imports inputPath and writes <name>.wom into outputDir.
//
// An import failure matches importer.ErrImportFailed and creates no file.
// After a successful conversion the material report, if any, is flushed
// under the input file name; after a failed one it is discarded.
func ConvertFile(inputPath, outputDir string, opts Options) (string, error) {
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		absOut = outputDir
	}
	logger.Info("Converting file",
		zap.String("file", filepath.Base(inputPath)),
		zap.String("output_dir", absOut),
	)

	sc, err := importer.Import(inputPath, importer.Options{GenerateTangents: opts.GenerateTangents})
	if err != nil {
		logger.Error("Failed to load scene", zap.String("file", filepath.Base(inputPath)), zap.Error(err))
		return "", err
	}

	out := OutputPath(inputPath, outputDir)
	if err := Convert(sc, out, opts); err != nil {
		if opts.Report != nil {
			opts.Report.Discard()
		}
		return out, err
	}

	if opts.Report != nil {
		if err := opts.Report.Flush(filepath.Base(inputPath)); err != nil {
			return out, &conversionError{path: out, cause: err}
		}
	}

	logger.Info("File converted",
		zap.String("file", filepath.Base(inputPath)),
		zap.String("output_dir", absOut),
	)
	return out, nil
}

func logStats(sc *scene.Scene, stats *wom.Stats) {
	for i, m := range stats.Meshes {
		name := zap.String("mesh", m.Name)
		if m.Name != m.SourceName {
			logger.Info("Mesh name override", name, zap.String("source", m.SourceName))
		}
		logger.Info("Mesh",
			name,
			zap.Bool("tangents", m.HasTangents),
			zap.Bool("bitangents", m.HasBitangents),
			zap.Bool("colors", m.HasColors),
			zap.Int("vertices", m.Vertices),
			zap.Int("faces", m.Faces),
			zap.Int("indices", m.Faces*3),
		)
		if m.SkippedFaces > 0 {
			logger.Warn(fmt.Sprintf("Mesh %s has %d %s that's not a triangle, this doesn't work in wom",
				m.Name, m.SkippedFaces, plural(m.SkippedFaces, "face", "faces")))
		}

		if i < len(stats.Materials) {
			mat := stats.Materials[i]
			logger.Info("Material",
				zap.String("name", mat.Name),
				zap.Bool("forced", mat.Overridden),
				zap.String("texture", mat.Texture),
				zap.String("emissive", formatFloats(mat.Emissive[:]...)),
				zap.String("shininess", formatFloats(mat.Shininess)),
				zap.String("specular", formatFloats(mat.Specular[:]...)),
				zap.String("transparency", formatFloats(mat.Transparent[:]...)),
			)
		}
	}

	if sc.Root != nil {
		logger.Info("Checking nodes",
			zap.String("root", sc.Root.Name),
			zap.Int("children", len(sc.Root.Children)),
			zap.Int("meshes", len(sc.Root.Meshes)),
		)
	}
	for _, n := range stats.Nodes {
		mark := "-"
		if n.Selected {
			mark = "+"
		}
		logger.Info(fmt.Sprintf("%s %s", mark, n.Name),
			zap.Int("children", n.Children),
			zap.Int("meshes", n.Meshes),
		)
		if n.Selected {
			for row := 0; row < 4; row++ {
				logger.Info(" -> " + formatRow(n.Transform, row))
			}
		}
	}
}

func formatRow(m mgl32.Mat4, row int) string {
	r := m.Row(row)
	return formatFloats(r[0], r[1], r[2], r[3])
}

func formatFloats(vs ...float32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return strings.Join(parts, " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

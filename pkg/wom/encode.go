package wom

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/wurmonline/womconverter/pkg/encoding"
	"github.com/wurmonline/womconverter/pkg/scene"
)

// EncodeOptions controls Encode.
type EncodeOptions struct {
	// FixMeshNames names every mesh after the stem of its material's texture
	// plus a per-texture counter ("rock-1", "rock-2") instead of its own name.
	FixMeshNames bool

	// Overrides forces material names by texture name. May be nil.
	Overrides OverrideTable

	// Recorder is told about every material written. May be nil.
	Recorder MaterialRecorder
}

// Stats reports what Encode wrote.
type Stats struct {
	Meshes    []MeshStats
	Materials []MaterialStats
	Nodes     []NodeStats // every direct child of the root
	Bytes     int64
}

// SkippedFaces returns the total number of non-triangular faces dropped.
func (s *Stats) SkippedFaces() int {
	total := 0
	for _, m := range s.Meshes {
		total += m.SkippedFaces
	}
	return total
}

// SelectedNodes returns the number of nodes written.
func (s *Stats) SelectedNodes() int {
	n := 0
	for _, node := range s.Nodes {
		if node.Selected {
			n++
		}
	}
	return n
}

// meshNamer hands out "<stem>-<n>" names. Counters live for one Encode call.
type meshNamer struct {
	counts map[string]int
}

func (n *meshNamer) next(texture string) string {
	stem := encoding.Stem(TextureName(texture))
	n.counts[stem]++
	return fmt.Sprintf("%s-%d", stem, n.counts[stem])
}

// Encode writes sc to w in WOM layout.
//
// The scene is validated first; a validation error is returned before any
// byte is written. A buffered w is flushed on success. Any I/O error,
// including a failed flush, matches ErrWriteFailed and a mesh index
// beyond MaxIndex matches ErrMeshTooLarge. On error w may hold a partial file.
func Encode(w io.Writer, sc *scene.Scene, opts EncodeOptions) (*Stats, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	out := NewWriter(w)
	stats := &Stats{
		Meshes:    make([]MeshStats, 0, len(sc.Meshes)),
		Materials: make([]MaterialStats, 0, len(sc.Meshes)),
	}

	var namer *meshNamer
	if opts.FixMeshNames {
		namer = &meshNamer{counts: make(map[string]int)}
	}

	out.WriteInt32(int32(len(sc.Meshes)))
	for i := range sc.Meshes {
		mesh := &sc.Meshes[i]
		mat := sc.Material(i)

		name := ""
		if namer != nil {
			name = namer.next(mat.DiffuseTexture)
		}

		ms, err := encodeMesh(out, mesh, name)
		if err != nil {
			return stats, err
		}
		stats.Meshes = append(stats.Meshes, ms)

		out.WriteInt32(1)
		mats, err := encodeMaterial(out, mat, opts.Overrides, opts.Recorder)
		if err != nil {
			return stats, errors.Wrapf(err, "material of mesh %q", ms.Name)
		}
		stats.Materials = append(stats.Materials, mats)
	}

	nodes, err := encodeNodes(out, sc.Root)
	stats.Nodes = nodes
	if err != nil {
		return stats, err
	}

	for range sc.Meshes {
		out.WriteBool(false)
	}

	stats.Bytes = out.Written()
	return stats, out.Flush()
}

package wom

import (
	"github.com/pkg/errors"

	"github.com/wurmonline/womconverter/pkg/scene"
)

// MeshStats describes one encoded mesh record.
type MeshStats struct {
	Name          string // name written to the file
	SourceName    string // name of the scene mesh
	HasTangents   bool
	HasBitangents bool
	HasColors     bool
	Vertices      int
	Faces         int // triangles written
	SkippedFaces  int // faces dropped for not having exactly 3 indices
}

// triangles returns the faces with exactly three indices and the number of
// faces dropped. Any retained index above MaxIndex fails with ErrMeshTooLarge.
func triangles(m *scene.Mesh) ([]scene.Face, int, error) {
	kept := make([]scene.Face, 0, len(m.Faces))
	skipped := 0
	for _, f := range m.Faces {
		if len(f) != 3 {
			skipped++
			continue
		}
		for _, idx := range f {
			if idx > MaxIndex {
				return nil, skipped, errors.Wrapf(ErrMeshTooLarge, "mesh %q references vertex %d", m.Name, idx)
			}
		}
		kept = append(kept, f)
	}
	return kept, skipped, nil
}

// encodeMesh writes one mesh record. When name is empty the mesh's own name is used.
// The faces are checked before anything is written.
func encodeMesh(w *Writer, m *scene.Mesh, name string) (MeshStats, error) {
	stats := MeshStats{
		Name:          m.Name,
		SourceName:    m.Name,
		HasTangents:   m.HasTangents(),
		HasBitangents: m.HasBitangents(),
		HasColors:     m.HasColors(),
		Vertices:      m.VertexCount(),
	}
	if name != "" {
		stats.Name = name
	}

	faces, skipped, err := triangles(m)
	if err != nil {
		return stats, err
	}
	stats.Faces = len(faces)
	stats.SkippedFaces = skipped

	w.WriteBool(stats.HasTangents)
	w.WriteBool(stats.HasBitangents)
	w.WriteBool(stats.HasColors)
	w.WriteString(stats.Name)

	w.WriteInt32(int32(stats.Vertices))
	for i := 0; i < stats.Vertices; i++ {
		p := m.Positions[i]
		n := m.Normals[i]
		uv := m.TexCoords[i]
		w.WriteFloats(p[0], p[1], p[2])
		w.WriteFloats(n[0], n[1], n[2])
		w.WriteFloats(uv[0], 1-uv[1])
		if stats.HasColors {
			c := m.Colors[i]
			w.WriteFloats(c[0], c[1], c[2])
		}
		if stats.HasTangents {
			t := m.Tangents[i]
			w.WriteFloats(t[0], t[1], t[2])
		}
		if stats.HasBitangents {
			b := m.Bitangents[i]
			w.WriteFloats(b[0], b[1], b[2])
		}
	}

	w.WriteInt32(int32(len(faces) * 3))
	for _, f := range faces {
		w.WriteUint16(uint16(f[0]))
		w.WriteUint16(uint16(f[1]))
		w.WriteUint16(uint16(f[2]))
	}

	return stats, w.Err()
}

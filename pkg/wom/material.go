package wom

import (
	"github.com/wurmonline/womconverter/pkg/encoding"
	"github.com/wurmonline/womconverter/pkg/scene"
)

// OverrideTable maps a texture file name to a forced material name.
type OverrideTable interface {
	Lookup(texture string) (string, bool)
}

// MaterialRecorder receives the material and texture name of every encoded material.
type MaterialRecorder interface {
	Record(material, texture string)
}

// MaterialStats describes one encoded material record.
type MaterialStats struct {
	Name        string // name written to the file
	SourceName  string
	Texture     string // normalized texture name
	TexturePath string // texture reference as found in the scene
	Overridden  bool
	Emissive    scene.Color
	Shininess   float32
	Specular    scene.Color
	Transparent scene.Color
}

// TextureName returns the final path segment of a texture reference.
// Both '/' and '\' are separators.
func TextureName(ref string) string {
	return encoding.BaseName(ref)
}

// MaterialName returns the name written for mat: the override registered for
// its texture name if any, otherwise the material's own name.
func MaterialName(mat *scene.Material, overrides OverrideTable) (string, bool) {
	if overrides != nil {
		if name, ok := overrides.Lookup(TextureName(mat.DiffuseTexture)); ok {
			return name, true
		}
	}
	return mat.Name, false
}

// encodeMaterial writes one material record.
//
// The enabled byte and the four property exists bytes are always 1. The
// renderer's loader reads them at fixed offsets, so they stay on the wire.
func encodeMaterial(w *Writer, mat *scene.Material, overrides OverrideTable, rec MaterialRecorder) (MaterialStats, error) {
	texture := TextureName(mat.DiffuseTexture)
	name, overridden := MaterialName(mat, overrides)

	stats := MaterialStats{
		Name:        name,
		SourceName:  mat.Name,
		Texture:     texture,
		TexturePath: mat.DiffuseTexture,
		Overridden:  overridden,
		Emissive:    mat.Emissive,
		Shininess:   mat.Shininess,
		Specular:    mat.Specular,
		Transparent: mat.Transparent,
	}

	w.WriteString(texture)
	w.WriteString(name)
	if rec != nil {
		rec.Record(name, texture)
	}

	w.WriteBool(true)

	w.WriteBool(true)
	writeColor(w, mat.Emissive)
	w.WriteBool(true)
	w.WriteFloat32(mat.Shininess)
	w.WriteBool(true)
	writeColor(w, mat.Specular)
	w.WriteBool(true)
	writeColor(w, mat.Transparent)

	return stats, w.Err()
}

func writeColor(w *Writer, c scene.Color) {
	w.WriteFloats(c[0], c[1], c[2], c[3])
}

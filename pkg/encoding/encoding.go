// Package encoding provides text encoding and path name utilities shared by the
// importers and the WOM encoder.
package encoding

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Latin1ToUTF8 converts ISO-8859-1 encoded bytes to a UTF-8 string.
// Returns the input bytes as a string if conversion fails.
func Latin1ToUTF8(data []byte) string {
	decoder := charmap.ISO8859_1.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToLatin1 converts a UTF-8 string to ISO-8859-1 bytes.
// Characters outside Latin-1 make the conversion fail and the UTF-8 bytes are returned.
func UTF8ToLatin1(s string) []byte {
	encoder := charmap.ISO8859_1.NewEncoder()
	result, _, err := transform.Bytes(encoder, []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// NormalizePath converts backslashes to forward slashes.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// BaseName returns the final segment of a path, treating both '/' and '\' as
// separators. Unlike filepath.Base it returns "" for an empty path.
func BaseName(path string) string {
	path = NormalizePath(path)
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// Stem returns name up to its first '.'.
//
//	Stem("rock.diffuse.png") == "rock"
func Stem(name string) string {
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// TrimExt returns name without its last extension.
func TrimExt(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		return name[:idx]
	}
	return name
}

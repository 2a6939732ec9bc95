// Package wom provides the encoder and decoder for the WOM binary model format.
//
// A WOM file is little-endian with no magic or version header. It holds a
// mesh count, one mesh record per mesh (each paired with exactly one
// material record), a node section of exported attachment points and one
// skinning flag per mesh. Strings are an int32 byte length followed by UTF-8
// bytes without a terminator.
package wom

import (
	"math"

	"github.com/pkg/errors"
)

// NodePrefix marks the root children exported to the node section.
const NodePrefix = "wom-"

// MaxIndex is the largest vertex index a mesh record can address.
const MaxIndex = math.MaxUint16

// Number of floats in each material property block.
const (
	colorFloats     = 4
	shininessFloats = 1
	matrixFloats    = 16
)

// WOM format errors.
var (
	ErrMeshTooLarge        = errors.New("mesh has too many vertices for 16-bit indices")
	ErrWriteFailed         = errors.New("write failed")
	ErrTruncatedData       = errors.New("truncated WOM data")
	ErrInvalidCount        = errors.New("invalid WOM count")
	ErrUnsupportedSkinning = errors.New("WOM skinning data is not supported")
)

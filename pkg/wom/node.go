package wom

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wurmonline/womconverter/pkg/scene"
)

// NodeStats describes one direct child of the scene root.
type NodeStats struct {
	Name       string // name in the scene
	ExportName string // name written to the file, empty when not selected
	Selected   bool
	Children   int
	Meshes     int
	Transform  mgl32.Mat4
}

// SelectNodes returns the direct children of root whose names start with
// NodePrefix, in order. Grandchildren are never selected. A nil root selects nothing.
func SelectNodes(root *scene.Node) []*scene.Node {
	if root == nil {
		return nil
	}
	var selected []*scene.Node
	for _, child := range root.Children {
		if child != nil && strings.HasPrefix(child.Name, NodePrefix) {
			selected = append(selected, child)
		}
	}
	return selected
}

// ExportName strips NodePrefix from a node name.
func ExportName(name string) string {
	return strings.TrimPrefix(name, NodePrefix)
}

// encodeNodes writes the node count and one record per selected node. It
// returns stats for every direct child of root, selected or not.
func encodeNodes(w *Writer, root *scene.Node) ([]NodeStats, error) {
	var stats []NodeStats
	if root != nil {
		for _, child := range root.Children {
			if child == nil {
				continue
			}
			s := NodeStats{
				Name:      child.Name,
				Selected:  strings.HasPrefix(child.Name, NodePrefix),
				Children:  len(child.Children),
				Meshes:    len(child.Meshes),
				Transform: child.Transform,
			}
			if s.Selected {
				s.ExportName = ExportName(child.Name)
			}
			stats = append(stats, s)
		}
	}

	selected := SelectNodes(root)
	w.WriteInt32(int32(len(selected)))
	for _, node := range selected {
		// Parent name slot, always empty.
		w.WriteString("")
		w.WriteString(ExportName(node.Name))
		w.WriteUint8(0)
		for row := 0; row < 4; row++ {
			r := node.Transform.Row(row)
			w.WriteFloats(r[0], r[1], r[2], r[3])
		}
		// Second matrix slot, always zero.
		for i := 0; i < matrixFloats; i++ {
			w.WriteFloat32(0)
		}
	}

	return stats, w.Err()
}

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/wurmonline/womconverter/pkg/wom"
)

var spewConfig = spew.NewDefaultConfig()

func init() {
	spewConfig.Indent = "  "
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
}

func cmdInspect(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("Usage: womconverter inspect [-dump] <file.wom>...", 1)
	}

	for i, path := range c.Args() {
		f, err := wom.ParseFile(path)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s\n", path)
		if c.Bool("dump") {
			spewConfig.Fdump(os.Stdout, f)
			continue
		}
		printFile(os.Stdout, f)
	}
	return nil
}

func printFile(w io.Writer, f *wom.File) {
	table := tablewriter.NewWriter(w)
	table.Header("Mesh", "Flags", "Vertices", "Indices", "Material", "Texture", "Skinned")
	for i, m := range f.Meshes {
		mat, tex := "", ""
		if len(m.Materials) > 0 {
			mat, tex = m.Materials[0].Name, m.Materials[0].Texture
		}
		skinned := i < len(f.Skinning) && f.Skinning[i]
		table.Append([]string{
			m.Name,
			meshFlags(&m),
			strconv.Itoa(len(m.Vertices)),
			strconv.Itoa(len(m.Indices)),
			mat,
			tex,
			strconv.FormatBool(skinned),
		})
	}
	table.Render()

	if len(f.Nodes) == 0 {
		fmt.Fprintln(w, "No nodes")
		return
	}
	fmt.Fprintf(w, "Nodes (%d):\n", len(f.Nodes))
	for _, n := range f.Nodes {
		t := n.Transform
		fmt.Fprintf(w, "  %s  translation (%.4f, %.4f, %.4f)\n", n.Name, t[3], t[7], t[11])
	}
}

func meshFlags(m *wom.Mesh) string {
	var flags []string
	if m.HasTangents {
		flags = append(flags, "tangents")
	}
	if m.HasBitangents {
		flags = append(flags, "bitangents")
	}
	if m.HasColors {
		flags = append(flags, "colors")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

// womconverter converts COLLADA, Wavefront OBJ and glTF models to the WOM format.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/wurmonline/womconverter/internal/config"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "womconverter"
	app.Usage = "Convert 3D models to WOM files"
	app.Version = version
	app.ArgsUsage = "[input_files_regex]"
	app.Flags = config.Flags()
	app.Action = cmdConvert
	app.Commands = []cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert every matching model in the input directory",
			ArgsUsage: "[input_files_regex]",
			Flags:     config.Flags(),
			Action:    cmdConvert,
		},
		{
			Name:      "inspect",
			Usage:     "Print the meshes, materials and nodes of WOM files",
			ArgsUsage: "file.wom [file.wom...]",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "dump", Usage: "Dump the decoded file structure"},
			},
			Action: cmdInspect,
		},
		{
			Name:   "pick",
			Usage:  "Choose a model in a file dialog and convert it in place",
			Action: cmdPick,
		},
		{
			Name:      "init-config",
			Usage:     "Write a config file with default values",
			ArgsUsage: "[path]",
			Action:    cmdInitConfig,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sqweek/dialog"
	"github.com/urfave/cli"

	"github.com/wurmonline/womconverter/internal/converter"
	"github.com/wurmonline/womconverter/internal/logger"
)

// cmdPick converts a single model chosen in a native file dialog. The WOM
// file is written next to the model with tangents generated.
func cmdPick(c *cli.Context) error {
	if _, err := setup(c); err != nil {
		return err
	}
	defer logger.Sync()

	path, err := dialog.File().
		Filter("3D Models", "dae", "obj", "gltf", "glb").
		Filter("All Files", "*").
		Title("Open Model").
		Load()
	if err != nil {
		if err == dialog.ErrCancelled {
			return nil
		}
		return errors.Wrap(err, "file dialog")
	}

	out, err := converter.ConvertFile(path, filepath.Dir(path), converter.Options{GenerateTangents: true})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

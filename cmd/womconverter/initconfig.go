package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/wurmonline/womconverter/internal/config"
)

func cmdInitConfig(c *cli.Context) error {
	cfg := config.Default()

	if c.NArg() > 0 {
		path := c.Args().First()
		if err := cfg.SaveTo(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	path, err := cfg.Save()
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

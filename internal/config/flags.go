package config

import "github.com/urfave/cli"

// Flag names shared by the CLI and the config overlay.
const (
	FlagConfig           = "config"
	FlagGenerateTangents = "generatetangents"
	FlagRecursive        = "recursive"
	FlagFixMeshNames     = "fixmeshnames"
	FlagInputDir         = "indir"
	FlagOutputDir        = "outdir"
	FlagForceMats        = "forcemats"
	FlagMatReport        = "matreport"
	FlagDebug            = "debug"
	FlagLogFile          = "logfile"
)

// FlagSource is the part of *cli.Context read by Load.
type FlagSource interface {
	String(name string) string
	Bool(name string) bool
}

// Flags returns the command-line flags that override config values.
func Flags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: FlagConfig, Usage: "Path to config file"},
		cli.BoolFlag{Name: FlagGenerateTangents, Usage: "Generate tangents and bitangents when the input has none"},
		cli.BoolFlag{Name: FlagRecursive, Usage: "Convert files in all sub-directories, mirroring them in the output directory"},
		cli.BoolFlag{Name: FlagFixMeshNames, Usage: "Name meshes after their texture"},
		cli.StringFlag{Name: FlagInputDir, Usage: "Directory to look for input files in"},
		cli.StringFlag{Name: FlagOutputDir, Usage: "Directory to write WOM files to"},
		cli.StringFlag{Name: FlagForceMats, Usage: "Material name overrides by texture file name"},
		cli.StringFlag{Name: FlagMatReport, Usage: "Write the materials and textures of every model to this file"},
		cli.BoolFlag{Name: FlagDebug, Usage: "Enable debug logging"},
		cli.StringFlag{Name: FlagLogFile, Usage: "Also log to this file"},
	}
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, flags FlagSource) {
	if flags.Bool(FlagGenerateTangents) {
		cfg.Conversion.GenerateTangents = true
	}
	if flags.Bool(FlagRecursive) {
		cfg.Conversion.Recursive = true
	}
	if flags.Bool(FlagFixMeshNames) {
		cfg.Conversion.FixMeshNames = true
	}
	if v := flags.String(FlagInputDir); v != "" {
		cfg.Conversion.InputDir = v
	}
	if v := flags.String(FlagOutputDir); v != "" {
		cfg.Conversion.OutputDir = v
	}
	if v := flags.String(FlagForceMats); v != "" {
		cfg.Conversion.ForceMats = v
	}
	if v := flags.String(FlagMatReport); v != "" {
		cfg.Conversion.MatReport = v
	}
	if flags.Bool(FlagDebug) {
		cfg.Logging.Level = "debug"
	}
	if v := flags.String(FlagLogFile); v != "" {
		cfg.Logging.LogFile = v
	}
}

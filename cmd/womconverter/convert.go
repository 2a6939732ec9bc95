package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/wurmonline/womconverter/internal/config"
	"github.com/wurmonline/womconverter/internal/converter"
	"github.com/wurmonline/womconverter/internal/logger"
	"github.com/wurmonline/womconverter/internal/matreport"
	"github.com/wurmonline/womconverter/internal/overrides"
)

// setup loads the config for c and starts logging.
func setup(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cmdConvert(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	conv := cfg.Conversion
	if c.NArg() > 0 {
		conv.Pattern = c.Args().Get(c.NArg() - 1)
	}

	opts := converter.Options{
		GenerateTangents: conv.GenerateTangents,
		FixMeshNames:     conv.FixMeshNames,
	}

	if conv.ForceMats != "" {
		table, err := overrides.Load(conv.ForceMats)
		if err != nil {
			return err
		}
		logger.Info("Loaded material overrides", zap.String("path", conv.ForceMats), zap.Int("entries", table.Len()))
		opts.Overrides = table
	}

	if conv.MatReport != "" {
		report, err := matreport.New(conv.MatReport)
		if err != nil {
			return err
		}
		defer func() {
			if err := report.Close(); err != nil {
				logger.Error("Failed to close material report", zap.Error(err))
			}
		}()
		opts.Report = report
	}

	logger.Info("Converting models",
		zap.String("input", conv.InputDir),
		zap.String("output", conv.OutputDir),
		zap.String("pattern", conv.Pattern),
		zap.Bool("recursive", conv.Recursive))

	sum, err := converter.ConvertDir(conv.InputDir, conv.OutputDir, conv.Pattern, conv.Recursive, opts)
	if err != nil {
		return err
	}

	printSummary(os.Stdout, sum, conv.InputDir)

	if n := sum.Count(converter.StatusFailed); n > 0 {
		return cli.NewExitError(fmt.Sprintf("%d file(s) failed to convert", n), 1)
	}
	return nil
}

func printSummary(w io.Writer, sum *converter.Summary, inputDir string) {
	if len(sum.Results) == 0 {
		fmt.Fprintln(w, "No matching files found")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("File", "Output", "Status", "Error")
	for _, r := range sum.Results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		table.Append([]string{relPath(inputDir, r.Input), r.Output, r.Status.String(), errText})
	}
	table.Render()

	fmt.Fprintf(w, "Converted: %d  Skipped: %d  Failed: %d\n",
		sum.Count(converter.StatusConverted),
		sum.Count(converter.StatusSkipped),
		sum.Count(converter.StatusFailed))
}

func relPath(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

package converter

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wurmonline/womconverter/internal/importer"
	"github.com/wurmonline/womconverter/internal/logger"
)

// Status is the outcome of converting one file in a batch.
type Status int

const (
	StatusConverted Status = iota
	StatusSkipped          // the importer could not read the file
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "converted"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes one file of a batch.
type Result struct {
	Input  string
	Output string
	Status Status
	Err    error
}

// Summary lists the results of a batch in conversion order.
type Summary struct {
	Results []Result
}

// Count returns the number of results with status st.
func (s *Summary) Count(st Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == st {
			n++
		}
	}
	return n
}

// Add converts one file and records the outcome. Import failures count as
// skipped, every other error as failed.
func (s *Summary) Add(inputPath, outputDir string, opts Options) Result {
	out, err := ConvertFile(inputPath, outputDir, opts)
	res := Result{Input: inputPath, Output: out, Err: err}
	switch {
	case err == nil:
		res.Status = StatusConverted
	case errors.Is(err, importer.ErrImportFailed):
		res.Status = StatusSkipped
	default:
		res.Status = StatusFailed
		logger.Error("Conversion failed", zap.String("file", inputPath), zap.Error(err))
	}
	s.Results = append(s.Results, res)
	return res
}

// CompilePattern compiles a file name pattern that must match the whole name.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file pattern %q", pattern)
	}
	return re, nil
}

// ConvertDir converts every file in inputDir whose name fully matches
// pattern into outputDir. With recursive set, sub-directories are walked and
// mirrored under outputDir, which is created on demand.
//
// Per-file errors are logged and recorded in the summary; only an invalid
// pattern or an unreadable inputDir is returned as an error.
func ConvertDir(inputDir, outputDir, pattern string, recursive bool, opts Options) (*Summary, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, errors.Wrap(err, "input directory")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("input directory is not a valid directory: %s", inputDir)
	}

	sum := &Summary{}
	if err := convertDir(inputDir, outputDir, re, recursive, opts, sum); err != nil {
		return sum, err
	}
	return sum, nil
}

func convertDir(inputDir, outputDir string, re *regexp.Regexp, recursive bool, opts Options, sum *Summary) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return errors.Wrapf(err, "reading directory %s", inputDir)
	}

	var dirs []string
	outputReady := false
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
			continue
		}
		if !re.MatchString(e.Name()) {
			continue
		}

		if !outputReady {
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return errors.Wrapf(err, "creating output directory %s", outputDir)
			}
			outputReady = true
		}
		sum.Add(filepath.Join(inputDir, e.Name()), outputDir, opts)
	}

	if !recursive {
		return nil
	}
	for _, name := range dirs {
		sub := filepath.Join(inputDir, name)
		if err := convertDir(sub, filepath.Join(outputDir, name), re, recursive, opts, sum); err != nil {
			logger.Error("Skipping directory", zap.String("dir", sub), zap.Error(err))
		}
	}
	return nil
}

// Package matreport writes a per-file report of the materials used by converted models.
//
// For every converted file the report lists the file name followed by one
// "- material -> texture" line per distinct material name.
package matreport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// Reporter accumulates material/texture pairs for one file at a time.
// It is not safe for concurrent use.
type Reporter struct {
	w       *bufio.Writer
	closer  io.Closer
	entries map[string]string
}

// New creates (or truncates) the report file at path.
func New(path string) (*Reporter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating material report")
	}
	r := NewWriter(f)
	r.closer = f
	return r, nil
}

// NewWriter returns a Reporter writing to w. Close does not close w.
func NewWriter(w io.Writer) *Reporter {
	return &Reporter{
		w:       bufio.NewWriter(w),
		entries: make(map[string]string),
	}
}

// Record remembers that material uses texture. A later record for the same
// material replaces the texture. Recording on a nil Reporter does nothing.
func (r *Reporter) Record(material, texture string) {
	if r == nil {
		return
	}
	r.entries[material] = texture
}

// Len returns the number of materials recorded since the last flush.
func (r *Reporter) Len() int {
	return len(r.entries)
}

// Flush writes the recorded materials under source, sorted by material name,
// and clears them.
func (r *Reporter) Flush(source string) error {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(r.w, source)
	for _, name := range names {
		fmt.Fprintf(r.w, "- %s -> %s\n", name, r.entries[name])
	}
	r.Discard()

	if err := r.w.Flush(); err != nil {
		return errors.Wrap(err, "writing material report")
	}
	return nil
}

// Discard clears the recorded materials without writing them.
func (r *Reporter) Discard() {
	for name := range r.entries {
		delete(r.entries, name)
	}
}

// Close flushes buffered output and closes the report file.
func (r *Reporter) Close() error {
	err := r.w.Flush()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return errors.Wrap(err, "closing material report")
	}
	return nil
}

package wom

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer is a sequential little-endian encoder.
//
// Errors are sticky: after the first failed write every later write is a
// no-op and Err returns the failure, which matches ErrWriteFailed.
type Writer struct {
	w   io.Writer
	buf [4]byte
	n   int64
	err error
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// writeError carries the underlying I/O error of a failed write.
type writeError struct {
	err error
}

func (e *writeError) Error() string {
	return "wom: write failed: " + e.err.Error()
}

func (e *writeError) Is(target error) bool {
	return target == ErrWriteFailed
}

func (e *writeError) Unwrap() error {
	return e.err
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = &writeError{err: err}
	}
}

// WriteInt32 writes v as 4 bytes.
func (w *Writer) WriteInt32(v int32) {
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(v))
	w.write(w.buf[:4])
}

// WriteUint16 writes v as 2 bytes.
func (w *Writer) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

// WriteFloat32 writes the IEEE 754 bits of v as 4 bytes.
func (w *Writer) WriteFloat32(v float32) {
	binary.LittleEndian.PutUint32(w.buf[:4], math.Float32bits(v))
	w.write(w.buf[:4])
}

// WriteFloats writes each value with WriteFloat32.
func (w *Writer) WriteFloats(vs ...float32) {
	for _, v := range vs {
		w.WriteFloat32(v)
	}
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(b bool) {
	if b {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteString writes the UTF-8 byte length of s as an int32 followed by the bytes.
func (w *Writer) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	if len(s) > 0 {
		w.write([]byte(s))
	}
}

type flusher interface {
	Flush() error
}

// Flush flushes the underlying writer if it buffers, such as a bufio.Writer.
// It returns the first write or flush error.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if f, ok := w.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			w.err = &writeError{err: err}
		}
	}
	return w.err
}

// Err returns the first write error, or nil.
func (w *Writer) Err() error {
	return w.err
}

// Written returns the number of bytes accepted by the underlying writer.
func (w *Writer) Written() int64 {
	return w.n
}

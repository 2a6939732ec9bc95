package matreport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFlush(t *testing.T) {
	var buf bytes.Buffer
	r := NewWriter(&buf)

	r.Record("Wood", "wood.png")
	r.Record("Bark", "bark.png")
	r.Record("Wood", "wood2.png")
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	if err := r.Flush("tree.dae"); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Flush did not clear, Len() = %d", r.Len())
	}

	r.Record("Stone", "stone.png")
	if err := r.Flush("rock.dae"); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := r.Flush("empty.dae"); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want := "tree.dae\n" +
		"- Bark -> bark.png\n" +
		"- Wood -> wood2.png\n" +
		"rock.dae\n" +
		"- Stone -> stone.png\n" +
		"empty.dae\n"
	if got := buf.String(); got != want {
		t.Errorf("report =\n%s\nwant\n%s", got, want)
	}
}

func TestDiscard(t *testing.T) {
	var buf bytes.Buffer
	r := NewWriter(&buf)
	r.Record("Broken", "broken.png")
	r.Discard()
	if err := r.Flush("next.dae"); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if got := buf.String(); got != "next.dae\n" {
		t.Errorf("report = %q", got)
	}
}

func TestNilRecord(t *testing.T) {
	var r *Reporter
	r.Record("a", "b")
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mats.txt")
	r, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r.Record("M", "m.png")
	if err := r.Flush("model.obj"); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "model.obj\n- M -> m.png\n" {
		t.Errorf("file = %q", data)
	}

	if _, err := New(filepath.Join(t.TempDir(), "missing", "mats.txt")); err == nil {
		t.Error("expected error for missing directory")
	}
}

package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingWriterCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "winup.log")

	rw, err := NewRotatingWriter(path, 1, 1)
	if err != nil {
		t.Fatalf("expected writer, got %v", err)
	}
	defer rw.Close()

	if _, err := rw.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestRotatingWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "winup.log")

	rw, err := NewRotatingWriter(path, 1, 1)
	if err != nil {
		t.Fatalf("expected writer, got %v", err)
	}
	rw.Write([]byte("first\n"))
	rw.Close()

	rw, err = NewRotatingWriter(path, 1, 1)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	rw.Write([]byte("second\n"))
	rw.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "first\nsecond\n" {
		t.Fatalf("expected append-only behavior, got %q", data)
	}
}

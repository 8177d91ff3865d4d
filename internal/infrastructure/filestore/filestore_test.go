package filestore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/framecheck/framecheck/internal/domain/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"quotes.txt":     "quotes\n",
		"twain.txt":      "It is curious that physical courage should be so common in the world.\n",
		"clip.mp4":       "not really a video",
		"data.bin":       "\x00\x01",
		"docs/notes.TXT": "notes",
	}
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	s, err := New(dir, "quotes.txt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNewRequiresBaseDirAndMarker(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), ""); err == nil {
		t.Error("New() with missing directory succeeded")
	}
	if _, err := New(t.TempDir(), "quotes.txt"); err == nil {
		t.Error("New() without marker file succeeded")
	}
	if _, err := New(t.TempDir(), ""); err != nil {
		t.Errorf("New() without marker requirement error = %v", err)
	}
}

func TestResolve(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		path        string
		length      int64
		contentType string
	}{
		{"/twain.txt", 70, "text/plain"},
		{"twain.txt", 70, "text/plain"},
		{"/clip.mp4", 18, "video/mpeg"},
		{"/data.bin", 2, DefaultContentType},
		{"/docs/notes.TXT", 5, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ref, err := s.Resolve(tt.path)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if ref.KnownLength != tt.length {
				t.Errorf("KnownLength = %d, want %d", ref.KnownLength, tt.length)
			}
			if ref.ContentType != tt.contentType {
				t.Errorf("ContentType = %s, want %s", ref.ContentType, tt.contentType)
			}
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	s := newTestStore(t)

	for _, p := range []string{"/absent.txt", "/", "", "/docs", "/docs/../../etc/passwd"} {
		t.Run(p, func(t *testing.T) {
			if _, err := s.Resolve(p); !errors.Is(err, model.ErrResourceNotFound) {
				t.Errorf("Resolve(%q) error = %v, want ErrResourceNotFound", p, err)
			}
		})
	}
}

func TestResolveStaysInsideBaseDir(t *testing.T) {
	s := newTestStore(t)

	ref, err := s.Resolve("/../../quotes.txt")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ref.Name != filepath.Join(s.BaseDir(), "quotes.txt") {
		t.Errorf("Name = %s, want file inside %s", ref.Name, s.BaseDir())
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	ref, err := s.Resolve("/twain.txt")
	if err != nil {
		t.Fatal(err)
	}
	rc, err := s.Open(ref)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(data)) != ref.KnownLength {
		t.Errorf("read %d bytes, want %d", len(data), ref.KnownLength)
	}

	if err := os.Remove(ref.Name); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Open(ref); !errors.Is(err, model.ErrResourceNotFound) {
		t.Errorf("Open() after removal error = %v, want ErrResourceNotFound", err)
	}
}

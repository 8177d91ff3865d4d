// Package filestore serves regular files from a single base directory.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
)

var contentTypes = map[string]string{
	".txt": "text/plain",
	".mp4": "video/mpeg",
}

// DefaultContentType is used for extensions missing from the table
const DefaultContentType = "application/octet-stream"

// ContentType maps a file name to its media type
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}

// Store is a flat-file port.FileStore rooted at a base directory
type Store struct {
	baseDir string
}

// New validates baseDir once and returns a store rooted at it. The directory
// must exist and, when marker is not empty, contain a regular file of that
// name; either failure is meant to stop the process at startup.
func New(baseDir, marker string) (*Store, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("base directory %s not found: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base directory %s is not a directory", abs)
	}

	if marker != "" {
		info, err := os.Stat(filepath.Join(abs, marker))
		if err != nil || !info.Mode().IsRegular() {
			return nil, fmt.Errorf("unable to find %s in base directory %s", marker, abs)
		}
	}

	return &Store{baseDir: abs}, nil
}

// BaseDir returns the absolute base directory
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Resolve maps a request path (already stripped of its handler prefix) to a
// regular file below the base directory
func (s *Store) Resolve(requestPath string) (*model.ResourceRef, error) {
	clean := path.Clean("/" + requestPath)
	if clean == "/" {
		return nil, fmt.Errorf("%w: %s", model.ErrResourceNotFound, requestPath)
	}

	full := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, s.baseDir+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s", model.ErrResourceNotFound, requestPath)
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrResourceNotFound, requestPath)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", requestPath, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", model.ErrResourceNotFound, requestPath)
	}

	return &model.ResourceRef{
		Path:        requestPath,
		Name:        full,
		KnownLength: info.Size(),
		ContentType: ContentType(full),
	}, nil
}

// Open opens the resolved file for reading
func (s *Store) Open(ref *model.ResourceRef) (io.ReadCloser, error) {
	f, err := os.Open(ref.Name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrResourceNotFound, ref.Path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", ref.Path, err)
	}
	return f, nil
}

// Ensure Store implements port.FileStore
var _ port.FileStore = (*Store)(nil)

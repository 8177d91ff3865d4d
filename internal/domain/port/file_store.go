package port

import (
	"io"

	"github.com/framecheck/framecheck/internal/domain/model"
)

// FileStore resolves request paths to files and opens them
type FileStore interface {
	// Resolve maps a request path to a resource, or model.ErrResourceNotFound
	Resolve(requestPath string) (*model.ResourceRef, error)

	// Open returns the resource body; the caller closes it
	Open(ref *model.ResourceRef) (io.ReadCloser, error)
}

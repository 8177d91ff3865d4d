package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
	domain "github.com/framecheck/framecheck/internal/domain/service"
)

// FileService streams files from a port.FileStore with the framing chosen
// by the decision rules
type FileService struct {
	store      port.FileStore
	logger     port.Logger
	bufferSize int
	buffers    sync.Pool
}

// NewFileService creates a new FileService instance
func NewFileService(store port.FileStore, logger port.Logger, bufferSize int) *FileService {
	if bufferSize <= 0 {
		bufferSize = model.DefaultBufferSize
	}
	s := &FileService{
		store:      store,
		logger:     logger,
		bufferSize: bufferSize,
	}
	s.buffers.New = func() any {
		buf := make([]byte, s.bufferSize)
		return &buf
	}
	return s
}

// Serve answers one request for name using the given handler variant.
//
// A missing file is answered with 404 and model.ErrResourceNotFound is
// returned. Once the header is committed any I/O error is returned as a
// *model.StreamingIOFailure; the caller must drop the connection.
func (s *FileService) Serve(w http.ResponseWriter, r *http.Request, variant model.HandlerVariant, name string) (model.FramingDecision, error) {
	ref, err := s.store.Resolve(name)
	if err != nil {
		return model.FramingDecision{}, s.fail(w, name, err)
	}

	body, err := s.store.Open(ref)
	if err != nil {
		return model.FramingDecision{}, s.fail(w, name, err)
	}
	defer body.Close()

	protocol := model.ParseProtocolVersion(r.ProtoMajor, r.ProtoMinor)
	connection := model.ParseConnectionHeader(r.Header.Values("Connection"))
	decision := domain.DecideFor(variant, protocol, connection, ref)

	if err := decision.Validate(); err != nil {
		s.logger.Warn("%s %s %s: %v (decision %s)", r.Method, r.URL.Path, r.Proto, err, decision)
	} else {
		s.logger.Debug("%s %s %s: connection=%q decision %s", r.Method, r.URL.Path, r.Proto, connection, decision)
	}

	header := w.Header()
	header.Set("Content-Type", ref.ContentType)
	ApplyFraming(header, decision, protocol)
	w.WriteHeader(http.StatusOK)

	if decision.Mode != model.FramingContentLength {
		// Commit the header now so the runtime cannot buffer a small body
		// and declare its length on our behalf.
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}

	if r.Method == http.MethodHead {
		return decision, nil
	}

	written, err := s.copy(w, body)
	if err != nil {
		return decision, &model.StreamingIOFailure{Path: r.URL.Path, Written: written, Err: err}
	}
	return decision, nil
}

func (s *FileService) fail(w http.ResponseWriter, name string, err error) error {
	if errors.Is(err, model.ErrResourceNotFound) {
		s.logger.Warn("Unable to find file: %s", name)
		w.WriteHeader(http.StatusNotFound)
		return err
	}
	s.logger.Error("Unable to open file %s: %v", name, err)
	w.WriteHeader(http.StatusInternalServerError)
	return err
}

// copy moves the body through a fixed-size pooled buffer
func (s *FileService) copy(dst io.Writer, src io.Reader) (int64, error) {
	bufp := s.buffers.Get().(*[]byte)
	defer s.buffers.Put(bufp)
	buf := *bufp

	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			m, werr := dst.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			if m != n {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("read: %w", rerr)
		}
	}
}

// ApplyFraming sets the framing and connection-management headers for d.
// HTTP/1.0 has no Transfer-Encoding, so an identity body there is marked only
// by the absent length and the closing connection.
func ApplyFraming(header http.Header, d model.FramingDecision, protocol model.ProtocolVersion) {
	switch d.Mode {
	case model.FramingContentLength:
		header.Del("Transfer-Encoding")
		header.Set("Content-Length", strconv.FormatInt(d.ContentLength, 10))
	case model.FramingChunked:
		header.Del("Content-Length")
		header.Set("Transfer-Encoding", "chunked")
	case model.FramingIdentity:
		header.Del("Content-Length")
		if protocol == model.HTTP11 {
			header.Set("Transfer-Encoding", "identity")
		}
	}

	switch {
	case !d.KeepAlive:
		header.Set("Connection", "close")
	case protocol == model.HTTP10:
		header.Set("Connection", "keep-alive")
	}
}

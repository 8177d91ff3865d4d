package service

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/framecheck/framecheck/internal/domain/model"
	domain "github.com/framecheck/framecheck/internal/domain/service"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) SetLevel(string)              {}
func (nopLogger) Close() error                 { return nil }

// memStore is an in-memory port.FileStore
type memStore map[string]string

func (m memStore) Resolve(requestPath string) (*model.ResourceRef, error) {
	name := strings.TrimPrefix(requestPath, "/")
	content, ok := m[name]
	if !ok {
		return nil, model.ErrResourceNotFound
	}
	return &model.ResourceRef{Path: requestPath, Name: name, KnownLength: int64(len(content)), ContentType: "text/plain"}, nil
}

func (m memStore) Open(ref *model.ResourceRef) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m[ref.Name])), nil
}

// fakeProber answers with a canned response chosen by the first request
// line, keyed "path proto" or just "path"; entries may be swapped between runs.
type fakeProber struct {
	mutex     sync.Mutex
	responses map[string]string
	err       error
}

func (p *fakeProber) Probe(ctx context.Context, raw []byte, target *url.URL) (*model.WireClassification, error) {
	if p.err != nil {
		return nil, p.err
	}
	line, _, _ := strings.Cut(string(raw), "\r\n")
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, errors.New("bad request line")
	}

	p.mutex.Lock()
	response, ok := p.responses[fields[1]+" "+fields[2]]
	if !ok {
		response, ok = p.responses[fields[1]]
	}
	p.mutex.Unlock()
	if !ok {
		response = "HTTP/1.1 404 Not Found\r\n\r\n"
	}
	return domain.Classify([]byte(response), true)
}

func (p *fakeProber) set(path, response string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.responses[path] = response
}

const (
	chunkedResponse = "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n1a\r\nabcdefghijklmnopqrstuvwxyz\r\n0\r\n\r\n"
	plainResponse   = "HTTP/1.1 200 OK\r\nConnection: close\r\n\r\nIt is curious that physical courage\n"
)

// honestProber returns a prober whose canned answers follow the decision
// rules for every catalog scenario
func honestProber() *fakeProber {
	p := &fakeProber{responses: map[string]string{}}
	for _, prefix := range []string{"/withlen/", "/identity/"} {
		p.responses[prefix+DefaultResource] = plainResponse
	}
	p.responses["/nolen/"+DefaultResource+" HTTP/1.0"] = plainResponse
	p.responses["/nolen/"+DefaultResource+" HTTP/1.1"] = chunkedResponse
	return p
}

type recordingPublisher struct {
	messages []*model.Message
	err      error
}

func (p *recordingPublisher) Publish(msg *model.Message) error {
	p.messages = append(p.messages, msg)
	return p.err
}

func (p *recordingPublisher) count(t model.MessageType) int {
	n := 0
	for _, m := range p.messages {
		if m.Type == t {
			n++
		}
	}
	return n
}

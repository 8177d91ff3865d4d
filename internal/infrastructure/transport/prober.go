package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
	"github.com/framecheck/framecheck/internal/domain/service"
)

const readChunkSize = 4096

// Prober is a raw-socket client that writes literal request bytes and
// classifies the response by its body shape. Framing headers are never
// interpreted and responses a conformant client would reject are accepted.
type Prober struct {
	timeout     time.Duration
	dialTimeout time.Duration
	maxBytes    int
	logger      port.Logger
}

// NewProber creates a new Prober instance
func NewProber(config model.ProbeConfig, logger port.Logger) *Prober {
	p := &Prober{
		timeout:     config.Timeout,
		dialTimeout: config.DialTimeout,
		maxBytes:    config.MaxResponseBytes,
		logger:      logger,
	}
	if p.timeout <= 0 {
		p.timeout = 500 * time.Millisecond
	}
	if p.dialTimeout <= 0 {
		p.dialTimeout = 5 * time.Second
	}
	if p.maxBytes <= 0 {
		p.maxBytes = 1 << 20
	}
	return p
}

// Probe opens one connection to target, writes raw verbatim and reads until
// the server closes the connection or stays silent for the read timeout.
// Silence is not an error: a kept-alive connection never closes on its own.
func (p *Prober) Probe(ctx context.Context, raw []byte, target *url.URL) (*model.WireClassification, error) {
	addr, err := hostPort(target)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: p.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	// Unblock any pending read or write when ctx ends.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.SetDeadline(time.Unix(1, 0))
		case <-stop:
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(p.dialTimeout))
	if _, err := conn.Write(raw); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to write request to %s: %w", addr, err)
	}

	data, complete, err := p.read(ctx, conn)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("--Request--\n%s", raw)

	c, err := service.Classify(data, complete)
	if err != nil {
		p.logger.Debug("--Response--\n%s", data)
		return nil, err
	}

	p.logger.Debug("--Response--\n%s\n%s", c.StatusLine, strings.Join(c.HeaderBlock, "\n"))
	if c.ObservedFraming == model.ObservedChunked {
		p.logger.Debug("--[CHUNKED] - sample: %s", c.Sample)
	} else {
		p.logger.Debug("--[%s] - sample: %s", strings.ToUpper(string(c.ObservedFraming)), c.Sample)
	}
	return c, nil
}

// Expect probes and applies the harness assertions for the expected framing
func (p *Prober) Expect(ctx context.Context, raw []byte, target *url.URL, expected model.ObservedFraming) (*model.WireClassification, error) {
	c, err := p.Probe(ctx, raw, target)
	if err != nil {
		return nil, err
	}
	return c, service.CheckObservation(c, expected)
}

// AssertChunked fails unless the response body is chunk-framed
func (p *Prober) AssertChunked(ctx context.Context, raw []byte, target *url.URL) (*model.WireClassification, error) {
	return p.Expect(ctx, raw, target, model.ObservedChunked)
}

// AssertNotChunked fails unless the response body is not chunk-framed
func (p *Prober) AssertNotChunked(ctx context.Context, raw []byte, target *url.URL) (*model.WireClassification, error) {
	return p.Expect(ctx, raw, target, model.ObservedNotChunked)
}

// read collects bytes until EOF, an idle gap of p.timeout, or p.maxBytes.
// complete is true only when the server closed the stream.
func (p *Prober) read(ctx context.Context, conn net.Conn) (data []byte, complete bool, err error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)

	for buf.Len() < p.maxBytes {
		conn.SetReadDeadline(time.Now().Add(p.timeout))
		n, rerr := conn.Read(chunk)
		buf.Write(chunk[:n])
		if rerr == nil {
			continue
		}

		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}

		var netErr net.Error
		switch {
		case errors.Is(rerr, io.EOF):
			complete = true
		case errors.As(rerr, &netErr) && netErr.Timeout():
			p.logger.Debug("No data for %s after %d bytes, treating it as the end of the response", p.timeout, buf.Len())
		case errors.Is(rerr, syscall.ECONNRESET) && buf.Len() > 0:
			p.logger.Debug("Connection reset after %d bytes", buf.Len())
		default:
			return nil, false, fmt.Errorf("failed to read response: %w", rerr)
		}
		break
	}

	data = buf.Bytes()
	if len(data) > p.maxBytes {
		data = data[:p.maxBytes]
		complete = false
	}
	return data, complete, nil
}

func hostPort(target *url.URL) (string, error) {
	if target == nil || target.Hostname() == "" {
		return "", fmt.Errorf("probe target has no host: %v", target)
	}

	port := target.Port()
	if port == "" {
		switch target.Scheme {
		case "http", "":
			port = "80"
		default:
			return "", fmt.Errorf("unsupported probe scheme %q", target.Scheme)
		}
	}
	return net.JoinHostPort(target.Hostname(), port), nil
}

// Ensure Prober implements port.Prober
var _ port.Prober = (*Prober)(nil)

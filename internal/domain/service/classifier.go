package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/framecheck/framecheck/internal/domain/model"
)

// SampleLength is how much of the first body line is kept for diagnostics
const SampleLength = 15

// Classify parses the raw bytes of one response and infers its body framing
// from the shape of the first body line. Header values are never consulted:
// the point is to catch a server whose headers disagree with its body.
//
// complete reports whether the server closed the stream. On a truncated read
// an unterminated first body line may be a cut-off prefix, so it is not
// classified and the result is unknown.
func Classify(raw []byte, complete bool) (*model.WireClassification, error) {
	head, body, ok := splitHeaderBody(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no header/body boundary in %d bytes", model.ErrMalformedResponse, len(raw))
	}

	lines := splitLines(head)
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "HTTP/") {
		return nil, fmt.Errorf("%w: no status line", model.ErrMalformedResponse)
	}

	c := &model.WireClassification{
		StatusLine:      lines[0],
		HeaderBlock:     lines[1:],
		ObservedFraming: model.ObservedUnknown,
		Sample:          "<null>",
		BytesRead:       len(raw),
	}

	line, ok := firstLine(body, complete)
	if !ok {
		return c, nil
	}

	c.FirstBodyLine = line
	c.Sample = Sample(line)
	if IsChunkSizeLine(line) {
		c.ObservedFraming = model.ObservedChunked
	} else {
		c.ObservedFraming = model.ObservedNotChunked
	}
	return c, nil
}

// CheckObservation applies the harness assertions to a classification: the
// status line must report 200 OK, some body line must have been seen, and the
// observed framing must match expected.
func CheckObservation(c *model.WireClassification, expected model.ObservedFraming) error {
	if !strings.Contains(c.StatusLine, "200 OK") {
		return fmt.Errorf("%w: %q", model.ErrUnexpectedStatus, c.StatusLine)
	}
	if c.ObservedFraming == model.ObservedUnknown {
		return fmt.Errorf("%w: no body line in %d bytes", model.ErrUnknownFraming, c.BytesRead)
	}
	if c.ObservedFraming != expected {
		return fmt.Errorf("%w: expected %s, observed %s, sample %s", model.ErrFramingMismatch, expected, c.ObservedFraming, c.Sample)
	}
	return nil
}

// IsChunkSizeLine reports whether line is a bare chunk-size line: one or more
// hexadecimal digits and nothing else.
func IsChunkSizeLine(line string) bool {
	if line == "" {
		return false
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Sample returns a bracketed prefix of line
func Sample(line string) string {
	if len(line) > SampleLength {
		line = line[:SampleLength]
	}
	return "[" + line + "]"
}

// splitHeaderBody cuts raw at the first blank line. Both CRLF and bare LF
// line endings are accepted; whichever blank line comes first wins.
func splitHeaderBody(raw []byte) ([]byte, []byte, bool) {
	crlf := bytes.Index(raw, []byte("\r\n\r\n"))
	lf := bytes.Index(raw, []byte("\n\n"))

	switch {
	case crlf < 0 && lf < 0:
		return nil, nil, false
	case lf < 0 || (crlf >= 0 && crlf < lf):
		return raw[:crlf], raw[crlf+4:], true
	default:
		return raw[:lf], raw[lf+2:], true
	}
}

func splitLines(head []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// firstLine returns the first line of body. An unterminated line counts only
// when the stream is complete; an empty body has no line.
func firstLine(body []byte, complete bool) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[:i]
	} else if !complete {
		return "", false
	}
	return strings.TrimSpace(string(body)), true
}

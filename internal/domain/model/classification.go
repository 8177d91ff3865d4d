package model

import "strings"

// ObservedFraming is the framing a wire classifier inferred from body bytes
type ObservedFraming string

const (
	// ObservedChunked means the first body line was a chunk-size line
	ObservedChunked ObservedFraming = "chunked"
	// ObservedNotChunked means the first body line was ordinary content
	ObservedNotChunked ObservedFraming = "not-chunked"
	// ObservedUnknown means no body line arrived before the stream ended
	ObservedUnknown ObservedFraming = "unknown"
)

// WireClassification is the parsed shape of one raw response
type WireClassification struct {
	// StatusLine is the first line of the response
	StatusLine string `json:"status_line"`
	// HeaderBlock holds the header lines in wire order, status line excluded
	HeaderBlock []string `json:"header_block"`
	// ObservedFraming is derived from the body shape only
	ObservedFraming ObservedFraming `json:"observed_framing"`
	// FirstBodyLine is the first line after the header block
	FirstBodyLine string `json:"first_body_line,omitempty"`
	// Sample is a short bracketed prefix of FirstBodyLine for diagnostics
	Sample string `json:"sample"`
	// BytesRead counts every byte received on the socket
	BytesRead int `json:"bytes_read"`
}

// Header returns the first value of the named header line, matched
// case-insensitively. It exists for diagnostics only; classification never
// consults headers.
func (c *WireClassification) Header(name string) string {
	for _, line := range c.HeaderBlock {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

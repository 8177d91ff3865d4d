package model

import (
	"fmt"
	"strings"
)

// ProtocolVersion is the HTTP version named on a request line
type ProtocolVersion string

const (
	// HTTP10 is HTTP/1.0
	HTTP10 ProtocolVersion = "HTTP/1.0"
	// HTTP11 is HTTP/1.1
	HTTP11 ProtocolVersion = "HTTP/1.1"
)

// ParseProtocolVersion maps a request protocol to a ProtocolVersion.
// Anything newer than 1.0 is treated as HTTP/1.1.
func ParseProtocolVersion(major, minor int) ProtocolVersion {
	if major < 1 || (major == 1 && minor == 0) {
		return HTTP10
	}
	return HTTP11
}

// ConnectionHeader is the connection-management token sent by the client
type ConnectionHeader string

const (
	// ConnectionNone means no Connection header was sent
	ConnectionNone ConnectionHeader = ""
	// ConnectionKeepAlive is "Connection: keep-alive"
	ConnectionKeepAlive ConnectionHeader = "keep-alive"
	// ConnectionClose is "Connection: close"
	ConnectionClose ConnectionHeader = "close"
)

// ParseConnectionHeader extracts the connection-management token from the
// values of a Connection header. "close" wins over "keep-alive".
func ParseConnectionHeader(values []string) ConnectionHeader {
	result := ConnectionNone
	for _, value := range values {
		for _, token := range strings.Split(value, ",") {
			switch strings.ToLower(strings.TrimSpace(token)) {
			case "close":
				return ConnectionClose
			case "keep-alive":
				result = ConnectionKeepAlive
			}
		}
	}
	return result
}

// FramingMode is how a response body is delimited on the wire
type FramingMode string

const (
	// FramingContentLength declares the exact body length up front
	FramingContentLength FramingMode = "content-length"
	// FramingChunked sends length-prefixed chunks ending with a zero-length chunk
	FramingChunked FramingMode = "chunked"
	// FramingIdentity sends the raw body, terminated only by connection close
	FramingIdentity FramingMode = "identity"
)

// HandlerVariant selects how the file handler frames its body
type HandlerVariant string

const (
	// VariantWithLength declares the resource length
	VariantWithLength HandlerVariant = "with-length"
	// VariantNoLength withholds the resource length
	VariantNoLength HandlerVariant = "no-length"
	// VariantIdentity forces the identity transfer coding
	VariantIdentity HandlerVariant = "identity"
)

// Prefix returns the path prefix the variant is mounted on
func (v HandlerVariant) Prefix() string {
	switch v {
	case VariantWithLength:
		return "/withlen/"
	case VariantNoLength:
		return "/nolen/"
	case VariantIdentity:
		return "/identity/"
	default:
		return ""
	}
}

// Variants lists every handler variant
func Variants() []HandlerVariant {
	return []HandlerVariant{VariantWithLength, VariantNoLength, VariantIdentity}
}

// VariantForPath returns the variant whose prefix matches the request path
func VariantForPath(path string) (HandlerVariant, bool) {
	for _, v := range Variants() {
		if strings.HasPrefix(path, v.Prefix()) {
			return v, true
		}
	}
	return "", false
}

// FramingDecision is the framing selected for one response
type FramingDecision struct {
	// Mode is the selected body framing
	Mode FramingMode `json:"mode"`
	// KeepAlive reports whether the connection may carry another exchange
	KeepAlive bool `json:"keep_alive"`
	// ContentLength is the declared length, only meaningful for FramingContentLength
	ContentLength int64 `json:"content_length,omitempty"`
}

// Validate reports decisions that cannot be delimited on the wire.
// An identity body only ends when the connection closes, so it cannot be
// combined with keep-alive.
func (d FramingDecision) Validate() error {
	if d.Mode == FramingIdentity && d.KeepAlive {
		return ErrIdentityOverKeepAlive
	}
	if d.Mode == FramingContentLength && d.ContentLength < 0 {
		return fmt.Errorf("content-length framing with negative length %d", d.ContentLength)
	}
	return nil
}

// ExpectedObservation is what a wire classifier should see for this decision
func (d FramingDecision) ExpectedObservation() ObservedFraming {
	if d.Mode == FramingChunked {
		return ObservedChunked
	}
	return ObservedNotChunked
}

func (d FramingDecision) String() string {
	conn := "close"
	if d.KeepAlive {
		conn = "keep-alive"
	}
	if d.Mode == FramingContentLength && d.ContentLength > 0 {
		return fmt.Sprintf("%s(%d)/%s", d.Mode, d.ContentLength, conn)
	}
	return fmt.Sprintf("%s/%s", d.Mode, conn)
}

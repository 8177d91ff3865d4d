package model

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound is returned when a path does not name a regular file
	ErrResourceNotFound = errors.New("resource not found")
	// ErrIdentityOverKeepAlive flags an identity body on a connection that stays open
	ErrIdentityOverKeepAlive = errors.New("identity transfer coding requires the connection to close")
	// ErrMalformedResponse is returned when no status line or header/body boundary is found
	ErrMalformedResponse = errors.New("malformed response")
	// ErrUnexpectedStatus is returned when a probed response is not 200 OK
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrUnknownFraming is returned when no body line arrived to classify
	ErrUnknownFraming = errors.New("response framing could not be observed")
	// ErrFramingMismatch is returned when the observed framing differs from the expected one
	ErrFramingMismatch = errors.New("response framing mismatch")
)

// StreamingIOFailure is an I/O error raised after the response header was
// committed. The response cannot be repaired, only abandoned.
type StreamingIOFailure struct {
	Path    string
	Written int64
	Err     error
}

func (e *StreamingIOFailure) Error() string {
	return fmt.Sprintf("streaming %s failed after %d bytes: %v", e.Path, e.Written, e.Err)
}

func (e *StreamingIOFailure) Unwrap() error {
	return e.Err
}

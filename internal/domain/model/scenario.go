package model

import (
	"bytes"
	"fmt"
)

// RequestScenario is one literal request, optionally followed by a second
// request written back-to-back on the same socket
type RequestScenario struct {
	// Name identifies the scenario in reports
	Name string `json:"name"`
	// Protocol is the version written on the request line
	Protocol ProtocolVersion `json:"protocol"`
	// Connection is the Connection header value, if any
	Connection ConnectionHeader `json:"connection,omitempty"`
	// Path is the request target
	Path string `json:"path"`
	// Followup is pipelined after this request, usually to make the server
	// close the connection once the first response is complete
	Followup *RequestScenario `json:"followup,omitempty"`
	// KnownInvalid marks a combination that cannot be framed correctly
	KnownInvalid bool `json:"known_invalid,omitempty"`
	// Reason documents why a scenario is known to be invalid
	Reason string `json:"reason,omitempty"`
}

// Bytes renders the scenario as the exact bytes to put on the wire
func (s *RequestScenario) Bytes(host string) []byte {
	var buf bytes.Buffer
	for r := s; r != nil; r = r.Followup {
		fmt.Fprintf(&buf, "GET %s %s\r\n", r.Path, r.Protocol)
		fmt.Fprintf(&buf, "Host: %s\r\n", host)
		if r.Connection != ConnectionNone {
			fmt.Fprintf(&buf, "Connection: %s\r\n", r.Connection)
		}
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// Pipelined reports whether more than one request is written
func (s *RequestScenario) Pipelined() bool {
	return s.Followup != nil
}

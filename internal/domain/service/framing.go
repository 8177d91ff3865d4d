package service

import "github.com/framecheck/framecheck/internal/domain/model"

// NegotiateKeepAlive applies the default connection persistence of each
// protocol version: HTTP/1.1 stays open unless the client asked to close,
// HTTP/1.0 closes unless the client asked for keep-alive.
func NegotiateKeepAlive(protocol model.ProtocolVersion, connection model.ConnectionHeader) bool {
	if protocol == model.HTTP10 {
		return connection == model.ConnectionKeepAlive
	}
	return connection != model.ConnectionClose
}

// Decide selects the response framing from the request protocol, its
// Connection header and the body length (model.UnknownLength if not known).
//
// A known length always yields content-length framing. Without one, HTTP/1.1
// streams chunks and HTTP/1.0, which has no chunked coding, sends an identity
// body and closes the connection to mark its end.
func Decide(protocol model.ProtocolVersion, connection model.ConnectionHeader, knownLength int64) model.FramingDecision {
	keepAlive := NegotiateKeepAlive(protocol, connection)

	if knownLength >= 0 {
		return model.FramingDecision{
			Mode:          model.FramingContentLength,
			KeepAlive:     keepAlive,
			ContentLength: knownLength,
		}
	}

	if protocol == model.HTTP11 {
		return model.FramingDecision{Mode: model.FramingChunked, KeepAlive: keepAlive}
	}

	return model.FramingDecision{Mode: model.FramingIdentity, KeepAlive: false}
}

// DecideFor applies a handler variant on top of Decide.
//
// The identity variant keeps whatever persistence the client negotiated, so an
// HTTP/1.1 request without "Connection: close" yields a decision that fails
// Validate. It is reported, not repaired.
func DecideFor(variant model.HandlerVariant, protocol model.ProtocolVersion, connection model.ConnectionHeader, ref *model.ResourceRef) model.FramingDecision {
	switch variant {
	case model.VariantNoLength:
		return Decide(protocol, connection, model.UnknownLength)
	case model.VariantIdentity:
		return model.FramingDecision{
			Mode:      model.FramingIdentity,
			KeepAlive: NegotiateKeepAlive(protocol, connection),
		}
	default:
		return Decide(protocol, connection, ref.KnownLength)
	}
}

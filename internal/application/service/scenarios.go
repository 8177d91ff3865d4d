package service

import (
	"strings"

	"github.com/framecheck/framecheck/internal/domain/model"
	domain "github.com/framecheck/framecheck/internal/domain/service"
)

// DefaultResource is the file every catalog scenario requests
const DefaultResource = "twain.txt"

func closer(protocol model.ProtocolVersion) *model.RequestScenario {
	s := &model.RequestScenario{Protocol: protocol, Path: "/"}
	if protocol == model.HTTP11 {
		s.Connection = model.ConnectionClose
	}
	return s
}

// DefaultScenarios returns the scenario catalog. Scenarios whose first request
// may leave the connection open carry a pipelined followup that makes the
// server close it, so the whole first response can be read.
func DefaultScenarios() []*model.RequestScenario {
	return []*model.RequestScenario{
		{
			Name:       "http10-keepalive-withlen",
			Protocol:   model.HTTP10,
			Connection: model.ConnectionKeepAlive,
			Path:       "/withlen/" + DefaultResource,
			Followup:   closer(model.HTTP10),
		},
		{
			Name:     "http10-withlen",
			Protocol: model.HTTP10,
			Path:     "/withlen/" + DefaultResource,
		},
		{
			Name:       "http11-close-withlen",
			Protocol:   model.HTTP11,
			Connection: model.ConnectionClose,
			Path:       "/withlen/" + DefaultResource,
		},
		{
			Name:       "http11-close-identity",
			Protocol:   model.HTTP11,
			Connection: model.ConnectionClose,
			Path:       "/identity/" + DefaultResource,
		},
		{
			Name:       "http10-keepalive-nolen",
			Protocol:   model.HTTP10,
			Connection: model.ConnectionKeepAlive,
			Path:       "/nolen/" + DefaultResource,
			Followup:   closer(model.HTTP10),
		},
		{
			Name:     "http10-nolen",
			Protocol: model.HTTP10,
			Path:     "/nolen/" + DefaultResource,
		},
		{
			Name:       "http11-close-nolen",
			Protocol:   model.HTTP11,
			Connection: model.ConnectionClose,
			Path:       "/nolen/" + DefaultResource,
		},
		{
			Name:     "http11-nolen",
			Protocol: model.HTTP11,
			Path:     "/nolen/" + DefaultResource,
			Followup: closer(model.HTTP11),
		},
		{
			Name:         "http11-identity",
			Protocol:     model.HTTP11,
			Path:         "/identity/" + DefaultResource,
			Followup:     closer(model.HTTP11),
			KnownInvalid: true,
			Reason: "identity body without Connection: close on HTTP/1.1; " +
				"the client has no way to find the end of the body on a kept-alive connection",
		},
	}
}

// FindScenario looks a catalog scenario up by name
func FindScenario(scenarios []*model.RequestScenario, name string) (*model.RequestScenario, bool) {
	for _, s := range scenarios {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return nil, false
}

// Predict returns the framing the server is expected to choose for s. The
// resource length is not known on the probing side, so content-length
// predictions carry no length.
func Predict(s *model.RequestScenario) model.FramingDecision {
	variant, ok := model.VariantForPath(s.Path)
	if !ok {
		variant = model.VariantWithLength
	}
	ref := &model.ResourceRef{Path: s.Path, KnownLength: 0}
	return domain.DecideFor(variant, s.Protocol, s.Connection, ref)
}

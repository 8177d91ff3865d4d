package port

import (
	"context"
	"net/url"

	"github.com/framecheck/framecheck/internal/domain/model"
)

// Prober sends literal request bytes over a raw socket and classifies the reply
type Prober interface {
	// Probe writes raw verbatim to target and classifies what comes back
	Probe(ctx context.Context, raw []byte, target *url.URL) (*model.WireClassification, error)
}

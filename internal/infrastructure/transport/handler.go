package transport

import (
	"errors"
	"net/http"
	"strings"

	"github.com/framecheck/framecheck/internal/application/service"
	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
)

// NewFileHandler mounts one file handler per variant on its path prefix.
// Every other path answers 404.
func NewFileHandler(files *service.FileService, logger port.Logger) http.Handler {
	mux := http.NewServeMux()
	for _, variant := range model.Variants() {
		mux.Handle(variant.Prefix(), &variantHandler{files: files, variant: variant, logger: logger})
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("%s %s %s: no handler", r.Method, r.URL.Path, r.Proto)
		w.WriteHeader(http.StatusNotFound)
	})
	return mux
}

type variantHandler struct {
	files   *service.FileService
	variant model.HandlerVariant
	logger  port.Logger
}

func (h *variantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, strings.TrimSuffix(h.variant.Prefix(), "/"))
	_, err := h.files.Serve(w, r, h.variant, name)

	var failure *model.StreamingIOFailure
	if errors.As(err, &failure) {
		h.logger.Error("%s %s: %v; dropping connection", r.Method, r.URL.Path, failure)
		// The header is already on the wire; abort so the client sees a
		// truncated response rather than a well-formed short one.
		panic(http.ErrAbortHandler)
	}
}

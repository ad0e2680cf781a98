package api

import (
	"net/http"

	"go.uber.org/zap"
)

// BackendResponse names the persistence backend in use
type BackendResponse struct {
	Backend     string   `json:"backend"`
	Collections []string `json:"collections"`
}

// HandleBackend handles GET requests reporting the selected backend
func (h *Handler) HandleBackend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BackendResponse{
		Backend:     h.selector.Kind().String(),
		Collections: h.registry.Names(),
	})
}

// HandleRedetect handles POST requests that probe the remote backend again and
// reload every open collection from whichever backend is selected
func (h *Handler) HandleRedetect(w http.ResponseWriter, r *http.Request) {
	previous := h.selector.Kind()
	h.selector.ResetDetection()
	kind := h.selector.DetectBackend(r.Context())

	if err := h.registry.ReloadAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	zap.S().Infof("Backend re-detected: %s -> %s", previous, kind)
	writeJSON(w, http.StatusOK, BackendResponse{
		Backend:     kind.String(),
		Collections: h.registry.Names(),
	})
}

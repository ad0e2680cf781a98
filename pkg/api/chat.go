package api

import (
	"net/http"
	"strings"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/goccy/go-json"
)

// ChatRequest is one message to the travel assistant
type ChatRequest struct {
	Message string `json:"message"`
}

// HandleChat handles POST requests to the travel assistant
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, domain.Invalid("message", "must not be empty"))
		return
	}
	writeJSON(w, http.StatusOK, h.assistant.Answer(req.Message))
}

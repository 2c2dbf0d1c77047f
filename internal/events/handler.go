package events

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

const maxEventBody = 64 << 10

// Handler serves /api/events.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Create handles POST /api/events. Browsers send beacons as text/plain, so
// the body is decoded as JSON regardless of content type.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil || strings.TrimSpace(string(raw)) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Request body is required"})
		return
	}
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	recorded, err := h.service.Record(r.Context(), e)
	switch {
	case IsInvalid(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		h.logger.Warn("event recording failed", "type", e.Type, "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Event recording failed (non-critical)"})
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Event recorded", "event": recorded})
	}
}

// Summary handles GET /api/events.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("event summary failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch events"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// Handler handles HTTP requests for leads and chat sessions.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /api/leads.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	lead, err := h.service.Create(r.Context(), req)
	switch {
	case errors.Is(err, ErrMissingMicrosite), errors.Is(err, ErrInvalidBHK):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
	case err != nil:
		h.logger.Error("failed to create lead", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to create lead"})
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Lead created", "lead": lead})
	}
}

// List handles GET /api/leads.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Microsite: q.Get("microsite"),
		Search:    q.Get("search"),
		StartDate: parseDate(q.Get("startDate")),
		EndDate:   parseDate(q.Get("endDate")),
		Limit:     parseInt(q.Get("limit"), defaultPageSize),
		Skip:      parseInt(q.Get("skip"), 0),
	}
	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to list leads"})
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListSessions handles GET /api/chat-sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := SessionFilter{
		Microsite: q.Get("microsite"),
		LeadID:    q.Get("leadId"),
		Limit:     parseInt(q.Get("limit"), defaultPageSize),
		Skip:      parseInt(q.Get("skip"), 0),
	}
	page, err := h.service.ListSessions(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list chat sessions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to list chat sessions"})
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// parseDate accepts RFC 3339 timestamps or plain dates; anything else is
// ignored.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package assistant

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// Handler serves POST /api/chat.
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

// chatRequest accepts both the structured history and the widget's raw
// message list.
type chatRequest struct {
	Request
	Conversation []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"conversation"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req := body.Request
	if strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.ProjectID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Message and projectId are required"})
		return
	}
	if len(req.History) == 0 {
		for _, m := range body.Conversation {
			role := RoleUser
			if m.Type != "user" {
				role = RoleAssistant
			}
			req.History = append(req.History, Turn{Role: role, Text: m.Text})
		}
	}

	res, err := h.service.Respond(r.Context(), req)
	if err != nil {
		h.logger.Error("chat reply failed", "project_id", req.ProjectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, WireResponse{
			Response: genericContactReply,
			Fallback: true,
		})
		return
	}
	writeJSON(w, http.StatusOK, res.Wire())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

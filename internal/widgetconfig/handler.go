package widgetconfig

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// Handler serves /api/widget-config/{projectId}.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	cfg, err := h.store.Get(r.Context(), projectID)
	if err != nil {
		h.logger.Error("failed to fetch widget config", "project_id", projectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to fetch widget config"})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	if err := update.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	cfg, err := h.store.Upsert(r.Context(), projectID, update)
	if err != nil {
		if errors.Is(err, ErrMissingProject) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		h.logger.Error("failed to update widget config", "project_id", projectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to update widget config"})
		return
	}
	h.logger.Info("widget config updated", "project_id", projectID)
	writeJSON(w, http.StatusOK, cfg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/websocket"

	"github.com/fahimkhan-git/seher-ai-chat/internal/http/middleware"
	"github.com/fahimkhan-git/seher-ai-chat/internal/phone"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

const (
	maxActionBytes  = 16 << 10
	actionQueueSize = 32
)

// Handler serves the widget websocket and its HTTP fallbacks.
type Handler struct {
	manager     *Manager
	logger      *logging.Logger
	allowOrigin func(string) bool
}

// NewHandler creates a widget transport handler. A nil allowOrigin accepts
// every origin.
func NewHandler(manager *Manager, allowOrigin func(string) bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if allowOrigin == nil {
		allowOrigin = func(string) bool { return true }
	}
	return &Handler{manager: manager, logger: logger, allowOrigin: allowOrigin}
}

// Routes mounts the widget endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/ws", h.HandleWebSocket)
	r.Get("/countries", h.HandleCountries)
	r.Post("/sessions", h.HandleMount)
	r.Get("/sessions/{sessionId}", h.HandleState)
	r.Delete("/sessions/{sessionId}", h.HandleUnmount)
	r.Post("/sessions/{sessionId}/actions", h.HandleAction)
	r.Get("/sessions/{sessionId}/messages", h.HandleHistory)
}

// HandleWebSocket upgrades GET /widget/ws. Query parameters describe the
// mounting page: project, microsite, session, pageUrl, scriptProjectId and
// referrer.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !h.allowOrigin(r.Header.Get("Origin")) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}
	srv := websocket.Server{
		// Origin was checked above; the default handshake rejects empty origins.
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			h.serveWS(conn, r)
		},
	}
	srv.ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	defer conn.Close()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	q := r.URL.Query()
	req := MountRequest{
		SessionID:       q.Get("session"),
		ProjectID:       q.Get("project"),
		Microsite:       q.Get("microsite"),
		PageURL:         q.Get("pageUrl"),
		ScriptProjectID: q.Get("scriptProjectId"),
		Referrer:        q.Get("referrer"),
		UserAgent:       r.UserAgent(),
		ClientIP:        middleware.ClientIP(r),
	}
	session, created, err := h.manager.Mount(ctx, req)
	if err != nil {
		_ = websocket.JSON.Send(conn, Frame{Type: FrameError, Error: "missing project parameter"})
		return
	}
	if created {
		defer h.manager.Unmount(session.ID())
	}

	var writeMu sync.Mutex
	send := func(f Frame) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := websocket.JSON.Send(conn, f); err != nil {
			h.logger.Debug("widget frame send failed", "session_id", session.ID(), "error", err)
		}
	}

	// Actions run one at a time in arrival order; pings are answered by the
	// receive loop so keepalive works while an action is pending.
	queue := make(chan Action, actionQueueSize)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for a := range queue {
			if a.Type == ActionText {
				typing := true
				send(Frame{Type: FrameTyping, SessionID: session.ID(), Typing: &typing})
			}
			res, err := h.manager.Dispatch(ctx, session, a)
			frame := res.frame()
			if err != nil && frame.Error == "" {
				frame.Error = err.Error()
			}
			send(frame)
		}
	}()
	defer func() {
		close(queue)
		<-done
	}()

	send(sessionFrame(session))

	for {
		var action Action
		if err := websocket.JSON.Receive(conn, &action); err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Debug("widget socket closed", "session_id", session.ID(), "error", err)
			}
			return
		}
		if action.Type == ActionPing {
			send(Frame{Type: FramePong})
			continue
		}
		select {
		case queue <- action:
		default:
			send(Frame{Type: FrameError, SessionID: session.ID(), Error: "too many pending actions"})
		}
	}
}

// HandleMount creates or resumes a session over plain HTTP.
func (h *Handler) HandleMount(w http.ResponseWriter, r *http.Request) {
	var req MountRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxActionBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.UserAgent = r.UserAgent()
	req.ClientIP = middleware.ClientIP(r)

	session, created, err := h.manager.Mount(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "projectId is required"})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, sessionFrame(session))
}

// HandleAction applies one visitor action.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	session, err := h.manager.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	var action Action
	if err := json.NewDecoder(io.LimitReader(r.Body, maxActionBytes)).Decode(&action); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if action.Type == ActionPing {
		writeJSON(w, http.StatusOK, Frame{Type: FramePong})
		return
	}

	res, err := h.manager.Dispatch(r.Context(), session, action)
	if err != nil {
		if res.Error == "" {
			res.Error = err.Error()
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("widget action failed", "session_id", session.ID(), "type", action.Type, "error", err)
		}
		writeJSON(w, status, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	session, err := h.manager.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, sessionFrame(session))
}

func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Unmount(chi.URLParam(r, "sessionId")) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleHistory returns the transcript, from the live session when mounted.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	msgs, err := h.manager.History(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("failed to load widget history", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessionId": sessionID, "messages": msgs})
}

func (h *Handler) HandleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"countries": phone.Countries(),
		"default":   phone.Default(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

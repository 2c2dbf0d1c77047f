package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fahimkhan-git/seher-ai-chat/internal/events"
	"github.com/fahimkhan-git/seher-ai-chat/internal/leads"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widgetconfig"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

const testAdminSecret = "admin-secret"

func newTestRouter(t *testing.T, adminSecret string) http.Handler {
	t.Helper()
	logger := logging.Discard()

	eventService := events.NewService(events.NewMemoryStore(), logger)
	leadService := leads.NewService(leads.NewInMemoryRepository(), logger, leads.WithEventRecorder(eventService))
	t.Cleanup(func() {
		leadService.Wait()
		eventService.Wait()
	})
	configs, err := widgetconfig.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	return New(&Config{
		Logger:              logger,
		LeadsHandler:        leads.NewHandler(leadService, logger),
		EventsHandler:       events.NewHandler(eventService, logger),
		WidgetConfigHandler: widgetconfig.NewHandler(configs, logger),
		APIKey:              "widget-key",
		AdminAuthSecret:     adminSecret,
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func adminHeader(t *testing.T) http.Header {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "dashboard",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := token.SignedString([]byte(testAdminSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return http.Header{"Authorization": []string{"Bearer " + signed}}
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter(t, "")

	rr := do(t, router, http.MethodGet, "/health", nil, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("health: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, http.MethodGet, "/", nil, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/api/widget-config/:projectId") {
		t.Fatalf("root: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, http.MethodGet, "/.well-known/appspecific/com.chrome.devtools.json", nil, nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "{}" {
		t.Fatalf("devtools: %d %q", rr.Code, rr.Body.String())
	}
}

func TestRouterLeadRoundTrip(t *testing.T) {
	router := newTestRouter(t, "")

	rr := do(t, router, http.MethodPost, "/api/leads", map[string]any{
		"phone":     "+919876543210",
		"bhk":       2,
		"microsite": "nivasa",
	}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create lead: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, http.MethodGet, "/api/leads?microsite=nivasa", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list leads: %d", rr.Code)
	}
	var page struct {
		Items []leads.Lead `json:"items"`
		Total int          `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || page.Items[0].BHKType != "2 BHK" {
		t.Fatalf("unexpected page %+v", page)
	}

	rr = do(t, router, http.MethodPost, "/api/leads", map[string]any{"bhk": 2}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing microsite: expected 400, got %d", rr.Code)
	}
}

func TestRouterEvents(t *testing.T) {
	router := newTestRouter(t, "")

	rr := do(t, router, http.MethodPost, "/api/events", map[string]any{"type": events.TypeChatShown, "projectId": "5796"}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("record event: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, router, http.MethodGet, "/api/events", nil, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"chatsShown":1`) {
		t.Fatalf("summary: %d %s", rr.Code, rr.Body.String())
	}
}

func TestRouterWidgetConfigWriteNeedsKey(t *testing.T) {
	router := newTestRouter(t, "")
	update := map[string]any{"agentName": "Asha"}

	rr := do(t, router, http.MethodPost, "/api/widget-config/5796", update, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no key: expected 401, got %d", rr.Code)
	}
	rr = do(t, router, http.MethodPost, "/api/widget-config/5796", update, http.Header{"X-Api-Key": []string{"nope"}})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("wrong key: expected 403, got %d", rr.Code)
	}
	rr = do(t, router, http.MethodPost, "/api/widget-config/5796", update, http.Header{"X-Api-Key": []string{"widget-key"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("valid key: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, http.MethodGet, "/api/widget-config/5796", nil, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"agentName":"Asha"`) {
		t.Fatalf("read back: %d %s", rr.Code, rr.Body.String())
	}
}

func TestRouterAdminReadsRequireToken(t *testing.T) {
	router := newTestRouter(t, testAdminSecret)

	for _, path := range []string{"/api/leads", "/api/chat-sessions", "/api/events"} {
		rr := do(t, router, http.MethodGet, path, nil, nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: expected 401, got %d", path, rr.Code)
		}
		rr = do(t, router, http.MethodGet, path, nil, adminHeader(t))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s with token: expected 200, got %d", path, rr.Code)
		}
	}

	rr := do(t, router, http.MethodPost, "/api/events", map[string]any{"type": events.TypeChatShown, "projectId": "5796"}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("event writes stay public: got %d", rr.Code)
	}
}

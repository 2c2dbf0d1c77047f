package dashboard

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

func dial(t *testing.T, srv *httptest.Server, microsite string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?microsite=" + microsite
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, room string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Clients(room) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastReachesOnlyRoom(t *testing.T) {
	hub := NewHub(nil, logging.Discard())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	nivasa := dial(t, srv, "nivasa")
	other := dial(t, srv, "other")
	waitForClients(t, hub, "nivasa", 1)
	waitForClients(t, hub, "other", 1)

	hub.Broadcast("nivasa", "lead:new", map[string]string{"phone": "9876543210"})

	require.NoError(t, nivasa.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, nivasa.ReadJSON(&msg))
	assert.Equal(t, "lead:new", msg.Event)
	assert.Equal(t, "9876543210", msg.Data["phone"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestClientLeavesOnClose(t *testing.T) {
	hub := NewHub(nil, logging.Discard())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv, "nivasa")
	waitForClients(t, hub, "nivasa", 1)
	conn.Close()
	waitForClients(t, hub, "nivasa", 0)
}

func TestRequiresMicrosite(t *testing.T) {
	hub := NewHub(nil, logging.Discard())
	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRejectsDisallowedOrigin(t *testing.T) {
	hub := NewHub(func(origin string) bool { return origin == "https://admin.example" }, logging.Discard())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?microsite=nivasa"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestBroadcastWithoutClientsIsNoop(t *testing.T) {
	hub := NewHub(nil, logging.Discard())
	hub.Broadcast("empty", "lead:new", nil)
	assert.Equal(t, 0, hub.Clients("empty"))
}

package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_Reply(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(WireResponse{Response: "Fill the form", Action: "request_lead_details", AIUsed: true})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL+"/", time.Second)
	reply, err := gw.Reply(context.Background(), Request{Message: "hi", ProjectID: "5796", SelectedCTA: "Get A Call Back 📞"})
	require.NoError(t, err)
	assert.Equal(t, Reply{Text: "Fill the form", Directive: DirectiveRequestLeadDetails}, reply)
	assert.Equal(t, "Get A Call Back 📞", got.SelectedCTA)
}

func TestHTTPGateway_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPGateway(srv.URL, time.Second).Reply(context.Background(), Request{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPGateway_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewHTTPGateway(srv.URL, 20*time.Millisecond).Reply(context.Background(), Request{Message: "hi"})
	assert.Error(t, err)
}

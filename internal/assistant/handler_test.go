package assistant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

func TestHandlerChat(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "Hello there"}}
	h := NewHandler(NewService(llm, "m", logging.Discard()), logging.Discard())

	body := `{"message":"hi","projectId":"5796","conversation":[{"type":"system","text":"Welcome"},{"type":"user","text":"hey"}]}`
	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp WireResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hello there", resp.Response)
	assert.True(t, resp.AIUsed)
	assert.Empty(t, resp.Action)

	require.Len(t, llm.got.Messages, 3)
	assert.Equal(t, ChatRoleAssistant, llm.got.Messages[0].Role)
}

func TestHandlerChat_Validation(t *testing.T) {
	h := NewHandler(NewService(nil, "", logging.Discard()), logging.Discard())

	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

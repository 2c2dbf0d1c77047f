package widget

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/internal/assistant"
	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/submission"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

type fakeCRM struct {
	mu       sync.Mutex
	payloads []crm.Payload
	err      error
	block    chan struct{}
}

func (f *fakeCRM) CreateLead(ctx context.Context, p crm.Payload) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	return f.err
}

func (f *fakeCRM) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeCRM) last(t *testing.T) crm.Payload {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.payloads)
	return f.payloads[len(f.payloads)-1]
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Track(_ context.Context, e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func replyWith(text string) assistant.Gateway {
	return assistant.GatewayFunc(func(context.Context, assistant.Request) (assistant.Reply, error) {
		return assistant.Reply{Text: text}, nil
	})
}

func noAssistant(t *testing.T) assistant.Gateway {
	return assistant.GatewayFunc(func(_ context.Context, req assistant.Request) (assistant.Reply, error) {
		t.Errorf("unexpected assistant call with %q", req.Message)
		return assistant.Reply{}, nil
	})
}

func newTestSession(gw assistant.Gateway, creator *fakeCRM) (*Session, *recordingSink) {
	sink := &recordingSink{}
	pipeline := submission.NewPipeline(creator, logging.Discard())
	s := NewSession(Config{
		SessionID: "test-session",
		ProjectID: "5796",
		Microsite: "nivasa-enchante",
		Page:      crm.PageContext{URL: "https://nivasa.example/", UserAgent: "Mozilla/5.0 Chrome/120"},
	}, gw, pipeline, WithEventSink(sink), WithLogger(logging.Discard()))
	return s, sink
}

// toPhoneMode walks the scripted funnel up to the phone prompt.
func toPhoneMode(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	_, err := s.SelectCTA(ctx, "Get A Call Back 📞")
	require.NoError(t, err)
	_, err = s.SelectBHK(ctx, "2 Bhk")
	require.NoError(t, err)
	out, err := s.SubmitText(ctx, "Raj")
	require.NoError(t, err)
	require.Nil(t, out.ValidationError)
	require.Equal(t, ModePhone, out.Mode)
}

func texts(msgs []conversation.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

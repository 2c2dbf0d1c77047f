package webchat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/internal/assistant"
	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/submission"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widget"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widgetconfig"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

type fakeCRM struct {
	mu       sync.Mutex
	payloads []crm.Payload
	err      error
}

func (f *fakeCRM) CreateLead(_ context.Context, p crm.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	return f.err
}

func (f *fakeCRM) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type memoryTranscript struct {
	mu   sync.Mutex
	msgs map[string][]conversation.Message
}

func (m *memoryTranscript) Append(_ context.Context, id string, msg conversation.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.msgs == nil {
		m.msgs = make(map[string][]conversation.Message)
	}
	m.msgs[id] = append(m.msgs[id], msg)
	return nil
}

func (m *memoryTranscript) List(_ context.Context, id string, limit int64) ([]conversation.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.msgs[id]
	if limit > 0 && int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return append([]conversation.Message(nil), out...), nil
}

type staticLocator struct {
	loc crm.Location
	err error
}

func (s staticLocator) Locate(context.Context, string) (crm.Location, error) {
	return s.loc, s.err
}

func replyWith(text string) assistant.Gateway {
	return assistant.GatewayFunc(func(context.Context, assistant.Request) (assistant.Reply, error) {
		return assistant.Reply{Text: text}, nil
	})
}

func newTestManager(t *testing.T, creator *fakeCRM, opts ...ManagerOption) (*Manager, *memoryTranscript) {
	t.Helper()
	configs, err := widgetconfig.NewFileStore(t.TempDir())
	require.NoError(t, err)
	transcript := &memoryTranscript{}
	pipeline := submission.NewPipeline(creator, logging.Discard())
	base := []ManagerOption{
		WithConfigSource(configs),
		WithTranscriptStore(transcript),
		WithLogger(logging.Discard()),
	}
	m := NewManager(widget.NewRegistry(nil), replyWith("Happy to help."), pipeline, append(base, opts...)...)
	return m, transcript
}

// toPhoneMode walks the scripted funnel up to the phone prompt.
func toPhoneMode(t *testing.T, m *Manager, s *widget.Session) {
	t.Helper()
	ctx := context.Background()
	theme := s.Theme()
	for _, a := range []Action{
		{Type: ActionCTA, Value: theme.CTAOptions[0]},
		{Type: ActionBHK, Value: theme.BHKOptions[0]},
		{Type: ActionText, Value: "Raj"},
	} {
		_, err := m.Dispatch(ctx, s, a)
		require.NoError(t, err)
	}
	require.Equal(t, widget.ModePhone, s.State().Mode)
}

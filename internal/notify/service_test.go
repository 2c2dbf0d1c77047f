package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/leads"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	fail map[string]bool
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func testLead() *leads.Lead {
	return &leads.Lead{
		ID:        "lead-1",
		Phone:     "+919876543210",
		BHKType:   "2 BHK",
		Microsite: "nivasa-enchante",
		Metadata: map[string]any{
			"name":      "Raj <script>",
			"projectId": "5796",
			"visitor": map[string]any{
				"utm": map[string]any{"source": "google", "campaign": "launch"},
			},
		},
		Conversation: []conversation.Message{
			{Kind: conversation.KindSystem, Text: "Hi there"},
			{Kind: conversation.KindUser, Text: "Raj"},
		},
		CreatedAt: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestNotifyNewLeadSendsToEachRecipient(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, []string{"a@seher.example", " ", "b@seher.example"}, logging.Discard())

	if err := svc.NotifyNewLead(context.Background(), testLead()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "New lead on nivasa-enchante: Raj <script>" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"Phone: +919876543210", "Configuration: 2 BHK", "Campaign: campaign=launch, source=google", "Visitor: Raj", "Agent: Hi there"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Body)
		}
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("html not escaped: %s", msg.HTML)
	}
}

func TestNotifyNewLeadJoinsFailures(t *testing.T) {
	sender := &recordingSender{fail: map[string]bool{"a@seher.example": true}}
	svc := NewService(sender, []string{"a@seher.example", "b@seher.example"}, logging.Discard())

	err := svc.NotifyNewLead(context.Background(), testLead())
	if err == nil || !strings.Contains(err.Error(), "a@seher.example") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "b@seher.example" {
		t.Fatalf("second recipient should still be tried: %+v", sender.sent)
	}
}

func TestNotifyDisabledWithoutRecipients(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil, logging.Discard())
	if svc.Enabled() {
		t.Fatalf("expected disabled service")
	}
	if err := svc.NotifyNewLead(context.Background(), testLead()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no emails")
	}
}

func TestLogSender(t *testing.T) {
	if err := NewLogSender(logging.Discard()).Send(context.Background(), EmailMessage{To: "x@seher.example"}); err != nil {
		t.Fatalf("send: %v", err)
	}
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/leads"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// Service emails the sales team when a lead is captured.
type Service struct {
	email      EmailSender
	recipients []string
	location   *time.Location
	logger     *logging.Logger
}

type Option func(*Service)

// WithLocation sets the timezone used for timestamps in emails.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewService(email EmailSender, recipients []string, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		email:      email,
		recipients: cleanRecipients(recipients),
		location:   time.UTC,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether emails will be attempted.
func (s *Service) Enabled() bool {
	return s != nil && s.email != nil && len(s.recipients) > 0
}

// NotifyNewLead sends one email per recipient. Every recipient is tried and
// failures are joined.
func (s *Service) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if !s.Enabled() {
		return nil
	}
	if lead == nil {
		return errors.New("notify: nil lead")
	}

	msg := s.leadEmail(lead)
	var errs []error
	for _, to := range s.recipients {
		msg.To = to
		if err := s.email.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", to, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.logger.Info("new lead notification sent", "lead_id", lead.ID, "recipients", len(s.recipients))
	return nil
}

func (s *Service) leadEmail(lead *leads.Lead) EmailMessage {
	name := metaString(lead.Metadata, "name")
	if name == "" {
		name = "A visitor"
	}
	subject := fmt.Sprintf("New lead on %s: %s", lead.Microsite, name)

	fields := [][2]string{
		{"Name", name},
		{"Phone", lead.Phone},
		{"Configuration", lead.BHKType},
		{"Microsite", lead.Microsite},
		{"Project", metaString(lead.Metadata, "projectId")},
		{"Interest", metaString(lead.Metadata, "cta")},
		{"Captured", lead.CreatedAt.In(s.location).Format("January 2, 2006 at 3:04 PM MST")},
	}
	if utm := utmSummary(lead.Metadata); utm != "" {
		fields = append(fields, [2]string{"Campaign", utm})
	}

	var text, rows strings.Builder
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(&text, "%s: %s\n", f[0], f[1])
		fmt.Fprintf(&rows, "<tr><td><strong>%s</strong></td><td>%s</td></tr>", f[0], html.EscapeString(f[1]))
	}
	if len(lead.Conversation) > 0 {
		text.WriteString("\nConversation:\n")
		for _, m := range lead.Conversation {
			fmt.Fprintf(&text, "%s: %s\n", speaker(m.Kind), m.Text)
		}
	}

	return EmailMessage{
		Subject: subject,
		Body:    text.String(),
		HTML:    "<table>" + rows.String() + "</table>",
	}
}

func speaker(k conversation.Kind) string {
	if k == conversation.KindUser {
		return "Visitor"
	}
	return "Agent"
}

func metaString(meta map[string]any, key string) string {
	v, _ := meta[key].(string)
	return strings.TrimSpace(v)
}

func utmSummary(meta map[string]any) string {
	visitor, _ := meta["visitor"].(map[string]any)
	utm, _ := visitor["utm"].(map[string]any)
	if len(utm) == 0 {
		return ""
	}
	keys := make([]string, 0, len(utm))
	for k := range utm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := utm[k].(string); ok && v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, ", ")
}

func cleanRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/leads"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// Archiver labels a captured lead's transcript and stores it.
type Archiver struct {
	store      *Store
	classifier *Classifier
	logger     *logging.Logger
	now        func() time.Time
}

// NewArchiver returns nil when the store is disabled.
func NewArchiver(store *Store, classifier *Classifier, logger *logging.Logger) *Archiver {
	if !store.Enabled() {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Archiver{store: store, classifier: classifier, logger: logger, now: time.Now}
}

// ArchiveLead is a no-op on a nil Archiver.
func (a *Archiver) ArchiveLead(ctx context.Context, lead *leads.Lead) error {
	if a == nil || lead == nil {
		return nil
	}

	msgs := make([]Message, 0, len(lead.Conversation))
	for _, m := range lead.Conversation {
		msgs = append(msgs, Message{Role: role(m.Kind), Content: m.Text, Timestamp: m.Timestamp})
	}
	scrubMessages(msgs)

	cta := metaString(lead.Metadata, "cta")
	labels, err := a.classifier.Classify(ctx, cta, msgs)
	if err != nil {
		a.logger.Warn("transcript labelling failed, using keyword rules", "lead_id", lead.ID, "error", err)
		labels = keywordLabels(cta, msgs)
	}

	var duration int
	if len(msgs) >= 2 {
		duration = int(msgs[len(msgs)-1].Timestamp.Sub(msgs[0].Timestamp).Seconds())
	}
	record := &TranscriptRecord{
		Version:         recordVersion,
		LeadID:          lead.ID,
		SessionID:       metaString(lead.Metadata, "sessionId"),
		ProjectID:       metaString(lead.Metadata, "projectId"),
		Microsite:       lead.Microsite,
		PhoneHash:       HashPhone(lead.Phone),
		BHKType:         lead.BHKType,
		CTA:             cta,
		UTMSource:       utmSource(lead.Metadata),
		ArchivedAt:      a.now().UTC(),
		DurationSeconds: duration,
		MessageCount:    len(msgs),
		Labels:          *labels,
		Messages:        msgs,
	}
	if err := a.store.Put(ctx, record); err != nil {
		return fmt.Errorf("archive lead %s: %w", lead.ID, err)
	}
	return nil
}

func role(k conversation.Kind) string {
	if k == conversation.KindUser {
		return "user"
	}
	return "assistant"
}

func metaString(meta map[string]any, key string) string {
	v, _ := meta[key].(string)
	return v
}

func utmSource(meta map[string]any) string {
	visitor, _ := meta["visitor"].(map[string]any)
	utm, _ := visitor["utm"].(map[string]any)
	v, _ := utm["source"].(string)
	return v
}

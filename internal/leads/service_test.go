package leads

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/events"
	"github.com/fahimkhan-git/seher-ai-chat/internal/submission"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

type recordingHooks struct {
	mu        sync.Mutex
	published []string
	notified  []string
	archived  []string
	broadcast []string
	failWith  error
}

func (h *recordingHooks) Publish(_ context.Context, key string, _ any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published = append(h.published, key)
	return h.failWith
}

func (h *recordingHooks) NotifyNewLead(_ context.Context, lead *Lead) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notified = append(h.notified, lead.ID)
	return h.failWith
}

func (h *recordingHooks) ArchiveLead(_ context.Context, lead *Lead) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.archived = append(h.archived, lead.ID)
	return h.failWith
}

func (h *recordingHooks) Broadcast(room, event string, _ any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcast = append(h.broadcast, room+"|"+event)
}

type failingSessions struct{}

func (failingSessions) CreateSession(context.Context, *ChatSession) error {
	return errors.New("sessions down")
}

func (failingSessions) ListSessions(context.Context, SessionFilter) (Page[*ChatSession], error) {
	return Page[*ChatSession]{}, errors.New("sessions down")
}

func newTestService(t *testing.T, hooks *recordingHooks) (*Service, *InMemoryRepository, *events.MemoryStore) {
	t.Helper()
	repo := NewInMemoryRepository()
	eventStore := events.NewMemoryStore()
	svc := NewService(repo, logging.Discard(),
		WithSessions(repo),
		WithEventRecorder(events.NewService(eventStore, logging.Discard())),
		WithPublisher(hooks),
		WithNotifier(hooks),
		WithArchiver(hooks),
		WithBroadcaster(hooks),
	)
	return svc, repo, eventStore
}

func TestServiceCreate(t *testing.T) {
	hooks := &recordingHooks{}
	svc, repo, eventStore := newTestService(t, hooks)

	lead, err := svc.Create(context.Background(), CreateLeadRequest{
		Phone:        " +919876543210 ",
		BHK:          float64(2),
		Microsite:    "nivasa",
		Metadata:     map[string]any{"projectId": "proj-7"},
		Conversation: []conversation.Message{conversation.NewMessage(conversation.KindUser, "hi")},
	})
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, "+919876543210", lead.Phone)
	assert.Equal(t, "2 BHK", lead.BHKType)
	require.NotNil(t, lead.BHK)
	assert.Equal(t, 2, *lead.BHK)
	assert.Equal(t, SourceChatWidget, lead.LeadSource)
	assert.Equal(t, StatusNew, lead.Status)

	stored, err := repo.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead, stored)

	sessions, err := repo.ListSessions(context.Background(), SessionFilter{LeadID: lead.ID})
	require.NoError(t, err)
	require.Len(t, sessions.Items, 1)
	assert.Equal(t, "proj-7", sessions.Items[0].ProjectID)
	assert.Len(t, sessions.Items[0].Conversation, 1)

	recorded := eventStore.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.TypeLeadSubmitted, recorded[0].Type)
	assert.Equal(t, "nivasa", recorded[0].ProjectID)
	assert.Equal(t, "2 BHK", recorded[0].Payload["bhkType"])
	assert.Equal(t, 2, recorded[0].Payload["bhk"])

	assert.Equal(t, []string{LeadCreatedKey}, hooks.published)
	assert.Equal(t, []string{lead.ID}, hooks.notified)
	assert.Equal(t, []string{lead.ID}, hooks.archived)
	assert.Equal(t, []string{"nivasa|lead:new"}, hooks.broadcast)
}

func TestServiceCreateValidation(t *testing.T) {
	svc, repo, _ := newTestService(t, &recordingHooks{})

	_, err := svc.Create(context.Background(), CreateLeadRequest{BHKType: "2 BHK", Microsite: "  "})
	assert.ErrorIs(t, err, ErrMissingMicrosite)

	_, err = svc.Create(context.Background(), CreateLeadRequest{Microsite: "nivasa", BHKType: "villa"})
	assert.ErrorIs(t, err, ErrInvalidBHK)

	page, err := repo.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestServiceCreateSurvivesHookFailures(t *testing.T) {
	hooks := &recordingHooks{failWith: errors.New("downstream down")}
	repo := NewInMemoryRepository()
	svc := NewService(repo, logging.Discard(),
		WithSessions(failingSessions{}),
		WithPublisher(hooks),
		WithNotifier(hooks),
		WithArchiver(hooks),
	)

	lead, err := svc.Create(context.Background(), CreateLeadRequest{Microsite: "nivasa", BHKType: "Duplex"})
	require.NoError(t, err)
	svc.Wait()

	assert.Nil(t, lead.BHK)
	assert.Equal(t, []string{lead.ID}, hooks.archived)
}

func TestServiceRecordLead(t *testing.T) {
	svc, repo, _ := newTestService(t, &recordingHooks{})

	err := svc.RecordLead(context.Background(), submission.LocalLead{
		Phone:     "+919876543210",
		BHKType:   "3 BHK",
		Microsite: "nivasa",
		Metadata: submission.LocalMetadata{
			ProjectID: "proj-7",
			Name:      "Asha",
			Visitor:   submission.Visitor{UTM: map[string]string{"source": "google"}},
		},
	})
	require.NoError(t, err)
	svc.Wait()

	page, err := repo.List(context.Background(), ListFilter{Search: "GOOG"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Asha", page.Items[0].Metadata["name"])
	assert.Equal(t, "3 BHK", page.Items[0].BHKType)
}

func TestInMemoryListFilters(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, site := range []string{"alpha", "beta", "alpha", "alpha"} {
		require.NoError(t, repo.Create(ctx, &Lead{
			ID:        string(rune('a' + i)),
			Microsite: site,
			Phone:     "+9198765432" + string(rune('0'+i)) + "0",
			CreatedAt: base.AddDate(0, 0, i),
		}))
	}

	page, err := repo.List(ctx, ListFilter{Microsite: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, "d", page.Items[0].ID)

	start := base.AddDate(0, 0, 1)
	end := base.AddDate(0, 0, 2)
	page, err = repo.List(ctx, ListFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = repo.List(ctx, ListFilter{Limit: 2, Skip: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].ID)

	page, err = repo.List(ctx, ListFilter{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestServiceListSessionsWithoutStore(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), logging.Discard())
	page, err := svc.ListSessions(context.Background(), SessionFilter{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Zero(t, page.Total)
}

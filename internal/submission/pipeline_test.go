package submission

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/phone"
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

func (f *fakeCRM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type fakeRecorder struct {
	mu    sync.Mutex
	leads []LocalLead
	err   error
}

func (f *fakeRecorder) RecordLead(_ context.Context, lead LocalLead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, lead)
	return f.err
}

type fixedIP string

func (f fixedIP) Lookup(context.Context) string { return string(f) }

func domesticCapture(t *testing.T) Capture {
	t.Helper()
	res := phone.Normalize("98765 43210", phone.Default())
	require.True(t, res.OK)
	return Capture{
		SessionID: "s-1",
		Name:      "Raj",
		Phone:     res,
		BHK:       "2 Bhk",
		ProjectID: "5796",
		Microsite: "nivasa",
		Page:      crm.PageContext{URL: "https://nivasa.example/?utm_source=fb", UserAgent: "Mozilla/5.0 Chrome/120"},
		Conversation: []conversation.Message{
			conversation.NewMessage(conversation.KindUser, "+91 9876543210"),
		},
	}
}

func TestSubmitSendsPayloadAndRecordsLocalCopy(t *testing.T) {
	creator := &fakeCRM{}
	recorder := &fakeRecorder{}
	p := NewPipeline(creator, logging.Discard(), WithRecorder(recorder), WithIPResolver(fixedIP("198.51.100.2")))

	res, err := p.Submit(context.Background(), domesticCapture(t))
	require.NoError(t, err)
	p.Wait()

	assert.Equal(t, "+91", res.Payload.CountryCode)
	assert.Equal(t, "9876543210", res.Payload.Number)
	assert.Equal(t, crm.NationalityDomestic, res.Payload.Nationality)
	assert.Equal(t, 5796, res.Payload.ProjectID)
	assert.Equal(t, "198.51.100.2", res.Payload.Digital.ClientIPAddress)
	assert.Equal(t, 1, creator.calls())

	require.Len(t, recorder.leads, 1)
	local := recorder.leads[0]
	assert.Equal(t, "+919876543210", local.Phone)
	assert.Equal(t, "2 Bhk", local.BHKType)
	assert.Equal(t, "nivasa", local.Microsite)
	assert.Equal(t, "9876543210", local.Metadata.PhoneSubscriber)
	assert.Equal(t, "IN", local.Metadata.PhoneCountryCode)
	assert.Len(t, local.Conversation, 1)
	assert.False(t, local.Metadata.Visitor.LastInteractionAt.IsZero())
}

func TestSubmitPrefersKnownClientIP(t *testing.T) {
	creator := &fakeCRM{}
	p := NewPipeline(creator, logging.Discard(), WithIPResolver(fixedIP("198.51.100.2")))
	c := domesticCapture(t)
	c.Page.ClientIP = "203.0.113.50"

	res, err := p.Submit(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.50", res.Payload.Digital.ClientIPAddress)
}

func TestSubmitWithoutIPResolverUsesPlaceholder(t *testing.T) {
	p := NewPipeline(&fakeCRM{}, logging.Discard())
	res, err := p.Submit(context.Background(), domesticCapture(t))
	require.NoError(t, err)
	assert.Equal(t, crm.PlaceholderIP, res.Payload.Digital.ClientIPAddress)
}

func TestSubmitRejectsBadDomesticShapeWithoutNetwork(t *testing.T) {
	creator := &fakeCRM{}
	p := NewPipeline(creator, logging.Discard())
	c := domesticCapture(t)
	c.Phone.SubscriberDigits = "1234567890"

	_, err := p.Submit(context.Background(), c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDomesticPhone))
	assert.True(t, errors.Is(err, phone.ErrDomesticLeadingDigit))
	assert.Zero(t, creator.calls())
}

func TestSubmitRejectsUnnormalizedPhone(t *testing.T) {
	creator := &fakeCRM{}
	p := NewPipeline(creator, logging.Discard())
	_, err := p.Submit(context.Background(), Capture{Name: "Raj"})
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Zero(t, creator.calls())
}

func TestSubmitCRMFailureIsRetryable(t *testing.T) {
	cause := &crm.StatusError{StatusCode: 500, Body: "boom"}
	creator := &fakeCRM{err: cause}
	recorder := &fakeRecorder{}
	p := NewPipeline(creator, logging.Discard(), WithRecorder(recorder))

	_, err := p.Submit(context.Background(), domesticCapture(t))
	p.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCRMUnavailable)
	var statusErr *crm.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Empty(t, recorder.leads)
}

func TestLocalRecordFailureIsSwallowed(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("local api down")}
	p := NewPipeline(&fakeCRM{}, logging.Discard(), WithRecorder(recorder))

	_, err := p.Submit(context.Background(), domesticCapture(t))
	p.Wait()
	require.NoError(t, err)
	assert.Len(t, recorder.leads, 1)
}

func TestLocalLeadDefaults(t *testing.T) {
	c := domesticCapture(t)
	c.BHK = ""
	c.Microsite = ""
	lead := localLead(c, c.Visitor.FirstSeenAt)
	assert.Equal(t, DefaultBHKType, lead.BHKType)
	assert.Equal(t, "5796", lead.Microsite)
}

func TestInternationalLead(t *testing.T) {
	uae, ok := phone.LookupDialCode("+971")
	require.True(t, ok)
	c := domesticCapture(t)
	c.Phone = phone.Normalize("501234567", uae)
	require.True(t, c.Phone.OK)

	res, err := NewPipeline(&fakeCRM{}, logging.Discard()).Submit(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, crm.NationalityInternational, res.Payload.Nationality)
	assert.Equal(t, "+971", res.Payload.CountryCode)
}

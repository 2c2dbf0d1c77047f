package webchat

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/phone"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widget"
)

func TestMountRequiresProject(t *testing.T) {
	m, _ := newTestManager(t, &fakeCRM{})
	_, _, err := m.Mount(context.Background(), MountRequest{ProjectID: "  "})
	assert.ErrorIs(t, err, ErrMissingProject)
}

func TestMountUsesProjectTheme(t *testing.T) {
	m, _ := newTestManager(t, &fakeCRM{})
	s, created, err := m.Mount(context.Background(), MountRequest{ProjectID: "5796", Microsite: "nivasa"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "Riya from Homesfy", s.Theme().AgentName)

	again, created, err := m.Mount(context.Background(), MountRequest{SessionID: s.ID(), ProjectID: "5796"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, s, again)
}

func TestDispatchScriptedFunnel(t *testing.T) {
	ctx := context.Background()
	creator := &fakeCRM{}
	m, transcript := newTestManager(t, creator)
	s, _, err := m.Mount(ctx, MountRequest{ProjectID: "5796", Microsite: "nivasa"})
	require.NoError(t, err)

	res, err := m.Dispatch(ctx, s, Action{Type: ActionOpen})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)

	theme := s.Theme()
	_, err = m.Dispatch(ctx, s, Action{Type: ActionCTA, Value: theme.CTAOptions[0]})
	require.NoError(t, err)
	_, err = m.Dispatch(ctx, s, Action{Type: ActionBHK, Value: theme.BHKOptions[1]})
	require.NoError(t, err)
	res, err = m.Dispatch(ctx, s, Action{Type: ActionText, Value: "Raj"})
	require.NoError(t, err)
	assert.Equal(t, widget.ModePhone, res.State.Mode)

	res, err = m.Dispatch(ctx, s, Action{Type: ActionText, Value: "12345"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ValidationError)
	assert.Empty(t, res.Messages)

	res, err = m.Dispatch(ctx, s, Action{Type: ActionText, Value: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, widget.ModeChat, res.State.Mode)
	assert.True(t, res.State.PhoneSubmitted)
	assert.Equal(t, 1, creator.count())

	mirrored, err := transcript.List(ctx, s.ID(), 0)
	require.NoError(t, err)
	assert.Equal(t, s.Messages(), mirrored)
}

func TestDispatchSubmitFailureReportsRetry(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, &fakeCRM{err: errors.New("crm down")})
	s, _, err := m.Mount(ctx, MountRequest{ProjectID: "5796"})
	require.NoError(t, err)
	toPhoneMode(t, m, s)

	res, err := m.Dispatch(ctx, s, Action{Type: ActionText, Value: "9876543210"})
	assert.ErrorIs(t, err, widget.ErrSubmitFailed)
	assert.Equal(t, widget.RetryMessage, res.Error)
	assert.Empty(t, res.Messages)
	assert.False(t, res.State.PhoneSubmitted)
	assert.Equal(t, widget.ModePhone, res.State.Mode)
	assert.Equal(t, http.StatusBadGateway, statusFor(err))
}

func TestLeadFormOutsideFormModeConflicts(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, &fakeCRM{})
	s, _, err := m.Mount(ctx, MountRequest{ProjectID: "5796"})
	require.NoError(t, err)

	_, err = m.Dispatch(ctx, s, Action{Type: ActionLeadForm, Name: "Raj", Phone: "9876543210"})
	assert.ErrorIs(t, err, widget.ErrWrongMode)
	assert.Equal(t, http.StatusConflict, statusFor(err))
}

func TestDispatchCountry(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, &fakeCRM{})
	s, _, err := m.Mount(ctx, MountRequest{ProjectID: "5796"})
	require.NoError(t, err)

	res, err := m.Dispatch(ctx, s, Action{Type: ActionCountry, Country: "ae"})
	require.NoError(t, err)
	assert.Equal(t, "+971", res.State.SelectedCountry.DialCode)

	res, err = m.Dispatch(ctx, s, Action{Type: ActionCountry, Value: "44"})
	require.NoError(t, err)
	assert.Equal(t, "GB", res.State.SelectedCountry.ISOCode)

	_, err = m.Dispatch(ctx, s, Action{Type: ActionCountry, Country: "ZZ"})
	assert.ErrorIs(t, err, widget.ErrUnknownCountry)

	_, err = m.Dispatch(ctx, s, Action{Type: "dance"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestMountPreselectsVisitorCountry(t *testing.T) {
	loc := staticLocator{loc: crm.Location{CountryCode: "AE", CallingCode: "+971"}}
	m, _ := newTestManager(t, &fakeCRM{}, WithLocator(loc))
	s, _, err := m.Mount(context.Background(), MountRequest{ProjectID: "5796", ClientIP: "94.200.1.1"})
	require.NoError(t, err)
	m.Wait()
	assert.Equal(t, "AE", s.State().SelectedCountry.ISOCode)
}

func TestMountKeepsDefaultCountryWhenLookupFails(t *testing.T) {
	m, _ := newTestManager(t, &fakeCRM{}, WithLocator(staticLocator{err: errors.New("timeout")}))
	s, _, err := m.Mount(context.Background(), MountRequest{ProjectID: "5796"})
	require.NoError(t, err)
	m.Wait()
	assert.Equal(t, phone.Default(), s.State().SelectedCountry)
}

func TestHistoryFallsBackToTranscript(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, &fakeCRM{})
	s, _, err := m.Mount(ctx, MountRequest{ProjectID: "5796"})
	require.NoError(t, err)
	_, err = m.Dispatch(ctx, s, Action{Type: ActionOpen})
	require.NoError(t, err)

	live, err := m.History(ctx, s.ID(), 0)
	require.NoError(t, err)
	require.Len(t, live, 1)

	require.True(t, m.Unmount(s.ID()))
	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	stored, err := m.History(ctx, s.ID(), 0)
	require.NoError(t, err)
	assert.Equal(t, live, stored)
}

func TestSweepDropsIdleSessions(t *testing.T) {
	m, _ := newTestManager(t, &fakeCRM{})
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stale, _, err := m.Mount(context.Background(), MountRequest{ProjectID: "5796"})
	require.NoError(t, err)
	now = now.Add(20 * time.Minute)
	fresh, _, err := m.Mount(context.Background(), MountRequest{ProjectID: "5796"})
	require.NoError(t, err)

	assert.Equal(t, 1, m.Sweep(10*time.Minute))
	_, err = m.Get(stale.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)
}

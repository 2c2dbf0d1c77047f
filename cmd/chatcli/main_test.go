package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/internal/assistant"
	"github.com/fahimkhan-git/seher-ai-chat/internal/submission"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widget"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

func newCLISession(t *testing.T, out *bytes.Buffer) (*widget.Session, *submission.Pipeline) {
	t.Helper()
	gw := assistant.GatewayFunc(func(context.Context, assistant.Request) (assistant.Reply, error) {
		return assistant.Reply{Text: "Happy to help."}, nil
	})
	pipeline := submission.NewPipeline(printCreator{w: out}, logging.Discard())
	s := widget.NewSession(widget.Config{SessionID: "cli-test", ProjectID: "5796", Microsite: "cli"},
		gw, pipeline, widget.WithLogger(logging.Discard()))
	return s, pipeline
}

func TestRunScriptedFunnelPrintsPayload(t *testing.T) {
	var out bytes.Buffer
	s, pipeline := newCLISession(t, &out)

	in := strings.NewReader("1\n2\nRaj\n9876543210\n/quit\n")
	require.NoError(t, run(context.Background(), s, in, &out))
	pipeline.Wait()

	st := s.State()
	assert.Equal(t, widget.ModeChat, st.Mode)
	assert.True(t, st.PhoneSubmitted)
	assert.Equal(t, "2 Bhk", st.SelectedBHK)
	assert.Contains(t, out.String(), "CRM payload (dry run):")
	assert.Contains(t, out.String(), `"number": "9876543210"`)
}

func TestRunReportsValidationErrors(t *testing.T) {
	var out bytes.Buffer
	s, _ := newCLISession(t, &out)

	in := strings.NewReader("1\n2\nR\n")
	require.NoError(t, run(context.Background(), s, in, &out))

	assert.Equal(t, widget.ModeName, s.State().Mode)
	assert.Contains(t, out.String(), "! ")
}

func TestPick(t *testing.T) {
	opts := []string{"a", "b"}
	got, ok := pick(opts, "2")
	assert.True(t, ok)
	assert.Equal(t, "b", got)

	_, ok = pick(opts, "3")
	assert.False(t, ok)
	_, ok = pick(opts, "two")
	assert.False(t, ok)
}

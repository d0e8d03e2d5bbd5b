package observability

import (
	"errors"
	"testing"

	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brevity/internal/config"
	"brevity/internal/core"
	"brevity/internal/logger"
)

type fakeClient struct {
	messages []posthog.Message
	err      error
	closed   bool
}

func (f *fakeClient) Enqueue(m posthog.Message) error {
	f.messages = append(f.messages, m)
	return f.err
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestSummaryCreated(t *testing.T) {
	client := &fakeClient{}
	r := newRecorder(client, logger.Discard())

	r.SummaryCreated("user-1", &core.AnalysisResult{
		ID:          "sum-1",
		SourceKind:  core.SourceVideoPlatform,
		ContentType: "video",
		Generated:   []string{"email_draft"},
	})

	require.Len(t, client.messages, 1)
	capture, ok := client.messages[0].(posthog.Capture)
	require.True(t, ok)
	assert.Equal(t, "user-1", capture.DistinctId)
	assert.Equal(t, EventSummaryCreated, capture.Event)
	assert.Equal(t, "video_platform", capture.Properties["source_kind"])
	assert.Equal(t, 1, capture.Properties["generated_sections"])

	require.NoError(t, r.Close())
	assert.True(t, client.closed)
}

func TestSummaryCreatedSwallowsErrors(t *testing.T) {
	client := &fakeClient{err: errors.New("queue full")}
	r := newRecorder(client, logger.Discard())

	assert.NotPanics(t, func() {
		r.SummaryCreated("", &core.AnalysisResult{ID: "x"})
	})
	require.Len(t, client.messages, 1)
	assert.Equal(t, "anonymous", client.messages[0].(posthog.Capture).DistinctId)
}

func TestDisabledRecorder(t *testing.T) {
	r, err := NewRecorder(config.PostHog{})
	require.NoError(t, err)
	assert.False(t, r.IsEnabled())
	r.SummaryCreated("user-1", &core.AnalysisResult{ID: "x"})
	assert.NoError(t, r.Close())

	var nilRecorder *Recorder
	assert.False(t, nilRecorder.IsEnabled())
	nilRecorder.SummaryCreated("user-1", &core.AnalysisResult{ID: "x"})
}

func TestNewRecorderRequiresKey(t *testing.T) {
	_, err := NewRecorder(config.PostHog{Enabled: true})
	assert.Error(t, err)
}

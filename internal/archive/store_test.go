package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

type putCall struct {
	bucket string
	key    string
	body   []byte
}

type mockS3Client struct {
	putCalls []putCall
	objects  map[string][]byte
	getErr   error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)
	m.putCalls = append(m.putCalls, putCall{bucket: *in.Bucket, key: *in.Key, body: body})
	m.objects[*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func newTestStore(client S3API) *Store {
	s := NewStore(client, "leads-archive", logging.Discard())
	s.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestStorePut(t *testing.T) {
	mock := newMockS3()
	store := newTestStore(mock)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	record := &TranscriptRecord{
		Version:      recordVersion,
		LeadID:       "lead-1",
		Microsite:    "nivasa",
		PhoneHash:    HashPhone("+919876543210"),
		ArchivedAt:   at,
		MessageCount: 1,
		Labels:       Labels{Intent: "pricing"},
		Messages:     []Message{{Role: "user", Content: "price?", Timestamp: at}},
	}
	require.NoError(t, store.Put(context.Background(), record))
	require.Len(t, mock.putCalls, 2)

	assert.Equal(t, "leads-archive", mock.putCalls[0].bucket)
	assert.Equal(t, "transcripts/v1/by-date/2025/03/01/lead-1.json", mock.putCalls[0].key)
	var decoded TranscriptRecord
	require.NoError(t, json.Unmarshal(mock.putCalls[0].body, &decoded))
	assert.Equal(t, "lead-1", decoded.LeadID)

	assert.Equal(t, "transcripts/v1/manifests/2025-03.jsonl", mock.putCalls[1].key)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(mock.putCalls[1].body), &entry))
	assert.Equal(t, "pricing", entry.Intent)
}

func TestStoreDisabled(t *testing.T) {
	store := NewStore(nil, "", nil)
	assert.False(t, store.Enabled())
	assert.NoError(t, store.Put(context.Background(), &TranscriptRecord{}))
}

func TestManifestAppends(t *testing.T) {
	mock := newMockS3()
	store := newTestStore(mock)

	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{LeadID: "lead-1"}))
	require.NoError(t, store.AppendManifest(context.Background(), ManifestEntry{LeadID: "lead-2"}))

	last := mock.putCalls[len(mock.putCalls)-1]
	lines := bytes.Split(bytes.TrimSpace(last.body), []byte("\n"))
	assert.Len(t, lines, 2)
}

func TestManifestReadFailureDoesNotOverwrite(t *testing.T) {
	mock := newMockS3()
	mock.getErr = errors.New("access denied")
	store := newTestStore(mock)

	err := store.AppendManifest(context.Background(), ManifestEntry{LeadID: "lead-1"})
	assert.Error(t, err)
	assert.Empty(t, mock.putCalls)
}

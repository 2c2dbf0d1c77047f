package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Event is an analytics event posted to the local events endpoint.
type Event struct {
	Type      string         `json:"type"`
	ProjectID string         `json:"projectId"`
	Microsite string         `json:"microsite,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// LocalClient talks to the local leads and events API over HTTP.
type LocalClient struct {
	baseURL string
	client  *http.Client
}

func NewLocalClient(baseURL string, timeout time.Duration) *LocalClient {
	if timeout <= 0 {
		timeout = defaultRecordTimeout
	}
	return &LocalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// RecordLead posts lead to /api/leads.
func (c *LocalClient) RecordLead(ctx context.Context, lead LocalLead) error {
	return c.post(ctx, "/api/leads", lead)
}

// TrackEvent posts event to /api/events.
func (c *LocalClient) TrackEvent(ctx context.Context, event Event) error {
	return c.post(ctx, "/api/events", event)
}

func (c *LocalClient) post(ctx context.Context, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("submission: encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("submission: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("submission: post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("submission: post %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

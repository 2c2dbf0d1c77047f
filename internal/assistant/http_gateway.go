package assistant

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

// HTTPGateway calls a remote chat endpoint.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway returns a gateway posting to {baseURL}/api/chat.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) Reply(ctx context.Context, req Request) (Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("assistant: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("assistant: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("assistant: chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Reply{}, fmt.Errorf("assistant: chat request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var wire WireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Reply{}, fmt.Errorf("assistant: decode response: %w", err)
	}
	reply := NormalizeWire(wire)
	if reply.Text == "" && reply.Directive == DirectiveNone {
		return Reply{}, fmt.Errorf("assistant: empty reply")
	}
	return reply, nil
}

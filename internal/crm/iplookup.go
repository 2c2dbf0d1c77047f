package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// PlaceholderIP is reported when the visitor address cannot be resolved.
	PlaceholderIP = "0.0.0.0"

	DefaultIPLookupURL     = "https://api.ipify.org/?format=json"
	DefaultIPLookupTimeout = 3 * time.Second
)

// IPLookup resolves the public address of the caller.
type IPLookup struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

func NewIPLookup(url string, timeout time.Duration) *IPLookup {
	if strings.TrimSpace(url) == "" {
		url = DefaultIPLookupURL
	}
	if timeout <= 0 {
		timeout = DefaultIPLookupTimeout
	}
	return &IPLookup{url: url, timeout: timeout, client: &http.Client{}}
}

// Lookup never fails; any error or timeout yields PlaceholderIP.
func (l *IPLookup) Lookup(ctx context.Context) string {
	if l == nil {
		return PlaceholderIP
	}
	ip, err := l.fetch(ctx)
	if err != nil || ip == "" {
		return PlaceholderIP
	}
	return ip
}

func (l *IPLookup) fetch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("crm: ip lookup status %d", resp.StatusCode)
	}
	var out struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.IP), nil
}

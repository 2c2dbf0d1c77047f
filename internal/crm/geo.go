package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

const DefaultGeoLookupURL = "https://ipapi.co"

// Location is the visitor location reported by the geo service.
type Location struct {
	IP          string  `json:"ip,omitempty"`
	City        string  `json:"city,omitempty"`
	Region      string  `json:"region,omitempty"`
	Country     string  `json:"country_name,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	CallingCode string  `json:"country_calling_code,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

// Locator resolves a visitor location from an address.
type Locator struct {
	baseURL string
	client  *http.Client
}

func NewLocator(baseURL string, timeout time.Duration) *Locator {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultGeoLookupURL
	}
	if timeout <= 0 {
		timeout = DefaultIPLookupTimeout
	}
	return &Locator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Locate looks up ip, or the caller's own address when ip is empty or not
// routable.
func (l *Locator) Locate(ctx context.Context, ip string) (Location, error) {
	endpoint := l.baseURL + "/json/"
	if routable(ip) {
		endpoint = fmt.Sprintf("%s/%s/json/", l.baseURL, ip)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, fmt.Errorf("crm: build geo request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("crm: geo lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("crm: geo lookup status %d", resp.StatusCode)
	}
	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return Location{}, fmt.Errorf("crm: decode geo response: %w", err)
	}
	return loc, nil
}

func routable(ip string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	return !(parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast())
}

package crm

import (
	"net/url"
	"regexp"
	"strings"
)

// UTMKeys are the query parameters captured for attribution.
var UTMKeys = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// PageContext is what the embedding page tells us about the visit.
type PageContext struct {
	// URL is the full page URL including the query string.
	URL string `json:"url"`
	// ScriptProjectID is the data-project attribute on the embed script tag.
	ScriptProjectID string `json:"scriptProjectId,omitempty"`
	UserAgent       string `json:"userAgent,omitempty"`
	Referrer        string `json:"referrer,omitempty"`
	// SessionUTM holds UTM values persisted in the browser session.
	SessionUTM map[string]string `json:"sessionUtm,omitempty"`
	// ClientIP is the visitor address seen by the server, when known.
	ClientIP string `json:"clientIp,omitempty"`
}

// Query returns the parsed page query string.
func (p PageContext) Query() url.Values {
	if p.URL == "" {
		return url.Values{}
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}

// LandingPage returns path plus query of the page URL.
func (p PageContext) LandingPage() string {
	u, err := url.Parse(p.URL)
	if err != nil || p.URL == "" {
		return ""
	}
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

// MagnetID returns the magnet tracking parameter, if any.
func (p PageContext) MagnetID() string {
	return strings.TrimSpace(p.Query().Get("magnet_id"))
}

// URLProjectID returns the project id given in the page query string.
func (p PageContext) URLProjectID() string {
	q := p.Query()
	if v := strings.TrimSpace(q.Get("project_id")); v != "" {
		return v
	}
	return strings.TrimSpace(q.Get("projectId"))
}

// UTM returns UTM values from the URL, falling back to session storage
// per key. Keys are the full parameter names.
// VisitorUTM is UTM() keyed without the "utm_" prefix, the shape stored in
// visitor metadata.
func (p PageContext) VisitorUTM() map[string]string {
	utm := p.UTM()
	out := make(map[string]string, len(utm))
	for k, v := range utm {
		out[strings.TrimPrefix(k, "utm_")] = v
	}
	return out
}

func (p PageContext) UTM() map[string]string {
	q := p.Query()
	out := map[string]string{}
	for _, key := range UTMKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			out[key] = v
			continue
		}
		if v := strings.TrimSpace(p.SessionUTM[key]); v != "" {
			out[key] = v
		}
	}
	return out
}

var (
	mobileUA = regexp.MustCompile(`(?i)android|webos|iphone|windows phone`)
	tabletUA = regexp.MustCompile(`(?i)ipad|ipod`)
)

// ClassifyDevice maps a user agent to Mobile, Tablet or Desktop.
func ClassifyDevice(userAgent string) string {
	switch {
	case mobileUA.MatchString(userAgent):
		return "Mobile"
	case tabletUA.MatchString(userAgent):
		return "Tablet"
	default:
		return "Desktop"
	}
}

// ClassifyBrowser maps a user agent to a browser family. Order matters:
// Chrome user agents also mention Safari.
func ClassifyBrowser(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Chrome"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari"):
		return "Safari"
	case strings.Contains(userAgent, "Edge"):
		return "Edge"
	default:
		return "Other"
	}
}

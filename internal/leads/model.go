package leads

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
)

const (
	SourceChatWidget = "ChatWidget"
	StatusNew        = "new"

	BHKYetToDecide  = "Yet to decide"
	BHKOther        = "Other"
	BHKDuplex       = "Duplex"
	BHKJustBrowsing = "Just Browsing"
)

// Lead is a lead captured by the chat widget.
type Lead struct {
	ID           string                 `json:"id"`
	Phone        string                 `json:"phone,omitempty"`
	BHK          *int                   `json:"bhk,omitempty"`
	BHKType      string                 `json:"bhkType"`
	Microsite    string                 `json:"microsite"`
	LeadSource   string                 `json:"leadSource"`
	Status       string                 `json:"status"`
	Metadata     map[string]any         `json:"metadata"`
	Conversation []conversation.Message `json:"conversation"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// CreateLeadRequest is the body of POST /api/leads. BHK may be a number or a
// numeric string.
type CreateLeadRequest struct {
	Phone        string                 `json:"phone"`
	BHK          any                    `json:"bhk"`
	BHKType      string                 `json:"bhkType"`
	Microsite    string                 `json:"microsite" validate:"required"`
	Metadata     map[string]any         `json:"metadata"`
	Conversation []conversation.Message `json:"conversation"`
}

// ChatSession is the transcript stored alongside each lead.
type ChatSession struct {
	ID           string                 `json:"id"`
	Microsite    string                 `json:"microsite"`
	ProjectID    string                 `json:"projectId"`
	LeadID       string                 `json:"leadId"`
	Phone        string                 `json:"phone,omitempty"`
	BHKType      string                 `json:"bhkType"`
	Conversation []conversation.Message `json:"conversation"`
	Metadata     map[string]any         `json:"metadata"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// ListFilter narrows GET /api/leads.
type ListFilter struct {
	Microsite string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Skip      int
}

// SessionFilter narrows GET /api/chat-sessions.
type SessionFilter struct {
	Microsite string
	LeadID    string
	Limit     int
	Skip      int
}

// Page is one page of results plus the unpaged total.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Preference is a normalized BHK choice. Numeric is nil for labels without a
// room count.
type Preference struct {
	Type    string
	Numeric *int
}

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]`)
	firstDigits = regexp.MustCompile(`\d+`)

	specialBHK = map[string]string{
		"duplex":       BHKDuplex,
		"justbrowsing": BHKJustBrowsing,
		"justlooking":  BHKJustBrowsing,
		"other":        BHKOther,
		"yettodecide":  BHKYetToDecide,
	}
)

// NormalizeBHK resolves the preference from a numeric bhk, falling back to
// the bhkType label.
func NormalizeBHK(bhk any, bhkType string) (Preference, bool) {
	if n, ok := numeric(bhk); ok {
		if n == 0 {
			return Preference{Type: BHKYetToDecide}, true
		}
		if math.Abs(n) > math.MaxInt32 {
			return Preference{Type: BHKOther}, true
		}
		return fromCount(int(math.Round(n))), true
	}

	trimmed := strings.TrimSpace(bhkType)
	if trimmed == "" {
		return Preference{}, false
	}
	if label, ok := specialBHK[nonAlnum.ReplaceAllString(strings.ToLower(trimmed), "")]; ok {
		return Preference{Type: label}, true
	}
	if digits := firstDigits.FindString(trimmed); digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil {
			// Digit runs too long for an int are still an explicit count.
			return Preference{Type: BHKOther}, true
		}
		if n == 0 {
			return Preference{Type: BHKYetToDecide}, true
		}
		return fromCount(n), true
	}
	return Preference{}, false
}

func fromCount(n int) Preference {
	if n >= 1 && n <= 4 {
		return Preference{Type: fmt.Sprintf("%d BHK", n), Numeric: &n}
	}
	return Preference{Type: BHKOther, Numeric: &n}
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// matches reports whether the lead passes the filter's microsite, search and
// date criteria.
func (f ListFilter) matches(l *Lead) bool {
	if f.Microsite != "" && l.Microsite != f.Microsite {
		return false
	}
	if f.StartDate != nil && l.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && l.CreatedAt.After(*f.EndDate) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	for _, field := range []string{l.Microsite, l.Phone, utmField(l.Metadata, "source"), utmField(l.Metadata, "campaign")} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func utmField(metadata map[string]any, key string) string {
	visitor, _ := metadata["visitor"].(map[string]any)
	utm, _ := visitor["utm"].(map[string]any)
	s, _ := utm[key].(string)
	return s
}

package crm

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fahimkhan-git/seher-ai-chat/internal/phone"
)

// Lead is the captured contact plus visit context a payload is built from.
type Lead struct {
	Name             string
	DialCode         string
	SubscriberDigits string
	Page             PageContext
	// DefaultProjectID is the project id the widget was mounted with.
	DefaultProjectID string
	ClientIP         string
}

// Builder assembles CRM payloads.
type Builder struct {
	now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build returns a fresh payload for lead.
func (b *Builder) Build(lead Lead) Payload {
	magnetID := lead.Page.MagnetID()
	utm := lead.Page.UTM()

	ip := strings.TrimSpace(lead.ClientIP)
	if ip == "" {
		ip = PlaceholderIP
	}

	p := Payload{
		Name:           strings.TrimSpace(lead.Name),
		CountryCode:    lead.DialCode,
		Number:         lead.SubscriberDigits,
		TrackingLeadID: magnetID,
		Nationality:    Nationality(lead.DialCode),
		SourceID:       SourceChat,
		ProjectID:      ResolveProjectID(lead.Page.URLProjectID(), lead.Page.ScriptProjectID, lead.DefaultProjectID),
		Digital: Digital{
			UserDevice:      ClassifyDevice(lead.Page.UserAgent),
			UserBrowser:     ClassifyBrowser(lead.Page.UserAgent),
			CampaignType:    optional(utm["utm_campaign"]),
			ClientIPAddress: ip,
		},
	}
	if p.Name == "" {
		p.Name = "Guest"
	}
	if magnetID == "" {
		p.TrackingLeadID = fmt.Sprintf("chat-%d", b.now().UnixMilli())
	} else {
		p.SourceID = SourceMagnet
		p.IsMagnet = 1
		p.MagnetID = magnetID
	}
	if len(utm) > 0 {
		p.Utm = &Utm{
			Medium:  optional(utm["utm_medium"]),
			Source:  optional(utm["utm_source"]),
			Content: optional(utm["utm_content"]),
			Term:    optional(utm["utm_term"]),
		}
	}
	return p
}

// Nationality is domestic for the +91 dial code, international otherwise.
func Nationality(dialCode string) int {
	if dialCode == phone.DomesticDialCode {
		return NationalityDomestic
	}
	return NationalityInternational
}

// ResolveProjectID picks the first non-empty of the URL parameter, the
// script attribute and the mount default. A non-numeric pick falls back to
// the mount default and then to FallbackProjectID.
func ResolveProjectID(fromURL, fromScript, fromMount string) int {
	chosen := ""
	for _, candidate := range []string{fromURL, fromScript, fromMount} {
		if c := strings.TrimSpace(candidate); c != "" {
			chosen = c
			break
		}
	}
	if id, ok := positiveInt(chosen); ok {
		return id
	}
	if id, ok := positiveInt(fromMount); ok {
		return id
	}
	return FallbackProjectID
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

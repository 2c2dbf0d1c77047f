package submission

import (
	"time"

	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/phone"
)

// DefaultBHKType is recorded when the visitor never picked a configuration.
const DefaultBHKType = "Yet to decide"

// Visitor is the browsing context collected for a session.
type Visitor struct {
	UTM               map[string]string `json:"utm,omitempty"`
	LandingPage       string            `json:"landingPage,omitempty"`
	Referrer          string            `json:"referrer,omitempty"`
	UserAgent         string            `json:"userAgent,omitempty"`
	FirstSeenAt       time.Time         `json:"firstSeenAt"`
	LastInteractionAt time.Time         `json:"lastInteractionAt"`
	Location          *crm.Location     `json:"location,omitempty"`
}

// Capture is everything needed to submit one lead.
type Capture struct {
	SessionID string
	Name      string
	Phone     phone.Result
	CTA       string
	BHK       string
	// ProjectID is the id the widget was mounted with.
	ProjectID string
	Microsite string
	Page      crm.PageContext
	Visitor   Visitor
	// Conversation is the transcript snapshot including the phone message.
	Conversation []conversation.Message
}

// Result describes a lead the CRM accepted.
type Result struct {
	Payload     crm.Payload
	SubmittedAt time.Time
}

// LocalLead is the analytics copy posted to the local leads endpoint.
type LocalLead struct {
	Phone        string                 `json:"phone"`
	BHKType      string                 `json:"bhkType"`
	Microsite    string                 `json:"microsite"`
	Metadata     LocalMetadata          `json:"metadata"`
	Conversation []conversation.Message `json:"conversation"`
}

type LocalMetadata struct {
	ProjectID        string  `json:"projectId,omitempty"`
	SessionID        string  `json:"sessionId,omitempty"`
	Name             string  `json:"name,omitempty"`
	CTA              string  `json:"cta,omitempty"`
	Visitor          Visitor `json:"visitor"`
	PhoneCountry     string  `json:"phoneCountry,omitempty"`
	PhoneCountryCode string  `json:"phoneCountryCode,omitempty"`
	PhoneDialCode    string  `json:"phoneDialCode,omitempty"`
	PhoneSubscriber  string  `json:"phoneSubscriber,omitempty"`
}

// localLead converts a capture into the analytics shape.
func localLead(c Capture, now time.Time) LocalLead {
	bhk := c.BHK
	if bhk == "" {
		bhk = DefaultBHKType
	}
	microsite := c.Microsite
	if microsite == "" {
		microsite = c.ProjectID
	}
	visitor := c.Visitor
	visitor.LastInteractionAt = now
	return LocalLead{
		Phone:     c.Phone.E164(),
		BHKType:   bhk,
		Microsite: microsite,
		Metadata: LocalMetadata{
			ProjectID:        c.ProjectID,
			SessionID:        c.SessionID,
			Name:             c.Name,
			CTA:              c.CTA,
			Visitor:          visitor,
			PhoneCountry:     c.Phone.Country.Name,
			PhoneCountryCode: c.Phone.Country.ISOCode,
			PhoneDialCode:    c.Phone.DialCode,
			PhoneSubscriber:  c.Phone.SubscriberDigits,
		},
		Conversation: c.Conversation,
	}
}

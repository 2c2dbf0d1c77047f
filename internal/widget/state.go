package widget

import "github.com/fahimkhan-git/seher-ai-chat/internal/phone"

// Mode is what the input area currently collects.
type Mode string

const (
	ModeCTA      Mode = "cta"
	ModeBHK      Mode = "bhk"
	ModeName     Mode = "name"
	ModePhone    Mode = "phone"
	ModeLeadForm Mode = "leadForm"
	ModeChat     Mode = "chat"
)

// Capturing reports whether the mode collects a contact detail.
func (m Mode) Capturing() bool {
	return m == ModeName || m == ModePhone || m == ModeLeadForm
}

// State is a point-in-time copy of a session's conversation state.
type State struct {
	SessionID       string        `json:"sessionId"`
	ProjectID       string        `json:"projectId"`
	Microsite       string        `json:"microsite,omitempty"`
	SelectedCTA     string        `json:"selectedCta,omitempty"`
	SelectedBHK     string        `json:"selectedBhk,omitempty"`
	NameSubmitted   bool          `json:"nameSubmitted"`
	PhoneSubmitted  bool          `json:"phoneSubmitted"`
	CapturedName    string        `json:"capturedName,omitempty"`
	Mode            Mode          `json:"inputMode"`
	SelectedCountry phone.Country `json:"selectedCountry"`
	Typing          bool          `json:"typing"`
	Submitting      bool          `json:"submitting"`
}

// captured is the part of the state an assistant call is made under.
type captured struct {
	nameSubmitted  bool
	phoneSubmitted bool
}

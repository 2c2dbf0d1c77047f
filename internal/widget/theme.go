package widget

import "strings"

// Theme holds the copy shown by the scripted part of the flow. Empty fields
// fall back to DefaultTheme.
type Theme struct {
	AgentName          string   `json:"agentName,omitempty"`
	WelcomeMessage     string   `json:"welcomeMessage,omitempty"`
	CTAAcknowledgement string   `json:"followupMessage,omitempty"`
	BHKPrompt          string   `json:"bhkPrompt,omitempty"`
	InventoryMessage   string   `json:"inventoryMessage,omitempty"`
	NamePrompt         string   `json:"namePrompt,omitempty"`
	// PhonePrompt may contain "{name}".
	PhonePrompt     string   `json:"phonePrompt,omitempty"`
	ThankYouMessage string   `json:"thankYouMessage,omitempty"`
	CTAOptions      []string `json:"ctaOptions,omitempty"`
	BHKOptions      []string `json:"bhkOptions,omitempty"`
}

// FallbackReply is shown when no assistant reply is available. It asks for
// contact details so capture still progresses.
const FallbackReply = "I'd love to help you with that! Share your name and phone so I can assist you better."

// DefaultTheme returns the stock widget copy.
func DefaultTheme() Theme {
	return Theme{
		AgentName:          "Pooja Agarwal",
		WelcomeMessage:     "Hey, I'm Pooja Agarwal! How can I help you understand this project?",
		CTAAcknowledgement: "Sure… I’ll send that across right away!",
		BHKPrompt:          "Which configuration you are looking for?",
		InventoryMessage:   "That’s cool… we have inventory available with us.",
		NamePrompt:         "Please enter your name",
		PhonePrompt:        "Thanks {name}! Now please enter your mobile number to receive the details.",
		ThankYouMessage:    "Thanks! Our expert will call you shortly 📞",
		CTAOptions: []string{
			"Pricing & Floor Plans 💸💸",
			"Download Brochure ⬇️",
			"Get The Best Quote 💰",
			"Site Visit Or Virtual Tour 🚁",
			"Pricing on Whatsapp ✅",
			"Get A Call Back 📞",
		},
		BHKOptions: []string{"1 Bhk", "2 Bhk", "3 Bhk", "4 Bhk", "Other", "Yet to decide"},
	}
}

// Merge returns t with empty fields filled from base.
func (t Theme) Merge(base Theme) Theme {
	pick := func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	}
	out := Theme{
		AgentName:          pick(t.AgentName, base.AgentName),
		WelcomeMessage:     pick(t.WelcomeMessage, base.WelcomeMessage),
		CTAAcknowledgement: pick(t.CTAAcknowledgement, base.CTAAcknowledgement),
		BHKPrompt:          pick(t.BHKPrompt, base.BHKPrompt),
		InventoryMessage:   pick(t.InventoryMessage, base.InventoryMessage),
		NamePrompt:         pick(t.NamePrompt, base.NamePrompt),
		PhonePrompt:        pick(t.PhonePrompt, base.PhonePrompt),
		ThankYouMessage:    pick(t.ThankYouMessage, base.ThankYouMessage),
		CTAOptions:         t.CTAOptions,
		BHKOptions:         t.BHKOptions,
	}
	if len(out.CTAOptions) == 0 {
		out.CTAOptions = append([]string(nil), base.CTAOptions...)
	}
	if len(out.BHKOptions) == 0 {
		out.BHKOptions = append([]string(nil), base.BHKOptions...)
	}
	return out
}

func (t Theme) phonePromptFor(name string) string {
	return strings.ReplaceAll(t.PhonePrompt, "{name}", name)
}

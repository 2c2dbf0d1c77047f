package assistant

import (
	"encoding/json"
	"strings"
)

type modelAction struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Text    string `json:"text"`
}

// ParseModelOutput turns raw model text into a Reply. Models are asked to
// answer with {"type":"request_lead_details","message":"..."} when they want
// contact details; that object may be the whole output or embedded in prose.
func ParseModelOutput(raw string) Reply {
	text := strings.TrimSpace(stripCodeFence(raw))
	if text == "" {
		return Reply{}
	}

	action, ok := extractAction(text)
	if !ok || parseDirective(action.Type) != DirectiveRequestLeadDetails {
		return Reply{Text: text}
	}

	msg := strings.TrimSpace(action.Message)
	if msg == "" {
		msg = strings.TrimSpace(action.Text)
	}
	if msg == "" {
		msg = text
	}
	return Reply{Text: msg, Directive: DirectiveRequestLeadDetails}
}

func extractAction(text string) (modelAction, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		var action modelAction
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		if err := dec.Decode(&action); err == nil && action.Type != "" {
			return action, true
		}
	}
	return modelAction{}, false
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return s
}

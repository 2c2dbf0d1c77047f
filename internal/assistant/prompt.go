package assistant

import (
	"fmt"
	"strings"
)

// DefaultAgentName is used when the widget config does not name an agent.
const DefaultAgentName = "Riya"

// contactAfterAgentTurns is how many assistant replies the visitor sees
// before the model is told to ask for contact details.
const contactAfterAgentTurns = 2

const leadDetailsInstruction = `When you need the visitor's name and phone number, reply with JSON only:
{"type": "request_lead_details", "message": "<one or two friendly sentences asking for contact details>"}
Otherwise reply in plain text.`

// BuildSystemPrompt renders the instructions sent ahead of the conversation.
func BuildSystemPrompt(agentName string, info PropertyInfo, req Request) string {
	if strings.TrimSpace(agentName) == "" {
		agentName = DefaultAgentName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a friendly property sales expert. Answer briefly (2-3 sentences), use **bold** for key facts, and guide the visitor toward sharing their name and phone number.\n\n", agentName)

	b.WriteString("PROPERTY INFORMATION:\n")
	fmt.Fprintf(&b, "- Project Name: %s\n", orNotSpecified(info.ProjectName))
	fmt.Fprintf(&b, "- Developer: %s\n", orNotSpecified(info.Developer))
	fmt.Fprintf(&b, "- Location: %s\n", orNotSpecified(info.Location))
	fmt.Fprintf(&b, "- Area: %s\n", orNotSpecified(info.Area))
	fmt.Fprintf(&b, "- Possession: %s\n", orNotSpecified(info.Possession))
	fmt.Fprintf(&b, "- Available Configurations: %s\n", orNotSpecified(strings.Join(info.AvailableBHK, ", ")))
	fmt.Fprintf(&b, "- Pricing: %s\n", orNotSpecified(info.PricingText()))
	fmt.Fprintf(&b, "- Amenities: %s\n", orNotSpecified(strings.Join(info.Amenities, ", ")))
	fmt.Fprintf(&b, "- Special Offers: %s\n\n", orDefault(info.SpecialOffers, "None"))

	b.WriteString("CURRENT CONTEXT:\n")
	fmt.Fprintf(&b, "- Visitor interest: %s\n", orDefault(req.SelectedCTA, "general inquiry"))
	fmt.Fprintf(&b, "- Selected BHK: %s\n", orDefault(req.SelectedBHK, "not selected yet"))
	fmt.Fprintf(&b, "- Microsite: %s\n", orDefault(req.Microsite, "unknown"))
	fmt.Fprintf(&b, "- Conversation length: %d messages\n\n", len(req.History))

	b.WriteString(leadDetailsInstruction)
	b.WriteString("\n\n")
	if ShouldAskForContact(req.History) {
		b.WriteString("You have already replied at least twice. Ask for contact details in THIS reply using the JSON format.")
	} else {
		b.WriteString("Answer the question accurately. Do not ask for contact details yet.")
	}
	return b.String()
}

// ShouldAskForContact reports whether enough assistant turns have happened
// to push for contact details.
func ShouldAskForContact(history []Turn) bool {
	agentTurns := 0
	for _, t := range history {
		if t.Role == RoleAssistant {
			agentTurns++
		}
	}
	return agentTurns >= contactAfterAgentTurns
}

// BuildMessages converts the request history plus the new message into chat turns.
func BuildMessages(req Request) []ChatMessage {
	msgs := make([]ChatMessage, 0, len(req.History)+1)
	for _, t := range req.History {
		role := ChatRoleUser
		if t.Role == RoleAssistant {
			role = ChatRoleAssistant
		}
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		msgs = append(msgs, ChatMessage{Role: role, Content: t.Text})
	}
	msgs = append(msgs, ChatMessage{Role: ChatRoleUser, Content: req.Message})
	return msgs
}

func orNotSpecified(s string) string {
	return orDefault(s, "Not specified")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

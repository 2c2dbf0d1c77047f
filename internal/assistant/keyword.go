package assistant

import (
	"fmt"
	"strings"
)

const (
	genericContactReply  = "I'd love to help you with that! Share your name and phone so I can assist you better."
	followUpContactReply = "That's interesting! Share your name and phone so I can connect you with our team."
	openQuestionReply    = "I'd love to help you with that! What would you like to know about the project?"
)

var (
	affirmatives = []string{"yes", "yeah", "yep", "sure", "ok", "okay", "alright", "fine", "correct", "right"}
	negatives    = []string{"no", "nope", "not", "don't", "nah"}
	greetings    = []string{"hi", "hello", "hey", "hello there", "hi there"}
)

// KeywordResponder answers from the property fact sheet without a model.
// It is used when no LLM is configured or the LLM call fails.
type KeywordResponder struct {
	AgentName string
}

// Respond picks a canned reply for message.
func (k KeywordResponder) Respond(message string, history []Turn, info PropertyInfo) string {
	lower := strings.ToLower(strings.TrimSpace(message))

	if info.IsEmpty() || lower == "" {
		if len(history) > 2 {
			return followUpContactReply
		}
		return genericContactReply
	}

	project := orDefault(info.ProjectName, "this project")
	bhkText := orDefault(strings.Join(info.AvailableBHK, " and "), "various configurations")
	pricing := orDefault(info.PricingText(), "Check with our team for current pricing")

	switch {
	case oneOf(lower, affirmatives):
		return k.affirmative(history, info, bhkText, pricing)
	case oneOf(lower, negatives):
		return fmt.Sprintf("No worries! Is there anything else about %s you'd like to know? I'm here to help!", project)
	case oneOf(lower, greetings):
		agent := orDefault(k.AgentName, DefaultAgentName)
		if info.ProjectName != "" {
			return fmt.Sprintf("Hi! 👋 I'm %s. I'm here to help you with %s. What would you like to know?", agent, info.ProjectName)
		}
		return fmt.Sprintf("Hi! 👋 I'm %s. I'm here to help you find your dream home. What would you like to know?", agent)
	case containsAny(lower, "project name", "name of project", "what is this", "what project"):
		if info.ProjectName == "" {
			return genericContactReply
		}
		reply := "This is " + info.ProjectName
		if info.Developer != "" {
			reply += " by " + info.Developer
		}
		if info.Location != "" {
			reply += " located in " + info.Location
		}
		return reply + ". Would you like to know more about pricing or available configurations?"
	case containsAny(lower, "cost", "price", "pricing", "how much"):
		return fmt.Sprintf("Our pricing: %s. Would you like to schedule a site visit or get more details? Share your name and phone.", pricing)
	case containsAny(lower, "location", "where", "address", "situated", "nearby"):
		if info.Location == "" {
			return genericContactReply
		}
		reply := fmt.Sprintf("%s is located in %s. ", orDefault(info.ProjectName, "This project"), info.Location)
		if len(info.AvailableBHK) > 0 {
			reply += fmt.Sprintf("We have %s available. ", bhkText)
		}
		return reply + "Would you like to know about pricing or schedule a site visit?"
	case containsAny(lower, "bhk", "configuration", "bedroom", "room"):
		reply := fmt.Sprintf("We have %s available. ", bhkText)
		if len(info.Pricing) > 0 {
			reply += "Would you like to know about pricing? "
		}
		return reply + "Share your name and phone so I can assist you better."
	case containsAny(lower, "amenit", "facilit", "feature", "what do you have"):
		return amenitiesReply(info)
	case containsAny(lower, "brief", "breif", "detail", "highlight", "overview", "tell me about", "about the project", "about this project"):
		if reply := overviewReply(info); reply != "" {
			return reply
		}
	}

	if len(history) > 2 {
		return followUpContactReply
	}
	return openQuestionReply
}

func (k KeywordResponder) affirmative(history []Turn, info PropertyInfo, bhkText, pricing string) string {
	lastAgent := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleAssistant {
			lastAgent = strings.ToLower(history[i].Text)
			break
		}
	}

	switch {
	case strings.Contains(lastAgent, "would you like to know about") &&
		containsAny(lastAgent, "pricing", "site visit"):
		return fmt.Sprintf("Great! We have %s available. Our pricing: %s. Would you like to schedule a site visit or get more details?", bhkText, pricing)
	case strings.Contains(lastAgent, "located in"):
		reply := fmt.Sprintf("Great! We have %s available. ", bhkText)
		if first := info.FirstPrice(); first != "" {
			reply += fmt.Sprintf("Pricing starts from %s. ", first)
		}
		return reply + "Would you like to know more about the configurations or schedule a site visit?"
	case strings.Contains(lastAgent, "pricing") && strings.Contains(lastAgent, "would you"):
		return "Excellent! I'd love to help you with the best pricing and payment plans. Share your name and phone so our team can reach out with exclusive offers."
	case containsAny(lastAgent, "bhk", "configuration", "bedroom"):
		return fmt.Sprintf("Perfect! Our pricing: %s. Would you like to schedule a site visit or get more details? Share your name and phone.", pricing)
	}

	if len(info.Pricing) > 0 {
		return "That's great! Would you like to know about our pricing or available configurations? Share your name and phone so I can assist you better."
	}
	return fmt.Sprintf("That's great! Would you like to know more about %s? Share your name and phone so I can assist you better.", orDefault(info.ProjectName, "this project"))
}

func amenitiesReply(info PropertyInfo) string {
	const maxListed = 8
	if len(info.Amenities) == 0 {
		return "We offer modern amenities. Would you like to know about pricing or schedule a site visit?"
	}
	listed := info.Amenities
	suffix := ""
	if len(listed) > maxListed {
		listed = listed[:maxListed]
		suffix = " and more"
	}
	return fmt.Sprintf("We offer %s%s. Would you like to know about pricing or schedule a site visit?", strings.Join(listed, ", "), suffix)
}

func overviewReply(info PropertyInfo) string {
	var parts []string
	if info.ProjectName != "" {
		parts = append(parts, info.ProjectName)
	}
	if info.Developer != "" {
		parts = append(parts, "by "+info.Developer)
	}
	if info.Location != "" {
		parts = append(parts, "located in "+info.Location)
	}
	if len(info.AvailableBHK) > 0 {
		parts = append(parts, fmt.Sprintf("available in %s configurations", strings.Join(info.AvailableBHK, " and ")))
	}
	if p := info.PricingText(); p != "" {
		parts = append(parts, "pricing ranges from "+p)
	}
	if len(info.Amenities) > 0 {
		top := info.Amenities
		if len(top) > 5 {
			top = top[:5]
		}
		parts = append(parts, "key amenities include "+strings.Join(top, ", "))
	}
	if info.SpecialOffers != "" && info.SpecialOffers != "None" {
		parts = append(parts, "special offer: "+info.SpecialOffers)
	}
	if len(parts) == 0 {
		return ""
	}
	reply := strings.Join(parts, ". ")
	if info.Area != "" && info.Area != "Not specified" {
		reply += fmt.Sprintf(". The project offers %s of living space", info.Area)
	}
	reply += ". Would you like to know more about pricing, configurations, or schedule a site visit?"
	return strings.Join(strings.Fields(strings.ReplaceAll(reply, "..", ".")), " ")
}

func oneOf(s string, options []string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package conversation

import (
	"regexp"
	"strings"
)

// Classification describes which contact details an assistant reply asks for.
type Classification struct {
	WantsName  bool
	WantsPhone bool
}

// namePatterns match assistant replies asking for the visitor's name.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`share your name`),
	regexp.MustCompile(`enter your name`),
	regexp.MustCompile(`what is your name`),
	regexp.MustCompile(`what's your name`),
	regexp.MustCompile(`tell me your name`),
	regexp.MustCompile(`(?:could|can) you (?:please )?(?:share|tell me) your name`),
	regexp.MustCompile(`(?:may|can) i (?:please )?have your name`),
	regexp.MustCompile(`i need your name`),
	regexp.MustCompile(`(?:get you|send you|connect you).*(?:share|provide|give).*name`),
	regexp.MustCompile(`your name`),
}

// phonePatterns match assistant replies asking for a phone number.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`share your (?:name and )?(?:phone|mobile|number)`),
	regexp.MustCompile(`(?:enter|provide|what is|what's|tell me) your (?:phone|mobile|number)`),
	regexp.MustCompile(`(?:may|can) i (?:please )?have your (?:phone|mobile|number)`),
	regexp.MustCompile(`contact (?:number|details)`),
	regexp.MustCompile(`mobile number`),
	regexp.MustCompile(`phone number`),
	regexp.MustCompile(`to (?:get|send|call|connect).*(?:phone|mobile|number)`),
	regexp.MustCompile(`(?:call|reach|contact).*(?:phone|mobile|number)`),
}

// ClassifyReply reports whether an assistant reply asks for the visitor's
// name, phone number, or both.
func ClassifyReply(text string) Classification {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Classification{}
	}
	return Classification{
		WantsName:  matchAny(namePatterns, lower),
		WantsPhone: matchAny(phonePatterns, lower),
	}
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

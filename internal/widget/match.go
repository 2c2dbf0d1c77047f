package widget

import (
	"regexp"
	"strings"
)

var (
	nonWord      = regexp.MustCompile(`[^\w\s]`)
	bhkShorthand = regexp.MustCompile(`(?i)^\s*[1-4]\s*bhk\s*$`)
	bhkDigit     = regexp.MustCompile(`[1-4]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// ctaKeywords are short inputs that count as a CTA pick when they also share
// a word with an option.
var ctaKeywords = []string{"pricing", "brochure", "quote", "visit", "tour", "whatsapp", "call", "callback"}

func normalizeCTA(s string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(s), ""))
}

// MatchCTA reports whether typed text selects one of options, returning the
// option it matched. Matching is strict so questions fall through to chat.
func MatchCTA(input string, options []string) (string, bool) {
	in := normalizeCTA(input)
	if in == "" {
		return "", false
	}
	inWords := strings.Fields(in)
	hasKeyword := false
	for _, kw := range ctaKeywords {
		if strings.Contains(in, kw) {
			hasKeyword = true
			break
		}
	}
	for _, option := range options {
		opt := normalizeCTA(option)
		if opt == "" {
			continue
		}
		if in == opt || strings.Contains(in, opt) {
			return option, true
		}
		if len(inWords) > 2 || !hasKeyword {
			continue
		}
		for _, w := range strings.Fields(opt) {
			if len(w) > 2 && strings.Contains(in, w) {
				return option, true
			}
		}
	}
	return "", false
}

// MatchBHK reports whether typed text selects a configuration.
func MatchBHK(input string, options []string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}
	collapsed := whitespace.ReplaceAllString(in, " ")
	for _, option := range options {
		opt := strings.ToLower(strings.TrimSpace(option))
		if in == opt || collapsed == whitespace.ReplaceAllString(opt, " ") {
			return option, true
		}
	}
	if bhkShorthand.MatchString(in) || (strings.Contains(in, "bhk") && bhkDigit.MatchString(in)) {
		digit := bhkDigit.FindString(in)
		for _, option := range options {
			if strings.HasPrefix(strings.TrimSpace(option), digit) {
				return option, true
			}
		}
		return digit + " Bhk", true
	}
	return "", false
}

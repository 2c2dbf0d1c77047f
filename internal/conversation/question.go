package conversation

import "strings"

var questionStarters = []string{
	"what", "when", "where", "why", "how", "who", "which",
	"tell me", "can you", "could you", "would you", "show me",
	"explain", "i want to know", "i need to know",
}

// IsClearlyAQuestion reports whether text typed into a name or phone prompt
// is an unrelated question rather than the requested detail. Anything of two
// words or fewer is never a question, so short names such as "Raj" or "Who"
// are always treated as answers.
func IsClearlyAQuestion(text string) bool {
	if len(text) < 3 {
		return false
	}
	trimmed := strings.TrimSpace(text)
	if len(strings.Fields(trimmed)) <= 2 {
		return false
	}
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, starter := range questionStarters {
		if strings.HasPrefix(lower, starter) && len(lower) > len(starter)+2 {
			return true
		}
	}
	return false
}
